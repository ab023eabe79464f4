package tuf

import (
	"sync"

	"golang.org/x/exp/slices"
)

// SignerCache maps a role name to the set of key-ids currently bound to
// it — the keys an edit transaction will actually sign with, as opposed
// to every key-id merely listed in that role's descriptor. Populated on
// demand before an edit (when a caller supplies signers for a role) and
// discarded at process end, per the in-memory, process-local scope the
// spec assigns the signer cache.
type SignerCache struct {
	mu     sync.RWMutex
	byRole map[string]map[string]struct{}
}

// NewSignerCache returns an empty SignerCache.
func NewSignerCache() *SignerCache {
	return &SignerCache{byRole: map[string]map[string]struct{}{}}
}

// Bind registers keyID as a signer for role.
func (c *SignerCache) Bind(role, keyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.byRole[role] == nil {
		c.byRole[role] = map[string]struct{}{}
	}
	c.byRole[role][keyID] = struct{}{}
}

// Unbind removes keyID from role's signer set.
func (c *SignerCache) Unbind(role, keyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byRole[role], keyID)
}

// KeysFor returns the key-ids currently bound to role, sorted for a
// deterministic signing order (map iteration order is not stable, and
// signature order in a metadata file should not change across runs for
// the same bound key set).
func (c *SignerCache) KeysFor(role string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.byRole[role]))
	for id := range c.byRole[role] {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
