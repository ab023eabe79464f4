package tuf

import (
	"github.com/patzielinski/taf/data"
)

// KeyAddResult classifies the outcome for every (role, key) pair an
// AddMetadataKeys call was asked to process.
type KeyAddResult struct {
	Added        map[string][]string
	AlreadyAdded map[string][]string
	Invalid      map[string][]string
}

func newKeyAddResult() *KeyAddResult {
	return &KeyAddResult{
		Added:        map[string][]string{},
		AlreadyAdded: map[string][]string{},
		Invalid:      map[string][]string{},
	}
}

// AddMetadataKeys adds, for each role in keysByRole, every listed public
// key to that role's descriptor — canonical roles under one root edit,
// delegated roles grouped by parent under one edit per parent — per
// §4.8. signersByRole registers the corresponding signers in the signer
// cache after the descriptor edits, so the forced targets resign and
// later edits sign with the new keys; the descriptor edits themselves
// sign with the signers bound before the call.
func (r *Repo) AddMetadataKeys(keysByRole map[string][]data.PublicKey, signersByRole map[string][]string) (*KeyAddResult, error) {
	result := newKeyAddResult()

	canonicalRoles := map[string][]data.PublicKey{}
	delegatedByParent := map[string]map[string][]data.PublicKey{}

	for role, keys := range keysByRole {
		for _, key := range keys {
			if key == nil || key.ID() == "" || key.Public() == nil {
				result.Invalid[role] = append(result.Invalid[role], keyIDOrEmpty(key))
				continue
			}
			if data.IsDelegatedRole(role) {
				parent := r.FindRoleParent(role)
				if parent == "" {
					result.Invalid[role] = append(result.Invalid[role], key.ID())
					continue
				}
				if r.roleHasKey(role, key.ID()) {
					result.AlreadyAdded[role] = append(result.AlreadyAdded[role], key.ID())
					continue
				}
				if delegatedByParent[parent] == nil {
					delegatedByParent[parent] = map[string][]data.PublicKey{}
				}
				delegatedByParent[parent][role] = append(delegatedByParent[parent][role], key)
			} else {
				if r.roleHasKey(role, key.ID()) {
					result.AlreadyAdded[role] = append(result.AlreadyAdded[role], key.ID())
					continue
				}
				canonicalRoles[role] = append(canonicalRoles[role], key)
			}
		}
	}

	targetsGainedKey := false

	if len(canonicalRoles) > 0 {
		err := r.editRoot(func(root *data.Root) error {
			for role, keys := range canonicalRoles {
				desc := root.Roles[role]
				if desc == nil {
					desc = &data.Role{Threshold: 1}
					root.Roles[role] = desc
				}
				for _, key := range keys {
					root.Keys[key.ID()] = key
					desc.AddKeyID(key.ID())
					r.keyDB.AddKey(key)
					result.Added[role] = append(result.Added[role], key.ID())
					if role == data.CanonicalTargetsRole {
						targetsGainedKey = true
					}
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		r.keyDB.AddRole(data.CanonicalRootRole, root0(r))
		for role := range canonicalRoles {
			r.keyDB.AddRole(role, r.Root.Roles[role])
		}
	}

	for parent, byRole := range delegatedByParent {
		err := r.editTargets(parent, func(t *data.Targets) error {
			for role, keys := range byRole {
				child := t.Delegations.GetRole(role)
				if child == nil {
					continue
				}
				for _, key := range keys {
					t.Delegations.Keys[key.ID()] = key
					child.AddKeyID(key.ID())
					r.keyDB.AddKey(key)
					result.Added[role] = append(result.Added[role], key.ID())
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		for role := range byRole {
			if t := r.Targets[parent]; t != nil && t.Delegations != nil {
				r.keyDB.AddRole(role, &t.Delegations.GetRole(role).Role)
			}
		}
	}

	for role, keyIDs := range signersByRole {
		for _, keyID := range keyIDs {
			r.signers.Bind(role, keyID)
		}
	}

	if targetsGainedKey {
		// Adding a key to "targets" only ever touches its RoleDescriptor
		// on root (root.Roles["targets"]); the targets.json body itself
		// is untouched, so it still needs the forced resign §4.8 step 5
		// describes before clients see it signed by the new key set.
		if err := r.forceResignTargets(data.CanonicalTargetsRole); err != nil {
			return nil, err
		}
	}

	if err := r.Cascade(); err != nil {
		return nil, err
	}

	return result, nil
}

func root0(r *Repo) *data.Role { return r.Root.Roles[data.CanonicalRootRole] }

func keyIDOrEmpty(k data.PublicKey) string {
	if k == nil {
		return ""
	}
	return k.ID()
}

func (r *Repo) roleHasKey(role, keyID string) bool {
	if data.IsDelegatedRole(role) {
		parent := r.FindRoleParent(role)
		if parent == "" {
			return false
		}
		t := r.Targets[parent]
		if t == nil || t.Delegations == nil {
			return false
		}
		child := t.Delegations.GetRole(role)
		return child != nil && child.ValidKey(keyID)
	}
	if r.Root == nil {
		return false
	}
	desc := r.Root.Roles[role]
	return desc != nil && desc.ValidKey(keyID)
}

// KeyRevokeResult classifies the outcome of a RevokeMetadataKey call
// for each role it was asked to touch.
type KeyRevokeResult struct {
	Removed        []string
	NotPresent     []string
	BelowThreshold []string
}

// RevokeMetadataKey removes keyID from every role in roles, refusing any
// role where doing so would drop its key count below its threshold, per
// §4.8 "Revoke a key". signersByRole supplies the signers needed to
// re-sign the affected roles (and the forced targets resign).
func (r *Repo) RevokeMetadataKey(roles []string, keyID string, signersByRole map[string][]string) (*KeyRevokeResult, error) {
	result := &KeyRevokeResult{}

	canonicalToRemove := map[string]bool{}
	delegatedByParent := map[string][]string{}

	for _, role := range roles {
		if !r.roleHasKey(role, keyID) {
			result.NotPresent = append(result.NotPresent, role)
			continue
		}
		remaining := r.remainingKeyCount(role) - 1
		threshold := r.roleThreshold(role)
		if remaining < threshold {
			result.BelowThreshold = append(result.BelowThreshold, role)
			continue
		}
		if data.IsDelegatedRole(role) {
			parent := r.FindRoleParent(role)
			delegatedByParent[parent] = append(delegatedByParent[parent], role)
		} else {
			canonicalToRemove[role] = true
		}
	}

	targetsAffected := false

	if len(canonicalToRemove) > 0 {
		err := r.editRoot(func(root *data.Root) error {
			for role := range canonicalToRemove {
				desc := root.Roles[role]
				if desc == nil {
					continue
				}
				desc.RemoveKeyID(keyID)
				result.Removed = append(result.Removed, role)
				if role == data.CanonicalTargetsRole {
					targetsAffected = true
				}
			}
			if !anyRoleUsesKey(root, keyID) {
				delete(root.Keys, keyID)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	for parent, rolesForParent := range delegatedByParent {
		err := r.editTargets(parent, func(t *data.Targets) error {
			for _, role := range rolesForParent {
				child := t.Delegations.GetRole(role)
				if child == nil {
					continue
				}
				child.RemoveKeyID(keyID)
				result.Removed = append(result.Removed, role)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	for role, keyIDs := range signersByRole {
		for _, id := range keyIDs {
			r.signers.Bind(role, id)
		}
	}
	for _, role := range result.Removed {
		r.signers.Unbind(role, keyID)
	}

	if targetsAffected {
		if err := r.forceResignTargets(data.CanonicalTargetsRole); err != nil {
			return nil, err
		}
	}

	if err := r.Cascade(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *Repo) remainingKeyCount(role string) int {
	if data.IsDelegatedRole(role) {
		parent := r.FindRoleParent(role)
		t := r.Targets[parent]
		if t == nil || t.Delegations == nil {
			return 0
		}
		child := t.Delegations.GetRole(role)
		if child == nil {
			return 0
		}
		return len(child.KeyIDs)
	}
	if r.Root == nil || r.Root.Roles[role] == nil {
		return 0
	}
	return len(r.Root.Roles[role].KeyIDs)
}

func (r *Repo) roleThreshold(role string) int {
	if data.IsDelegatedRole(role) {
		parent := r.FindRoleParent(role)
		t := r.Targets[parent]
		if t == nil || t.Delegations == nil {
			return 1
		}
		child := t.Delegations.GetRole(role)
		if child == nil {
			return 1
		}
		return child.Threshold
	}
	if r.Root == nil || r.Root.Roles[role] == nil {
		return 1
	}
	return r.Root.Roles[role].Threshold
}

func anyRoleUsesKey(root *data.Root, keyID string) bool {
	for _, desc := range root.Roles {
		if desc.ValidKey(keyID) {
			return true
		}
	}
	return false
}
