package tuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patzielinski/taf/data"
)

// Scenario 3: adding a key to "targets" cascades through a forced resign
// of targets.json (since the key only touched root.json) and on through
// snapshot/timestamp.
func TestAddMetadataKeys_CascadesThroughTargets(t *testing.T) {
	r, ks := newTestRepo(t, t.TempDir(), false)

	rootVersion := r.Root.Version
	targetsVersion := r.Targets[data.CanonicalTargetsRole].Version
	snapshotVersion := r.Snapshot.Version
	timestampVersion := r.Timestamp.Version

	newKey, err := ks.Create(data.CanonicalTargetsRole, data.RSAKey)
	require.NoError(t, err)

	result, err := r.AddMetadataKeys(
		map[string][]data.PublicKey{data.CanonicalTargetsRole: {newKey}},
		map[string][]string{data.CanonicalTargetsRole: {newKey.ID()}},
	)
	require.NoError(t, err)

	assert.Contains(t, result.Added[data.CanonicalTargetsRole], newKey.ID())
	assert.Greater(t, r.Root.Version, rootVersion, "root should have bumped (key lives on root.Roles)")
	assert.Greater(t, r.Targets[data.CanonicalTargetsRole].Version, targetsVersion, "targets should have been force-resigned")
	assert.Greater(t, r.Snapshot.Version, snapshotVersion, "snapshot should have cascaded")
	assert.Greater(t, r.Timestamp.Version, timestampVersion, "timestamp should have cascaded")
	assert.True(t, r.Root.Roles[data.CanonicalTargetsRole].ValidKey(newKey.ID()))
}

func TestAddMetadataKeys_AlreadyAddedIsClassifiedNotErrored(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), false)

	existingKeyID := r.Root.Roles[data.CanonicalTargetsRole].KeyIDs[0]
	existingKey := r.keyDB.GetKey(existingKeyID)
	require.NotNil(t, existingKey)

	result, err := r.AddMetadataKeys(
		map[string][]data.PublicKey{data.CanonicalTargetsRole: {existingKey}},
		nil,
	)
	require.NoError(t, err)
	assert.Contains(t, result.AlreadyAdded[data.CanonicalTargetsRole], existingKeyID)
	assert.Empty(t, result.Added[data.CanonicalTargetsRole])
}

// Scenario 4: a role with two keys and threshold 1 tolerates revoking the
// first key, but refuses to revoke the second (it would leave zero keys,
// below the threshold of 1).
func TestRevokeMetadataKey_ThresholdGuardRefusesSecondRevocation(t *testing.T) {
	r, ks := newTestRepo(t, t.TempDir(), false)

	secondKey, err := ks.Create(data.CanonicalTargetsRole, data.RSAKey)
	require.NoError(t, err)
	_, err = r.AddMetadataKeys(
		map[string][]data.PublicKey{data.CanonicalTargetsRole: {secondKey}},
		map[string][]string{data.CanonicalTargetsRole: {secondKey.ID()}},
	)
	require.NoError(t, err)

	firstKeyID := r.Root.Roles[data.CanonicalTargetsRole].KeyIDs[0]

	result1, err := r.RevokeMetadataKey([]string{data.CanonicalTargetsRole}, firstKeyID, nil)
	require.NoError(t, err)
	assert.Contains(t, result1.Removed, data.CanonicalTargetsRole)
	assert.False(t, r.Root.Roles[data.CanonicalTargetsRole].ValidKey(firstKeyID))

	result2, err := r.RevokeMetadataKey([]string{data.CanonicalTargetsRole}, secondKey.ID(), nil)
	require.NoError(t, err)
	assert.Contains(t, result2.BelowThreshold, data.CanonicalTargetsRole)
	assert.True(t, r.Root.Roles[data.CanonicalTargetsRole].ValidKey(secondKey.ID()), "second key must survive the refused revocation")
}

func TestRevokeMetadataKey_NotPresentIsClassifiedNotErrored(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), false)

	result, err := r.RevokeMetadataKey([]string{data.CanonicalTargetsRole}, "no-such-key", nil)
	require.NoError(t, err)
	assert.Contains(t, result.NotPresent, data.CanonicalTargetsRole)
}

