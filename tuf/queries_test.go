package tuf

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patzielinski/taf/data"
)

func TestGetAllRolesAndTargetsRoles(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), true)

	assert.ElementsMatch(t, []string{"targets", "release", "release-linux"}, r.GetAllTargetsRoles())
	assert.ElementsMatch(t,
		[]string{"root", "targets", "snapshot", "timestamp", "release", "release-linux"},
		r.GetAllRoles())
}

func TestFindKeysRolesAndAssociatedRoles(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), false)

	targetsKeyID := r.Root.Roles[data.CanonicalTargetsRole].KeyIDs[0]
	rootKeyID := r.Root.Roles[data.CanonicalRootRole].KeyIDs[0]

	byKey := r.FindKeysRoles([]string{targetsKeyID, rootKeyID})
	assert.Contains(t, byKey[targetsKeyID], data.CanonicalTargetsRole)
	assert.Contains(t, byKey[rootKeyID], data.CanonicalRootRole)

	assert.Equal(t, []string{data.CanonicalTargetsRole}, r.FindAssociatedRolesOfKey(targetsKeyID))
	assert.Empty(t, r.FindAssociatedRolesOfKey("no-such-key"))
}

func TestIsValidMetadataKey(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), false)
	keyID := r.Root.Roles[data.CanonicalTargetsRole].KeyIDs[0]

	assert.True(t, r.IsValidMetadataKey(data.CanonicalTargetsRole, keyID))
	assert.False(t, r.IsValidMetadataKey(data.CanonicalTargetsRole, "bogus"))
	assert.False(t, r.IsValidMetadataKey(data.CanonicalRootRole, keyID))
}

func TestGetTargetFileCustomDataAndSignedTargetsWithCustomData(t *testing.T) {
	targetsDir := t.TempDir()
	r, _ := newTestRepo(t, targetsDir, false)

	custom := map[string]json.RawMessage{"build": json.RawMessage(`"ci-42"`)}
	err := r.ModifyTargets(targetsDir, map[string]TargetContent{
		"app.bin":   {Raw: []byte("binary"), Custom: custom},
		"plain.txt": {Raw: []byte("no custom data")},
	}, nil)
	require.NoError(t, err)

	got := r.GetTargetFileCustomData(data.CanonicalTargetsRole, "app.bin")
	require.NotNil(t, got)
	assert.JSONEq(t, `"ci-42"`, string(got["build"]))

	assert.Nil(t, r.GetTargetFileCustomData(data.CanonicalTargetsRole, "plain.txt"))

	withCustom := r.GetSignedTargetsWithCustomData(data.CanonicalTargetsRole)
	require.Len(t, withCustom, 1)
	assert.Equal(t, "app.bin", withCustom[0].Path)
}

func TestGenerateRolesDescription(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), true)

	descs := r.GenerateRolesDescription()
	byName := map[string]RoleDescription{}
	for _, d := range descs {
		byName[d.Name] = d
	}

	require.Contains(t, byName, "release-linux")
	assert.Equal(t, "release", byName["release-linux"].Parent)
	assert.Equal(t, []string{"release/linux/**"}, byName["release-linux"].Paths)
	require.Contains(t, byName, data.CanonicalRootRole)
	assert.Equal(t, 1, byName[data.CanonicalRootRole].Threshold)
}
