package tuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patzielinski/taf/data"
)

// Scenario 1: create a repository, then add a target file to it.
func TestCreateThenAddTarget(t *testing.T) {
	targetsDir := t.TempDir()
	r, _ := newTestRepo(t, targetsDir, false)

	assert.Equal(t, 1, r.Root.Version)
	assert.Equal(t, 1, r.Targets[data.CanonicalTargetsRole].Version)
	assert.Equal(t, 1, r.Snapshot.Version)
	assert.Equal(t, 1, r.Timestamp.Version)

	err := r.ModifyTargets(targetsDir, map[string]TargetContent{
		"foo/bar.txt": {Raw: []byte("hello")},
	}, nil)
	require.NoError(t, err)

	tgt, ok := r.Targets[data.CanonicalTargetsRole].Targets["foo/bar.txt"]
	require.True(t, ok, "target should be registered")
	assert.EqualValues(t, len("hello"), tgt.Length)
	assert.Equal(t, 2, r.Targets[data.CanonicalTargetsRole].Version, "targets should have bumped")
	assert.Equal(t, 2, r.Snapshot.Version, "snapshot should have cascaded")
	assert.Equal(t, 2, r.Timestamp.Version, "timestamp should have cascaded")
}

func TestCreate_RefusesExistingDirectory(t *testing.T) {
	ks, st := newTestStores(t)
	specs := map[string]RoleKeySpec{
		data.CanonicalRootRole:      {Number: 1},
		data.CanonicalTargetsRole:   {Number: 1},
		data.CanonicalSnapshotRole:  {Number: 1},
		data.CanonicalTimestampRole: {Number: 1},
	}
	signers, err := GenerateSigners(ks, specs)
	require.NoError(t, err)
	in := CreateInput{
		Roles: RolesKeysData{
			Root: specs[data.CanonicalRootRole], Targets: specs[data.CanonicalTargetsRole],
			Snapshot: specs[data.CanonicalSnapshotRole], Timestamp: specs[data.CanonicalTimestampRole],
		},
		Signers: signers,
	}

	metaDir := t.TempDir() // already exists
	_, err = Create(metaDir, t.TempDir(), ks, st, in)
	assert.Error(t, err)
	assert.IsType(t, ErrRoleExists{}, err)
}
