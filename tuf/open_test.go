package tuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patzielinski/taf/data"
	"github.com/patzielinski/taf/store"
	"github.com/patzielinski/taf/trustmanager"
)

// Open must reconstruct exactly what Create wrote: same versions, same
// delegation tree, and every envelope verifying against the keys Create
// registered.
func TestOpen_RoundTripsWhatCreateWrote(t *testing.T) {
	ksDir := t.TempDir()
	stDir := t.TempDir()
	targetsDir := t.TempDir()

	ks, err := trustmanager.NewKeyFileStore(ksDir)
	require.NoError(t, err)
	st, err := store.NewFilesystemStore(stDir)
	require.NoError(t, err)

	specs := map[string]RoleKeySpec{
		data.CanonicalRootRole:      {Number: 1, Threshold: 1},
		data.CanonicalTargetsRole:   {Number: 1, Threshold: 1},
		data.CanonicalSnapshotRole:  {Number: 1, Threshold: 1},
		data.CanonicalTimestampRole: {Number: 1, Threshold: 1},
		"release":                   {Number: 1, Threshold: 1},
	}
	signers, err := GenerateSigners(ks, specs)
	require.NoError(t, err)

	in := CreateInput{
		Roles: RolesKeysData{
			Root:      specs[data.CanonicalRootRole],
			Targets:   specs[data.CanonicalTargetsRole],
			Snapshot:  specs[data.CanonicalSnapshotRole],
			Timestamp: specs[data.CanonicalTimestampRole],
			Delegations: []DelegatedRoleSpec{
				{RoleKeySpec: specs["release"], Name: "release", Paths: []string{"release/*"}},
			},
		},
		Signers: signers,
	}

	created, err := Create(t.TempDir()+"/md", targetsDir, ks, st, in)
	require.NoError(t, err)

	require.NoError(t, created.ModifyTargets(targetsDir, map[string]TargetContent{
		"release/v1.tar": {Raw: []byte("payload")},
	}, nil))

	opened, err := Open(ks, st)
	require.NoError(t, err)

	assert.Equal(t, created.Root.Version, opened.Root.Version)
	assert.Equal(t, created.Snapshot.Version, opened.Snapshot.Version)
	assert.Equal(t, created.Timestamp.Version, opened.Timestamp.Version)
	assert.Equal(t, created.Targets[data.CanonicalTargetsRole].Version, opened.Targets[data.CanonicalTargetsRole].Version)

	require.Contains(t, opened.Targets, "release")
	assert.Contains(t, opened.Targets["release"].Targets, "release/v1.tar")
	assert.Equal(t, created.Targets["release"].Targets["release/v1.tar"].Length,
		opened.Targets["release"].Targets["release/v1.tar"].Length)
}

// Open on a completely empty store must fail on the missing root file
// rather than panicking or returning a half-built Repo.
func TestOpen_MissingRoleFails(t *testing.T) {
	ks, err := trustmanager.NewKeyFileStore(t.TempDir())
	require.NoError(t, err)
	st, err := store.NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	_, err = Open(ks, st)
	require.Error(t, err)
	assert.IsType(t, store.StorageMissing{}, err)
}
