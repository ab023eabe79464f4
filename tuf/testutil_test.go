package tuf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/patzielinski/taf/data"
	"github.com/patzielinski/taf/store"
	"github.com/patzielinski/taf/trustmanager"
)

// newTestStores builds a fresh KeyFileStore and FilesystemStore rooted at
// temporary directories, the same backends Create/Open expect.
func newTestStores(t *testing.T) (*trustmanager.KeyFileStore, *store.FilesystemStore) {
	t.Helper()
	ks, err := trustmanager.NewKeyFileStore(t.TempDir())
	require.NoError(t, err)
	st, err := store.NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	return ks, st
}

// simpleDelegationTree is a two-level delegation subtree used by tests
// that exercise most-specific-match dispatch: "release" (release/**) with
// a nested "release-linux" (release/linux/**).
func simpleDelegationTree() []DelegatedRoleSpec {
	return []DelegatedRoleSpec{
		{
			RoleKeySpec: RoleKeySpec{Number: 1, Threshold: 1},
			Name:        "release",
			Paths:       []string{"release/**"},
			Delegations: []DelegatedRoleSpec{
				{
					RoleKeySpec: RoleKeySpec{Number: 1, Threshold: 1},
					Name:        "release-linux",
					Paths:       []string{"release/linux/**"},
				},
			},
		},
	}
}

// newTestRepo bootstraps a repository with one key per canonical role and
// (if withDelegations) the simpleDelegationTree, with signers already
// bound so every edit in the test can commit without extra plumbing.
func newTestRepo(t *testing.T, targetsDir string, withDelegations bool) (*Repo, *trustmanager.KeyFileStore) {
	t.Helper()
	ks, st := newTestStores(t)

	specs := map[string]RoleKeySpec{
		data.CanonicalRootRole:      {Number: 1, Threshold: 1},
		data.CanonicalTargetsRole:   {Number: 1, Threshold: 1},
		data.CanonicalSnapshotRole:  {Number: 1, Threshold: 1},
		data.CanonicalTimestampRole: {Number: 1, Threshold: 1},
	}
	var delegations []DelegatedRoleSpec
	if withDelegations {
		delegations = simpleDelegationTree()
		specs["release"] = RoleKeySpec{Number: 1, Threshold: 1}
		specs["release-linux"] = RoleKeySpec{Number: 1, Threshold: 1}
	}

	signers, err := GenerateSigners(ks, specs)
	require.NoError(t, err)

	in := CreateInput{
		Roles: RolesKeysData{
			Root:        specs[data.CanonicalRootRole],
			Targets:     specs[data.CanonicalTargetsRole],
			Delegations: delegations,
			Snapshot:    specs[data.CanonicalSnapshotRole],
			Timestamp:   specs[data.CanonicalTimestampRole],
		},
		Signers: signers,
	}

	r, err := Create(t.TempDir()+"/md", targetsDir, ks, st, in)
	require.NoError(t, err)
	return r, ks
}
