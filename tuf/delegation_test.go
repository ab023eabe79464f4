package tuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patzielinski/taf/data"
)

// Scenario 6: the most specific (deepest) delegation matching a path
// wins, per the last-match-wins pre-order traversal.
func TestMapSigningRoles_MostSpecificMatch(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), true)

	mapping := r.MapSigningRoles([]string{
		"release/linux/build.tar",
		"release/mac/build.tar",
		"docs/readme.md",
	})

	assert.Equal(t, "release-linux", mapping["release/linux/build.tar"])
	assert.Equal(t, "release", mapping["release/mac/build.tar"])
	assert.Equal(t, "targets", mapping["docs/readme.md"])
}

func TestGetRoleFromTargetPaths_SingleRole(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), true)

	role := r.GetRoleFromTargetPaths([]string{"release/linux/a", "release/linux/b"})
	assert.Equal(t, "release-linux", role)
}

// Scenario 2: a modify_targets call whose paths resolve to more than one
// role must be rejected rather than silently picked apart.
func TestModifyTargets_MixedRolesRejected(t *testing.T) {
	targetsDir := t.TempDir()
	r, _ := newTestRepo(t, targetsDir, true)

	err := r.ModifyTargets(targetsDir, map[string]TargetContent{
		"release/linux/build.tar": {Raw: []byte("a")},
		"docs/readme.md":          {Raw: []byte("b")},
	}, nil)

	require.Error(t, err)
	assert.Equal(t, ErrMixedRoles, err)
}

func TestModifyTargets_EmptyCallRejected(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), false)
	err := r.ModifyTargets(t.TempDir(), nil, nil)
	assert.Equal(t, ErrEmptyModify, err)
}

// A terminating delegation claims its matched paths for itself and prunes
// them from further recursion — a delegation nested beneath it must not
// override it.
func TestMapSigningRoles_TerminatingPrunesDescendants(t *testing.T) {
	targetsDir := t.TempDir()
	ks, st := newTestStores(t)

	specs := map[string]RoleKeySpec{
		data.CanonicalRootRole:      {Number: 1, Threshold: 1},
		data.CanonicalTargetsRole:   {Number: 1, Threshold: 1},
		data.CanonicalSnapshotRole:  {Number: 1, Threshold: 1},
		data.CanonicalTimestampRole: {Number: 1, Threshold: 1},
		"vendor":                    {Number: 1, Threshold: 1},
		"vendor-pinned":             {Number: 1, Threshold: 1},
	}
	signers, err := GenerateSigners(ks, specs)
	require.NoError(t, err)

	in := CreateInput{
		Roles: RolesKeysData{
			Root: specs[data.CanonicalRootRole], Targets: specs[data.CanonicalTargetsRole],
			Snapshot: specs[data.CanonicalSnapshotRole], Timestamp: specs[data.CanonicalTimestampRole],
			Delegations: []DelegatedRoleSpec{
				{
					RoleKeySpec: specs["vendor"], Name: "vendor", Paths: []string{"vendor/**"}, Terminating: true,
					Delegations: []DelegatedRoleSpec{
						{RoleKeySpec: specs["vendor-pinned"], Name: "vendor-pinned", Paths: []string{"vendor/pinned/**"}},
					},
				},
			},
		},
		Signers: signers,
	}
	repo, err := Create(t.TempDir()+"/md", targetsDir, ks, st, in)
	require.NoError(t, err)

	mapping := repo.MapSigningRoles([]string{"vendor/pinned/lib.a"})
	assert.Equal(t, "vendor", mapping["vendor/pinned/lib.a"], "terminating vendor must keep paths it matches from reaching vendor-pinned")
}

func TestFindRoleParent(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), true)

	assert.Equal(t, "targets", r.FindRoleParent("release"))
	assert.Equal(t, "release", r.FindRoleParent("release-linux"))
	assert.Equal(t, "", r.FindRoleParent("targets"))
	assert.Equal(t, "", r.FindRoleParent("no-such-role"))
}
