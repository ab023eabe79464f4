package tuf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patzielinski/taf/data"
)

func TestAllTargetFilesState_DetectsDriftAndRemoval(t *testing.T) {
	targetsDir := t.TempDir()
	r, _ := newTestRepo(t, targetsDir, false)

	require.NoError(t, r.ModifyTargets(targetsDir, map[string]TargetContent{
		"a.txt": {Raw: []byte("one")},
		"b.txt": {Raw: []byte("two")},
	}, nil))

	// Drift: modify a.txt on disk without going through ModifyTargets.
	require.NoError(t, os.WriteFile(filepath.Join(targetsDir, "a.txt"), []byte("one-modified"), 0644))
	// Orphan a new file directly too.
	require.NoError(t, os.WriteFile(filepath.Join(targetsDir, "c.txt"), []byte("new"), 0644))
	// Remove b.txt without going through ModifyTargets.
	require.NoError(t, os.Remove(filepath.Join(targetsDir, "b.txt")))

	report, err := r.AllTargetFilesState(targetsDir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.txt", "c.txt"}, report.AddedOrModified)
	assert.ElementsMatch(t, []string{"b.txt"}, report.Removed)
}

// DeleteUnregisteredTargetFiles must never delete a file that belongs to
// a delegation beneath the role it was called on (here "release" and the
// nested "release-linux" under targets), only files registered nowhere in
// the subtree rooted at that role.
func TestDeleteUnregisteredTargetFiles_SparesDelegatedSiblings(t *testing.T) {
	targetsDir := t.TempDir()
	r, _ := newTestRepo(t, targetsDir, true)

	require.NoError(t, r.ModifyTargets(targetsDir, map[string]TargetContent{
		"docs/readme.md":          {Raw: []byte("doc")},
		"release/mac/build.tar":   {Raw: []byte("mac")},
		"release/linux/build.tar": {Raw: []byte("linux")},
	}, nil))

	// An orphan file registered nowhere.
	require.NoError(t, os.WriteFile(filepath.Join(targetsDir, "orphan.bin"), []byte("junk"), 0644))

	require.NoError(t, r.DeleteUnregisteredTargetFiles(targetsDir, data.CanonicalTargetsRole))

	assertExists := func(rel string, want bool) {
		_, err := os.Stat(filepath.Join(targetsDir, rel))
		if want {
			assert.NoError(t, err, "%s should still exist", rel)
		} else {
			assert.True(t, os.IsNotExist(err), "%s should have been removed", rel)
		}
	}

	assertExists("docs/readme.md", true)
	assertExists("release/mac/build.tar", true)
	assertExists("release/linux/build.tar", true)
	assertExists("orphan.bin", false)
}

func TestDeleteUnregisteredTargetFiles_UnknownRole(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), false)
	err := r.DeleteUnregisteredTargetFiles(t.TempDir(), "no-such-role")
	assert.IsType(t, ErrUnknownRole{}, err)
}
