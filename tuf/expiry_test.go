package tuf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patzielinski/taf/data"
)

// Scenario 5: classify roles as expired, soon-to-expire, or fine, given a
// fixed reference time and a handful of roles set to now-1d/now+3d/now+40d.
func TestCheckRolesExpirationDates(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), false)

	fixedNow := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	restore := now
	now = func() time.Time { return fixedNow }
	defer func() { now = restore }()

	r.Root.Expires = fixedNow.AddDate(0, 0, -1)           // already expired
	r.Targets[data.CanonicalTargetsRole].Expires = fixedNow.AddDate(0, 0, 3)  // expires soon
	r.Snapshot.Expires = fixedNow.AddDate(0, 0, 40)        // comfortably valid
	r.Timestamp.Expires = fixedNow.AddDate(0, 0, 3)        // expires soon

	expired, willExpire := r.CheckRolesExpirationDates(7, time.Time{}, nil)

	require.Len(t, expired, 1)
	assert.Equal(t, data.CanonicalRootRole, expired[0].Role)

	willExpireRoles := map[string]bool{}
	for _, e := range willExpire {
		willExpireRoles[e.Role] = true
	}
	assert.True(t, willExpireRoles[data.CanonicalTargetsRole])
	assert.True(t, willExpireRoles[data.CanonicalTimestampRole])
	assert.False(t, willExpireRoles[data.CanonicalSnapshotRole], "40 days out is outside a 7-day horizon")
}

func TestCheckRolesExpirationDates_Excluded(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), false)

	fixedNow := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	restore := now
	now = func() time.Time { return fixedNow }
	defer func() { now = restore }()

	r.Root.Expires = fixedNow.AddDate(0, 0, -1)

	expired, _ := r.CheckRolesExpirationDates(7, time.Time{}, map[string]bool{data.CanonicalRootRole: true})
	assert.Empty(t, expired)
}

func TestSetMetadataExpirationDate(t *testing.T) {
	r, _ := newTestRepo(t, t.TempDir(), false)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err := r.SetMetadataExpirationDate(data.CanonicalTargetsRole, nil, start, 30)
	require.NoError(t, err)

	assert.True(t, r.Targets[data.CanonicalTargetsRole].Expires.Equal(start.AddDate(0, 0, 30)))
}
