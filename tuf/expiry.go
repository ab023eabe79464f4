package tuf

import (
	"sort"
	"time"

	"github.com/patzielinski/taf/data"
)

// ExpiringRole pairs a role name with its current expiry, the unit
// check_roles_expiration_dates reports.
type ExpiringRole struct {
	Role    string
	Expires time.Time
}

// CheckRolesExpirationDates returns the roles already expired and the
// roles that will expire within interval days of startDate, each sorted
// by expiry ascending, per §4.9. excluded names roles to skip entirely.
func (r *Repo) CheckRolesExpirationDates(interval int, startDate time.Time, excluded map[string]bool) (expired, willExpire []ExpiringRole) {
	if startDate.IsZero() {
		startDate = now()
	}
	horizon := startDate.AddDate(0, 0, interval)

	for role, expires := range r.allRoleExpiries() {
		if excluded[role] {
			continue
		}
		switch {
		case expires.Before(startDate):
			expired = append(expired, ExpiringRole{Role: role, Expires: expires})
		case !expires.After(horizon):
			willExpire = append(willExpire, ExpiringRole{Role: role, Expires: expires})
		}
	}

	sort.Slice(expired, func(i, j int) bool { return expired[i].Expires.Before(expired[j].Expires) })
	sort.Slice(willExpire, func(i, j int) bool { return willExpire[i].Expires.Before(willExpire[j].Expires) })
	return expired, willExpire
}

func (r *Repo) allRoleExpiries() map[string]time.Time {
	out := map[string]time.Time{}
	if r.Root != nil {
		out[data.CanonicalRootRole] = r.Root.Expires
	}
	if r.Snapshot != nil {
		out[data.CanonicalSnapshotRole] = r.Snapshot.Expires
	}
	if r.Timestamp != nil {
		out[data.CanonicalTimestampRole] = r.Timestamp.Expires
	}
	for role, t := range r.Targets {
		out[role] = t.Expires
	}
	return out
}

// SetMetadataExpirationDate loads signers for role, then edits it
// setting expires to startDate+interval (interval days; startDate
// defaults to now, interval to the role's own default), per §4.9.
func (r *Repo) SetMetadataExpirationDate(role string, signerKeyIDs []string, startDate time.Time, interval int) error {
	if startDate.IsZero() {
		startDate = now()
	}
	if interval == 0 {
		interval = data.DefaultExpiryInterval(role)
	}
	expires := startDate.AddDate(0, 0, interval)

	for _, keyID := range signerKeyIDs {
		r.signers.Bind(role, keyID)
	}

	var err error
	switch {
	case role == data.CanonicalRootRole:
		err = r.editRoot(func(root *data.Root) error {
			root.Expires = expires
			return nil
		})
	case role == data.CanonicalSnapshotRole:
		err = r.editSnapshot(func(s *data.Snapshot) error {
			s.Expires = expires
			return nil
		})
	case role == data.CanonicalTimestampRole:
		err = r.editTimestamp(func(ts *data.Timestamp) error {
			ts.Expires = expires
			return nil
		})
	default:
		err = r.editTargets(role, func(t *data.Targets) error {
			t.Expires = expires
			return nil
		})
	}
	if err != nil {
		return err
	}
	return r.Cascade()
}
