// Package data defines the typed in-memory representation of TUF-style
// role metadata: the four canonical roles, delegated targets roles, and
// the signed envelopes that wrap them.
package data

import (
	"encoding/json"
	"time"
)

// Canonical role names. Any other role name is a delegated targets role.
const (
	CanonicalRootRole      = "root"
	CanonicalTargetsRole   = "targets"
	CanonicalSnapshotRole  = "snapshot"
	CanonicalTimestampRole = "timestamp"
)

// ValidTUFType reports whether typ is the expected signed type for role.
func ValidTUFType(typ, role string) bool {
	if role == CanonicalRootRole || role == CanonicalTargetsRole ||
		role == CanonicalSnapshotRole || role == CanonicalTimestampRole {
		return typ == role
	}
	// delegated targets roles are still of type "targets"
	return typ == CanonicalTargetsRole
}

// IsDelegatedRole reports whether name is not one of the four canonical roles.
func IsDelegatedRole(name string) bool {
	switch name {
	case CanonicalRootRole, CanonicalTargetsRole, CanonicalSnapshotRole, CanonicalTimestampRole:
		return false
	default:
		return true
	}
}

// defaultExpiryIntervals holds the per-role default validity window, in
// days, used when a role's expiry is not explicitly set. Delegated roles
// fall back to the targets interval.
var defaultExpiryIntervals = map[string]int{
	CanonicalRootRole:      365,
	CanonicalTargetsRole:   90,
	CanonicalSnapshotRole:  7,
	CanonicalTimestampRole: 1,
}

// SetDefaultExpiryTimes overrides one or more of the per-role default
// expiry intervals (in days). Unrecognized keys are ignored.
func SetDefaultExpiryTimes(intervals map[string]int) {
	for role, days := range intervals {
		if _, ok := defaultExpiryIntervals[role]; !ok {
			continue
		}
		defaultExpiryIntervals[role] = days
	}
}

// DefaultExpiryInterval returns the default validity window, in days, for
// role. Delegated (non-canonical) roles use the targets interval.
func DefaultExpiryInterval(role string) int {
	if interval, ok := defaultExpiryIntervals[role]; ok {
		return interval
	}
	return defaultExpiryIntervals[CanonicalTargetsRole]
}

// DefaultExpires returns start plus role's default expiry interval.
func DefaultExpires(role string, start time.Time) time.Time {
	return start.AddDate(0, 0, DefaultExpiryInterval(role))
}

// Role is a RoleDescriptor: a named trust unit carrying the set of keys
// permitted to sign it and the minimum number of valid signatures
// required. It is embedded in the signed body of the role's parent.
type Role struct {
	KeyIDs    []string `json:"keyids"`
	Threshold int      `json:"threshold"`
}

// ValidKey reports whether keyID is one of the role's registered keys.
func (r *Role) ValidKey(keyID string) bool {
	for _, id := range r.KeyIDs {
		if id == keyID {
			return true
		}
	}
	return false
}

// AddKeyID appends keyID to the role's key set if it is not already present.
// Returns false if the key was already registered.
func (r *Role) AddKeyID(keyID string) bool {
	if r.ValidKey(keyID) {
		return false
	}
	r.KeyIDs = append(r.KeyIDs, keyID)
	return true
}

// RemoveKeyID removes keyID from the role's key set. Returns false if the
// key was not present.
func (r *Role) RemoveKeyID(keyID string) bool {
	for i, id := range r.KeyIDs {
		if id == keyID {
			r.KeyIDs = append(r.KeyIDs[:i], r.KeyIDs[i+1:]...)
			return true
		}
	}
	return false
}

// DelegatedRole is a Role plus the path patterns it is authoritative for
// and whether it terminates further delegation traversal for paths it
// matches.
type DelegatedRole struct {
	Role
	Name        string   `json:"name"`
	Paths       []string `json:"paths"`
	Terminating bool     `json:"terminating"`
}

// Delegations is the optional delegation subtree carried by a targets-family
// signed body: the keys referenced by its delegated roles, plus the
// ordered list of delegated role descriptors.
type Delegations struct {
	Keys  map[string]PublicKey `json:"keys"`
	Roles []*DelegatedRole     `json:"roles"`
}

// UnmarshalJSON decodes a Delegations block, routing its key dictionary
// through unmarshalKeyMap since PublicKey is an interface the standard
// library cannot instantiate on its own.
func (d *Delegations) UnmarshalJSON(raw []byte) error {
	var wire struct {
		Keys  json.RawMessage  `json:"keys"`
		Roles []*DelegatedRole `json:"roles"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	keys, err := unmarshalKeyMap(wire.Keys)
	if err != nil {
		return err
	}
	d.Keys = keys
	d.Roles = wire.Roles
	return nil
}

// GetRole returns the delegated role named name, or nil if not present.
func (d *Delegations) GetRole(name string) *DelegatedRole {
	if d == nil {
		return nil
	}
	for _, r := range d.Roles {
		if r.Name == name {
			return r
		}
	}
	return nil
}
