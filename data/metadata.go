package data

import (
	"encoding/json"
	"time"
)

// SignedCommon is the set of fields every signed body carries.
type SignedCommon struct {
	Type    string    `json:"_type"`
	Version int       `json:"version"`
	Expires time.Time `json:"expires"`
}

// Root is the signed body of the root role: maps the four canonical role
// names to their RoleDescriptor and carries the key dictionary needed to
// verify them.
type Root struct {
	SignedCommon
	ConsistentSnapshot bool             `json:"consistent_snapshot"`
	Keys               map[string]PublicKey `json:"keys"`
	Roles              map[string]*Role     `json:"roles"`
}

// UnmarshalJSON decodes a Root body, routing its key dictionary through
// unmarshalKeyMap since PublicKey is an interface the standard library
// cannot instantiate on its own.
func (r *Root) UnmarshalJSON(raw []byte) error {
	var wire struct {
		SignedCommon
		ConsistentSnapshot bool             `json:"consistent_snapshot"`
		Keys               json.RawMessage  `json:"keys"`
		Roles              map[string]*Role `json:"roles"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return err
	}
	keys, err := unmarshalKeyMap(wire.Keys)
	if err != nil {
		return err
	}
	r.SignedCommon = wire.SignedCommon
	r.ConsistentSnapshot = wire.ConsistentSnapshot
	r.Keys = keys
	r.Roles = wire.Roles
	return nil
}

// NewRoot builds an empty Root body with the four canonical roles
// pre-populated (empty key lists, threshold 1).
func NewRoot() *Root {
	roles := make(map[string]*Role, 4)
	for _, name := range []string{CanonicalRootRole, CanonicalTargetsRole, CanonicalSnapshotRole, CanonicalTimestampRole} {
		roles[name] = &Role{KeyIDs: []string{}, Threshold: 1}
	}
	return &Root{
		SignedCommon:       SignedCommon{Type: CanonicalRootRole, Version: 0},
		ConsistentSnapshot: false,
		Keys:               map[string]PublicKey{},
		Roles:              roles,
	}
}

// TargetFile is the entry recorded for a single target path: its length,
// hashes, and optional opaque custom data.
type TargetFile struct {
	Length int64                      `json:"length"`
	Hashes Hashes                     `json:"hashes"`
	Custom map[string]json.RawMessage `json:"custom,omitempty"`
}

// Targets is the signed body of a targets-family role (the top-level
// targets role, or any delegated targets role): a mapping from target
// path to TargetFile, plus an optional delegation subtree.
type Targets struct {
	SignedCommon
	Targets     map[string]TargetFile `json:"targets"`
	Delegations *Delegations          `json:"delegations,omitempty"`
}

// NewTargets builds an empty Targets body.
func NewTargets() *Targets {
	return &Targets{
		SignedCommon: SignedCommon{Type: CanonicalTargetsRole, Version: 0},
		Targets:      map[string]TargetFile{},
	}
}

// MetaFile is the { version } record snapshot/timestamp keep for every
// role file they track.
type MetaFile struct {
	Version int `json:"version"`
}

// Snapshot is the signed body of the snapshot role: the version of
// root.json and of every targets-family role file.
type Snapshot struct {
	SignedCommon
	Meta map[string]MetaFile `json:"meta"`
}

// NewSnapshot builds an empty Snapshot body with root.json and
// targets.json tracked at version 1.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		SignedCommon: SignedCommon{Type: CanonicalSnapshotRole, Version: 0},
		Meta: map[string]MetaFile{
			"root.json":    {Version: 1},
			"targets.json": {Version: 1},
		},
	}
}

// Timestamp is the signed body of the timestamp role: a single entry for
// snapshot.json's version.
type Timestamp struct {
	SignedCommon
	Meta map[string]MetaFile `json:"meta"`
}

// NewTimestamp builds an empty Timestamp body referencing snapshot.json
// at version 1.
func NewTimestamp() *Timestamp {
	return &Timestamp{
		SignedCommon: SignedCommon{Type: CanonicalTimestampRole, Version: 0},
		Meta:         map[string]MetaFile{"snapshot.json": {Version: 1}},
	}
}

// Signed is the outer envelope around any role's canonical body: the raw
// (already-canonicalized) signed bytes plus the signatures over them.
// Keeping Signed as raw bytes (rather than re-marshaling a typed struct)
// guarantees the bytes verified are exactly the bytes that were signed.
type Signed struct {
	Signed     json.RawMessage `json:"signed"`
	Signatures []Signature     `json:"signatures"`
}
