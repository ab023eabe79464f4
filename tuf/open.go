package tuf

import (
	"encoding/json"
	"fmt"

	"github.com/patzielinski/taf/data"
	"github.com/patzielinski/taf/signed"
	"github.com/patzielinski/taf/store"
)

// verifyEnvelope checks blob's envelope carries enough valid signatures for
// role per its current descriptor in the key db, and that the body
// itself is not expired. Grounded in the teacher's gotuf, which performs
// this same check (via signed.Verify) while walking bootstrapRepo.
func verifyEnvelope(blob []byte, role string, common data.SignedCommon, db *signed.KeyDB) error {
	desc := db.GetRole(role)
	if desc == nil {
		return fmt.Errorf("tuf: no role descriptor for %s", role)
	}
	var envelope data.Signed
	if err := json.Unmarshal(blob, &envelope); err != nil {
		return err
	}
	if err := signed.VerifySignatures(role, []byte(envelope.Signed), envelope.Signatures, desc, db); err != nil {
		return err
	}
	if signed.IsExpired(common.Expires, now()) {
		return signed.ErrExpired{Role: role}
	}
	return nil
}

// Open loads an existing repository's full role tree from st: root,
// the top-level targets role and every delegation reachable from it,
// snapshot, and timestamp. Grounded in the teacher's bootstrapRepo,
// generalized from a fixed "targets" load to a recursive delegation
// walk since this engine supports arbitrarily deep delegation.
func Open(cs signed.CryptoService, st store.MetadataStore) (*Repo, error) {
	r := NewRepo(cs, st)

	rootBlob, err := st.GetMeta(data.CanonicalRootRole)
	if err != nil {
		return nil, err
	}
	root, err := parseSigned[data.Root](rootBlob)
	if err != nil {
		return nil, store.StorageCorrupt{Name: data.CanonicalRootRole, Err: err}
	}
	r.Root = root
	for _, key := range root.Keys {
		r.keyDB.AddKey(key)
	}
	for role, desc := range root.Roles {
		r.keyDB.AddRole(role, desc)
	}
	if err := verifyEnvelope(rootBlob, data.CanonicalRootRole, root.SignedCommon, r.keyDB); err != nil {
		return nil, err
	}

	if err := r.loadTargetsTree(data.CanonicalTargetsRole); err != nil {
		return nil, err
	}

	snapshotBlob, err := st.GetMeta(data.CanonicalSnapshotRole)
	if err != nil {
		return nil, err
	}
	snapshot, err := parseSigned[data.Snapshot](snapshotBlob)
	if err != nil {
		return nil, store.StorageCorrupt{Name: data.CanonicalSnapshotRole, Err: err}
	}
	if err := verifyEnvelope(snapshotBlob, data.CanonicalSnapshotRole, snapshot.SignedCommon, r.keyDB); err != nil {
		return nil, err
	}
	r.Snapshot = snapshot

	timestampBlob, err := st.GetMeta(data.CanonicalTimestampRole)
	if err != nil {
		return nil, err
	}
	timestamp, err := parseSigned[data.Timestamp](timestampBlob)
	if err != nil {
		return nil, store.StorageCorrupt{Name: data.CanonicalTimestampRole, Err: err}
	}
	if err := verifyEnvelope(timestampBlob, data.CanonicalTimestampRole, timestamp.SignedCommon, r.keyDB); err != nil {
		return nil, err
	}
	r.Timestamp = timestamp

	return r, nil
}

func (r *Repo) loadTargetsTree(role string) error {
	blob, err := r.store.GetMeta(role)
	if err != nil {
		return err
	}
	t, err := parseSigned[data.Targets](blob)
	if err != nil {
		return store.StorageCorrupt{Name: role, Err: err}
	}
	if err := verifyEnvelope(blob, role, t.SignedCommon, r.keyDB); err != nil {
		return err
	}
	r.Targets[role] = t
	if t.Delegations == nil {
		return nil
	}
	for _, key := range t.Delegations.Keys {
		r.keyDB.AddKey(key)
	}
	for _, child := range t.Delegations.Roles {
		r.keyDB.AddRole(child.Name, &child.Role)
		if err := r.loadTargetsTree(child.Name); err != nil {
			return err
		}
	}
	return nil
}

// parseSigned unwraps a data.Signed envelope and unmarshals its Signed
// field into T, returning a pointer to the result.
func parseSigned[T any](blob []byte) (*T, error) {
	var envelope data.Signed
	if err := json.Unmarshal(blob, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshaling envelope: %w", err)
	}
	var body T
	if err := json.Unmarshal(envelope.Signed, &body); err != nil {
		return nil, fmt.Errorf("unmarshaling body: %w", err)
	}
	return &body, nil
}
