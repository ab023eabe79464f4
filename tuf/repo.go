// Package tuf implements the metadata repository engine: the signed
// role tree, its edit-transaction protocol, the delegation resolver,
// target-file lifecycle, key management, expiration, and the creation
// protocol. Grounded throughout in the teacher's vendored gotuf TufRepo
// (Godeps/_workspace/src/github.com/endophage/gotuf/tuf.go), generalized
// from its four fixed roles to an arbitrarily deep delegation tree and
// re-pointed at this project's signed/store/data packages.
package tuf

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/patzielinski/taf/data"
	"github.com/patzielinski/taf/signed"
	"github.com/patzielinski/taf/store"
)

// rootStore is implemented by a store.MetadataStore that additionally
// keeps version-prefixed root history; FilesystemStore satisfies it.
type rootStore interface {
	SetRootMeta(version int, blob []byte) error
}

// Repo is the in-memory, signed representation of one repository: the
// four canonical roles plus every delegated targets role currently
// loaded, the key index, the signer cache, and the backing store.
type Repo struct {
	Root      *data.Root
	Targets   map[string]*data.Targets // "targets" plus every delegated role, keyed by role name
	Snapshot  *data.Snapshot
	Timestamp *data.Timestamp

	signatures map[string][]data.Signature // role name -> current signatures

	keyDB   *signed.KeyDB
	crypto  signed.CryptoService
	signers *SignerCache
	store   store.MetadataStore

	// changed accumulates filename->version for every role edited
	// since the last cascade, so doSnapshot knows what to bump.
	changed map[string]int
}

// NewRepo builds an empty, unloaded Repo bound to the given crypto
// service and store. Load an existing repository with Open, or
// bootstrap a new one with Create.
func NewRepo(cs signed.CryptoService, st store.MetadataStore) *Repo {
	return &Repo{
		Targets:    map[string]*data.Targets{},
		signatures: map[string][]data.Signature{},
		keyDB:      signed.NewKeyDB(),
		crypto:     cs,
		signers:    NewSignerCache(),
		store:      st,
		changed:    map[string]int{},
	}
}

// roleFileName maps a role name to its on-disk metadata file name
// (without the .json extension the store appends).
func roleFileName(role string) string {
	return role
}

// commitEdit applies the bump+resign+write epilogue (§4.4) to body,
// whose common fields live at common. It is the single place every
// role edit funnels through, regardless of which concrete body type is
// being mutated.
func (r *Repo) commitEdit(role string, common *data.SignedCommon, body interface{}) error {
	common.Version++
	if common.Expires.IsZero() {
		common.Expires = data.DefaultExpires(role, now())
	}

	canonicalBody, err := data.Canonical(body)
	if err != nil {
		return signed.SigningError{KeyID: "", Err: fmt.Errorf("canonicalizing %s: %w", role, err)}
	}

	roleDescriptor := r.keyDB.GetRole(role)
	keyIDs := r.signers.KeysFor(role)
	digest := sha256.Sum256(canonicalBody)
	sigs := make([]data.Signature, 0, len(keyIDs))
	for _, keyID := range keyIDs {
		pub := r.keyDB.GetKey(keyID)
		if pub == nil {
			continue
		}
		raw, err := r.crypto.Sign(keyID, digest[:])
		if err != nil {
			return signed.SigningError{KeyID: keyID, Err: err}
		}
		sigs = append(sigs, data.Signature{KeyID: keyID, Method: pub.SignatureAlgorithm(), Signature: raw})
	}
	if roleDescriptor != nil && len(sigs) < roleDescriptor.Threshold {
		return signed.ErrInsufficientSignatures{Role: role, Numkeys: len(sigs), Threshold: roleDescriptor.Threshold}
	}

	envelope := data.Signed{Signed: json.RawMessage(canonicalBody), Signatures: sigs}
	blob, err := data.Canonical(envelope)
	if err != nil {
		return signed.SigningError{KeyID: "", Err: err}
	}

	if role == data.CanonicalRootRole {
		rs, ok := r.store.(rootStore)
		if !ok {
			return fmt.Errorf("tuf: store does not support versioned root history")
		}
		if err := rs.SetRootMeta(common.Version, blob); err != nil {
			return err
		}
	} else if err := r.store.SetMeta(roleFileName(role), blob); err != nil {
		return err
	}

	r.signatures[role] = sigs

	if role == data.CanonicalSnapshotRole {
		r.changed[role] = common.Version
	} else if role != data.CanonicalTimestampRole {
		r.changed[role] = common.Version
	}

	logrus.Debugf("tuf: committed %s at version %d", role, common.Version)
	return nil
}

// signaturesFor returns the last-committed signature set for role, for
// diagnostics; callers must not mutate it.
func (r *Repo) signaturesFor(role string) []data.Signature {
	return r.signatures[role]
}

// now is the single indirection point for "current time", letting
// expiration logic (§4.9) and any future test harness inject a fixed
// clock without threading one through every call.
var now = time.Now
