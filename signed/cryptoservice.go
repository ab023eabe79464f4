// Package signed implements the signing and verification core: the
// CryptoService abstraction that lets a software keystore, a PKCS#11
// token, or a remote hardware signer all sign metadata the same way, and
// the threshold-signature verification routines every edit and every
// load path runs through.
package signed

import "github.com/patzielinski/taf/data"

// Signer is the minimal capability a key source exposes: produce a
// signature over an already-canonicalized payload for one of its keys.
// The software keystore in trustmanager and the gRPC-backed hardware
// signer in trustmanager/hwtoken both implement this the same way from
// the caller's perspective — neither hands back private key material.
type Signer interface {
	// Sign returns the raw signature bytes over digest — the SHA-256
	// hash of the payload, computed by the caller — using the key
	// identified by keyID. Mirrors the crypto.Signer convention so the
	// same keys can back x509.CreateCertificate without a second,
	// incompatible hashing step.
	Sign(keyID string, digest []byte) ([]byte, error)
}

// CryptoService is the full key-management surface the engine needs: it
// composes a Signer with key lookup and generation, so a Repo never
// needs to know whether keys live in a local file, a PKCS#11 slot, or
// behind a gRPC-connected hardware token.
type CryptoService interface {
	Signer

	// PublicKey returns the public half of keyID, or nil if unknown.
	PublicKey(keyID string) data.PublicKey

	// Create generates a new key for role using the given algorithm,
	// returning its public half. The private half never leaves the service.
	Create(role, algorithm string) (data.PublicKey, error)

	// RemoveKey deletes a key, returning an error only if the backing
	// store genuinely cannot remove it (never if it is simply absent).
	RemoveKey(keyID string) error

	// ListKeys returns every key-id this service can currently sign
	// with, regardless of which role has claimed them in root.json.
	ListKeys() []string
}

// ErrNoSuchKey is returned by a Signer when asked to sign with a key-id
// it does not hold.
type ErrNoSuchKey struct {
	KeyID string
}

func (e ErrNoSuchKey) Error() string {
	return "signed: no such key: " + e.KeyID
}

// MultiCryptoService fans out to a list of CryptoServices in order,
// returning the first one that claims a key. This is how a software
// keystore and a hardware token coexist: a role's keys may be split
// across both backends, and a signer need not know which backend holds
// which key-id ahead of time. Grounded in the teacher's NotaryRepository
// composing cryptoservice + grpckeystore behind one signing call.
type MultiCryptoService []CryptoService

func (m MultiCryptoService) PublicKey(keyID string) data.PublicKey {
	for _, svc := range m {
		if pub := svc.PublicKey(keyID); pub != nil {
			return pub
		}
	}
	return nil
}

func (m MultiCryptoService) Sign(keyID string, digest []byte) ([]byte, error) {
	for _, svc := range m {
		if svc.PublicKey(keyID) == nil {
			continue
		}
		sig, err := svc.Sign(keyID, digest)
		if err != nil {
			return nil, SigningError{KeyID: keyID, Err: err}
		}
		return sig, nil
	}
	return nil, ErrNoSuchKey{KeyID: keyID}
}

func (m MultiCryptoService) Create(role, algorithm string) (data.PublicKey, error) {
	if len(m) == 0 {
		return nil, ErrNoKeys{Role: role}
	}
	return m[0].Create(role, algorithm)
}

func (m MultiCryptoService) RemoveKey(keyID string) error {
	for _, svc := range m {
		if svc.PublicKey(keyID) != nil {
			return svc.RemoveKey(keyID)
		}
	}
	return nil
}

func (m MultiCryptoService) ListKeys() []string {
	var out []string
	for _, svc := range m {
		out = append(out, svc.ListKeys()...)
	}
	return out
}
