package signed

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"time"

	"github.com/patzielinski/taf/data"
)

// VerifySignatures checks that sigs contains at least role.Threshold
// valid, distinct signatures from keys assigned to role, each verified
// against msg (the canonical bytes of the signed body). It returns
// ErrInsufficientSignatures if the threshold is not met — never a bare
// verification failure, since a body can carry stray or superseded
// signatures alongside the ones that matter.
func VerifySignatures(roleName string, msg []byte, sigs []data.Signature, role *data.Role, db *KeyDB) error {
	if role == nil {
		return ErrInvalidRole{Role: roleName, Reason: "role descriptor missing"}
	}
	valid := map[string]struct{}{}
	for _, sig := range sigs {
		if !role.ValidKey(sig.KeyID) {
			continue
		}
		key := db.GetKey(sig.KeyID)
		if key == nil {
			continue
		}
		if err := verifyOne(msg, sig, key); err != nil {
			continue
		}
		valid[sig.KeyID] = struct{}{}
	}
	if len(valid) < role.Threshold {
		return ErrInsufficientSignatures{
			Role:      roleName,
			Numkeys:   len(valid),
			Threshold: role.Threshold,
		}
	}
	return nil
}

// verifyOne hashes msg and checks a single signature against a single
// key, dispatching on the key's declared signature scheme.
func verifyOne(msg []byte, sig data.Signature, key data.PublicKey) error {
	digest := sha256.Sum256(msg)
	return VerifyDigestSignature(digest[:], sig, key)
}

// VerifyDigestSignature checks a single signature over an already-hashed
// SHA-256 digest against a single key — the counterpart to Signer.Sign,
// which also operates on a pre-hashed digest rather than a raw payload.
// Unknown schemes are rejected rather than silently skipped.
func VerifyDigestSignature(digest []byte, sig data.Signature, key data.PublicKey) error {
	switch key.SignatureAlgorithm() {
	case data.RSAPSSSignature, data.RSAPKCS1v15Signature:
		pub, err := x509.ParsePKCS1PublicKey(key.Public())
		if err != nil {
			if parsed, err2 := x509.ParsePKIXPublicKey(key.Public()); err2 == nil {
				if rsaPub, ok := parsed.(*rsa.PublicKey); ok {
					pub = rsaPub
					err = nil
				}
			}
			if err != nil {
				return ErrInvalidKeyType{Msg: "not an RSA key"}
			}
		}
		if key.SignatureAlgorithm() == data.RSAPSSSignature {
			return rsa.VerifyPSS(pub, crypto.SHA256, digest, sig.Signature, nil)
		}
		return rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest, sig.Signature)

	case data.ECDSASignature:
		parsed, err := x509.ParsePKIXPublicKey(key.Public())
		if err != nil {
			return ErrInvalidKeyType{Msg: "not an ECDSA key"}
		}
		pub, ok := parsed.(*ecdsa.PublicKey)
		if !ok {
			return ErrInvalidKeyType{Msg: "not an ECDSA key"}
		}
		if !ecdsa.VerifyASN1(pub, digest, sig.Signature) {
			return ErrInvalidKeyType{Msg: "ecdsa signature did not verify"}
		}
		return nil

	default:
		return ErrInvalidKeyType{Msg: string(key.SignatureAlgorithm())}
	}
}

// IsExpired reports whether expires is in the past relative to now.
func IsExpired(expires time.Time, now time.Time) bool {
	return now.After(expires)
}
