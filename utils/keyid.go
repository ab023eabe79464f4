package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/secure-systems-lab/go-securesystemslib/cjson"
)

// KeyID derives a key's identifier from its canonicalized wire structure:
// sha256 of the CJSON encoding of { keytype, scheme, keyval: { public } },
// hex-encoded. This is the routine the software keystore uses to derive
// the key-id of every key it creates or loads. Keys decoded from metadata
// keep the id they are stored under, and signatures are matched to keys
// by the key-id they carry; neither recomputes it here.
//
// keyType and scheme are the role's declared algorithm and signature
// scheme; public is the raw public key material as stored in keyval.public
// (hex-encoded by the caller, matching the wire format).
func KeyID(keyType string, scheme string, publicHex string) (string, error) {
	canonical, err := cjson.EncodeCanonical(map[string]interface{}{
		"keytype": keyType,
		"scheme":  scheme,
		"keyval": map[string]interface{}{
			"public": publicHex,
		},
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
