// Package utils holds small stateless helpers shared across the engine:
// hashing, glob-style path matching for the delegation resolver, and the
// canonical key-id derivation routine.
package utils

import (
	"crypto/sha256"
	"crypto/sha512"
)

// DoHash hashes data with the named algorithm ("sha256" or "sha512").
// Unknown algorithms return nil, matching the teacher's permissive
// best-effort hash check used when validating snapshot entries.
func DoHash(algorithm string, data []byte) []byte {
	switch algorithm {
	case "sha256":
		d := sha256.Sum256(data)
		return d[:]
	case "sha512":
		d := sha512.Sum512(data)
		return d[:]
	default:
		return nil
	}
}
