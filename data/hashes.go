package data

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/json"
	"fmt"
	"io"
)

// Hashes maps a hash algorithm name ("sha256", "sha512") to its digest.
type Hashes map[string]HexBytes

// FileMeta is the length/hash record kept for a target file or a
// tracked metadata role file.
type FileMeta struct {
	Length int64                      `json:"length"`
	Hashes Hashes                     `json:"hashes"`
	Custom map[string]json.RawMessage `json:"custom,omitempty"`
}

// NewFileMeta computes a FileMeta by hashing r with every algorithm in
// hashAlgorithms (sha256 and sha512 if none given), matching the
// target-file lifecycle's required { length, hashes } computation.
func NewFileMeta(r io.Reader, hashAlgorithms ...string) (FileMeta, error) {
	if len(hashAlgorithms) == 0 {
		hashAlgorithms = []string{"sha256", "sha512"}
	}
	hashes := make(map[string]io.Writer, len(hashAlgorithms))
	hasher := map[string]interface{ Sum([]byte) []byte }{}
	for _, alg := range hashAlgorithms {
		switch alg {
		case "sha256":
			h := sha256.New()
			hashes[alg] = h
			hasher[alg] = h
		case "sha512":
			h := sha512.New()
			hashes[alg] = h
			hasher[alg] = h
		default:
			return FileMeta{}, fmt.Errorf("data: unsupported hash algorithm %q", alg)
		}
	}
	writers := make([]io.Writer, 0, len(hashes))
	for _, w := range hashes {
		writers = append(writers, w)
	}
	n, err := io.Copy(io.MultiWriter(writers...), r)
	if err != nil {
		return FileMeta{}, err
	}
	result := Hashes{}
	for alg, h := range hasher {
		result[alg] = h.Sum(nil)
	}
	return FileMeta{Length: n, Hashes: result}, nil
}

// Equal reports whether h and other carry the same digest for every
// algorithm present in both; an algorithm present in only one of them is
// skipped. It returns false if either set is empty.
func (h Hashes) Equal(other Hashes) bool {
	if len(h) == 0 || len(other) == 0 {
		return false
	}
	for alg, digest := range h {
		otherDigest, ok := other[alg]
		if !ok {
			continue
		}
		if len(digest) != len(otherDigest) {
			return false
		}
		for i := range digest {
			if digest[i] != otherDigest[i] {
				return false
			}
		}
	}
	return true
}
