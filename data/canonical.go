package data

import (
	"github.com/docker/go/canonical/json"
)

// Canonical renders v as canonical JSON: sorted object keys, ASCII-only
// with escapes, no trailing newline, integers without a trailing ".0".
// This is the exact byte sequence signed over and written to disk, so
// both the signing pipeline and the on-disk store route through this
// single function. Grounded in the teacher's server/snapshot tests,
// which marshal signed bodies through this same package instead of
// encoding/json so re-signing is reproducible byte-for-byte.
func Canonical(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
