package data

import (
	"encoding/hex"
	"errors"
)

// MarshalJSON renders HexBytes as a lowercase hex string, matching the
// wire format used for hashes and signature bytes throughout the
// repository's canonical JSON.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	res := make([]byte, hex.EncodedLen(len(b))+2)
	res[0] = '"'
	res[len(res)-1] = '"'
	hex.Encode(res[1:], b)
	return res, nil
}

// UnmarshalJSON parses a hex-encoded JSON string into HexBytes.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("data: invalid JSON hex bytes")
	}
	inner := data[1 : len(data)-1]
	res := make([]byte, hex.DecodedLen(len(inner)))
	n, err := hex.Decode(res, inner)
	if err != nil {
		return err
	}
	*b = res[:n]
	return nil
}

// String renders the hex encoding of b.
func (b HexBytes) String() string {
	return hex.EncodeToString(b)
}
