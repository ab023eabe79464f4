package data

import "encoding/json"

// Key algorithm identifiers.
const (
	RSAKey   = "rsa"
	ECDSAKey = "ecdsa"
)

// SigAlgorithm identifies the signature scheme a key signs with.
type SigAlgorithm string

// Supported signature schemes. The default is RSA-PSS with SHA-256;
// verification always uses the scheme declared on the key, never an
// assumed default.
const (
	RSAPSSSignature      SigAlgorithm = "rsapss"
	RSAPKCS1v15Signature SigAlgorithm = "rsapkcs1v15"
	ECDSASignature       SigAlgorithm = "ecdsa"
)

// PublicKey is the verification half of a keypair, as carried in a role's
// key dictionary.
type PublicKey interface {
	ID() string
	Algorithm() string
	SignatureAlgorithm() SigAlgorithm
	Public() []byte
}

// PrivateKey extends PublicKey with the private key material.
// Hardware-token backed keys do not implement it; their private half
// stays on the token.
type PrivateKey interface {
	PublicKey
	Private() []byte
}

// tufKey is the on-the-wire representation of a public key:
// { keytype, scheme, keyval: { public } }.
type tufKey struct {
	Type   string       `json:"keytype"`
	Scheme SigAlgorithm `json:"scheme"`
	Value  keyValue     `json:"keyval"`
}

type keyValue struct {
	Public HexBytes `json:"public"`
}

// PublicKeyData is a concrete PublicKey backed by PEM-at-rest material.
type PublicKeyData struct {
	algorithm string
	scheme    SigAlgorithm
	public    []byte
	id        string
}

// NewPublicKey constructs a PublicKeyData from already-known fields,
// including its key-id; callers deriving a fresh key-id do so via the
// project's single canonical routine (see utils.KeyID) before calling
// this.
func NewPublicKey(algorithm string, scheme SigAlgorithm, public []byte, keyID string) *PublicKeyData {
	return &PublicKeyData{algorithm: algorithm, scheme: scheme, public: public, id: keyID}
}

func (k *PublicKeyData) ID() string                      { return k.id }
func (k *PublicKeyData) Algorithm() string                { return k.algorithm }
func (k *PublicKeyData) SignatureAlgorithm() SigAlgorithm { return k.scheme }
func (k *PublicKeyData) Public() []byte                   { return k.public }

// MarshalJSON renders the key in the wire { keytype, scheme, keyval } shape.
func (k *PublicKeyData) MarshalJSON() ([]byte, error) {
	return json.Marshal(tufKey{Type: k.algorithm, Scheme: k.scheme, Value: keyValue{Public: k.public}})
}

// KeyList is an ordered set of public keys, used when assembling the
// union of keys destined for a role descriptor at creation time.
type KeyList []PublicKey

// unmarshalKeyMap decodes a wire key dictionary ({ keyid: { keytype,
// scheme, keyval } }) into a map[string]PublicKey of concrete
// PublicKeyData values. PublicKey is an interface, so the standard
// library cannot unmarshal into it directly; every signed body that
// carries a key dictionary (Root, Delegations) routes through this
// instead of relying on encoding/json's default map handling.
func unmarshalKeyMap(raw json.RawMessage) (map[string]PublicKey, error) {
	if len(raw) == 0 {
		return map[string]PublicKey{}, nil
	}
	var wire map[string]tufKey
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	out := make(map[string]PublicKey, len(wire))
	for id, k := range wire {
		out[id] = NewPublicKey(k.Type, k.Scheme, k.Value.Public, id)
	}
	return out, nil
}

// Signature is a single signature over a role's canonical body.
type Signature struct {
	KeyID     string       `json:"keyid"`
	Method    SigAlgorithm `json:"scheme"`
	Signature HexBytes     `json:"sig"`
}

// HexBytes round-trips through JSON as a lowercase hex string rather than
// base64, matching the teacher's wire format for signatures and hashes.
type HexBytes []byte
