package trustmanager

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"

	"github.com/patzielinski/taf/data"
	"github.com/patzielinski/taf/utils"
)

// newPublicKey builds a data.PublicKeyData, deriving its key-id through
// the engine's single canonical routine.
func newPublicKey(algorithm string, scheme data.SigAlgorithm, der []byte) data.PublicKey {
	id, err := utils.KeyID(algorithm, string(scheme), hex.EncodeToString(der))
	if err != nil {
		// KeyID only fails on a cjson encoding error, which cannot
		// happen for this fixed shape; fall back to a direct hash
		// rather than panic on key creation.
		sum := sha256.Sum256(der)
		id = hex.EncodeToString(sum[:])
	}
	return data.NewPublicKey(algorithm, scheme, der, id)
}

// decodeKeyEntry parses a PEM-encoded PKCS#8 private key file back into
// a keyEntry, re-deriving the public key and its id.
func decodeKeyEntry(raw []byte) (*keyEntry, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("trustmanager: not a PEM block")
	}
	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	switch k := priv.(type) {
	case *rsa.PrivateKey:
		der := x509.MarshalPKCS1PublicKey(&k.PublicKey)
		return &keyEntry{public: newPublicKey(data.RSAKey, data.RSAPSSSignature, der), private: k}, nil
	case *ecdsa.PrivateKey:
		der, err := x509.MarshalPKIXPublicKey(&k.PublicKey)
		if err != nil {
			return nil, err
		}
		return &keyEntry{public: newPublicKey(data.ECDSAKey, data.ECDSASignature, der), private: k}, nil
	default:
		return nil, errors.New("trustmanager: unsupported private key type")
	}
}

// signWithPrivate signs an already-computed SHA-256 digest with priv
// according to scheme.
func signWithPrivate(priv interface{}, scheme data.SigAlgorithm, digest []byte) ([]byte, error) {
	switch k := priv.(type) {
	case *rsa.PrivateKey:
		if scheme == data.RSAPSSSignature {
			return rsa.SignPSS(rand.Reader, k, crypto.SHA256, digest, nil)
		}
		return rsa.SignPKCS1v15(rand.Reader, k, crypto.SHA256, digest)
	case *ecdsa.PrivateKey:
		return ecdsa.SignASN1(rand.Reader, k, digest)
	default:
		return nil, errors.New("trustmanager: unsupported private key type")
	}
}
