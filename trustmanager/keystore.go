// Package trustmanager holds the software-backed key and certificate
// stores: keys and X.509 certificates persisted as PEM files on disk,
// adapted from the teacher's file-based key and certificate stores.
// Hardware/remote-token backed signing lives in the sibling hwtoken
// package behind the same signed.CryptoService interface.
package trustmanager

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/patzielinski/taf/data"
	"github.com/patzielinski/taf/signed"
)

const keyExtension = ".key"

// KeystoreError reports a failure reading, writing, or parsing a key on
// disk, distinct from a plain "key not found" (which callers treat as a
// normal miss, not an error).
type KeystoreError struct {
	Path string
	Err  error
}

func (e KeystoreError) Error() string {
	return fmt.Sprintf("trustmanager: keystore error at %s: %v", e.Path, e.Err)
}

func (e KeystoreError) Unwrap() error { return e.Err }

// keyEntry is an in-memory record of a loaded private key.
type keyEntry struct {
	public  data.PublicKey
	private interface{} // *rsa.PrivateKey or *ecdsa.PrivateKey
}

// KeyFileStore is a software signed.CryptoService backed by PEM files in
// a directory, one file per key named by key-id. Grounded in the
// teacher's X509FileStore file-naming and load-on-open pattern, applied
// to private keys instead of certificates.
type KeyFileStore struct {
	mu      sync.RWMutex
	baseDir string
	keys    map[string]*keyEntry
}

// NewKeyFileStore opens (creating if needed) a KeyFileStore rooted at
// baseDir, loading every "*.key" PEM file already present.
func NewKeyFileStore(baseDir string) (*KeyFileStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, KeystoreError{Path: baseDir, Err: err}
	}
	s := &KeyFileStore{baseDir: baseDir, keys: map[string]*keyEntry{}}
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, KeystoreError{Path: baseDir, Err: err}
	}
	for _, ent := range entries {
		if ent.IsDir() || filepath.Ext(ent.Name()) != keyExtension {
			continue
		}
		path := filepath.Join(baseDir, ent.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, KeystoreError{Path: path, Err: err}
		}
		entry, err := decodeKeyEntry(raw)
		if err != nil {
			logrus.Warnf("trustmanager: skipping unreadable key file %s: %v", path, err)
			continue
		}
		s.keys[entry.public.ID()] = entry
	}
	return s, nil
}

// PublicKey implements signed.CryptoService.
func (s *KeyFileStore) PublicKey(keyID string) data.PublicKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.keys[keyID]; ok {
		return e.public
	}
	return nil
}

// Sign implements signed.Signer, signing digest with the named key's
// private half entirely in-process (no PIN prompt, no network round
// trip).
func (s *KeyFileStore) Sign(keyID string, digest []byte) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.keys[keyID]
	s.mu.RUnlock()
	if !ok {
		return nil, signed.ErrNoSuchKey{KeyID: keyID}
	}
	return signWithPrivate(e.private, e.public.SignatureAlgorithm(), digest)
}

// Create generates a new key of the given algorithm, persists it, and
// returns its public half.
func (s *KeyFileStore) Create(role, algorithm string) (data.PublicKey, error) {
	var (
		priv   interface{}
		pub    data.PublicKey
		scheme data.SigAlgorithm
	)
	switch algorithm {
	case data.RSAKey:
		rk, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, err
		}
		priv = rk
		scheme = data.RSAPSSSignature
		derBytes := x509.MarshalPKCS1PublicKey(&rk.PublicKey)
		pub = newPublicKey(data.RSAKey, scheme, derBytes)
	case data.ECDSAKey:
		ek, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, err
		}
		priv = ek
		scheme = data.ECDSASignature
		derBytes, err := x509.MarshalPKIXPublicKey(&ek.PublicKey)
		if err != nil {
			return nil, err
		}
		pub = newPublicKey(data.ECDSAKey, scheme, derBytes)
	default:
		return nil, signed.ErrInvalidKeyType{Msg: algorithm}
	}

	s.mu.Lock()
	s.keys[pub.ID()] = &keyEntry{public: pub, private: priv}
	s.mu.Unlock()

	if err := s.persist(pub.ID(), priv); err != nil {
		return nil, err
	}
	return pub, nil
}

// RemoveKey deletes a key's file and drops it from memory. Removing an
// unknown key-id is not an error.
func (s *KeyFileStore) RemoveKey(keyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[keyID]; !ok {
		return nil
	}
	delete(s.keys, keyID)
	path := filepath.Join(s.baseDir, keyID+keyExtension)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return KeystoreError{Path: path, Err: err}
	}
	return nil
}

// ListKeys returns every key-id this store currently holds.
func (s *KeyFileStore) ListKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.keys))
	for id := range s.keys {
		out = append(out, id)
	}
	return out
}

func (s *KeyFileStore) persist(keyID string, priv interface{}) error {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return err
	}
	block := &pem.Block{Type: "PRIVATE KEY", Bytes: der}
	path := filepath.Join(s.baseDir, keyID+keyExtension)
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		return KeystoreError{Path: path, Err: err}
	}
	return nil
}
