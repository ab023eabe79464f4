// Package cryptoservice composes the software and hardware-backed key
// stores behind one signed.CryptoService, and generates the self-signed
// X.509 certificates metadata keys are optionally stamped with, adapted
// from the teacher's cryptoservice and its certificate_test.go fixture.
package cryptoservice

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/patzielinski/taf/data"
	"github.com/patzielinski/taf/signed"
	"github.com/patzielinski/taf/trustmanager"
)

// CryptoService wires a software KeyFileStore, an optional hardware
// token store, and a certificate store together behind a single
// signed.CryptoService, the same way the teacher's NotaryRepository
// composes a FileStore keystore with an optional GRPCKeyStore.
type CryptoService struct {
	signed.MultiCryptoService
	certs *trustmanager.X509FileStore
}

// New builds a CryptoService from one or more backing key stores, in
// priority order (software first, then any hardware/remote token).
func New(certs *trustmanager.X509FileStore, backends ...signed.CryptoService) *CryptoService {
	return &CryptoService{MultiCryptoService: signed.MultiCryptoService(backends), certs: certs}
}

// GenerateCertificate issues a self-signed X.509 certificate over a
// metadata key, valid from now until expires, and records it in the
// certificate store under the key's id. This lets a key carry
// human-auditable identity (subject, validity window) alongside the
// bare key-id TUF itself cares about.
func (c *CryptoService) GenerateCertificate(keyID string, commonName string, expires time.Time) (*x509.Certificate, error) {
	pub := c.PublicKey(keyID)
	if pub == nil {
		return nil, signed.ErrNoSuchKey{KeyID: keyID}
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now(),
		NotAfter:              expires,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		IsCA:                  true,
		BasicConstraintsValid: true,
		SignatureAlgorithm:    x509SignatureAlgorithm(pub),
	}

	pubKey, err := parsePublicKeyForX509(pub)
	if err != nil {
		return nil, err
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, pubKey, x509CryptoSigner{svc: c, keyID: keyID})
	if err != nil {
		return nil, fmt.Errorf("cryptoservice: certificate generation failed: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	if err := c.certs.AddCert(keyID, cert); err != nil {
		return nil, err
	}
	return cert, nil
}

// ReadKeyCertInfo returns the certificate stamped on a key, if any,
// looking it up in the certificate store by keyID. Grounded in the original
// project's get_metadata_key_info/_extract_x509 helper, which surfaces a
// key's certificate subject and expiry alongside its keyid and scheme.
func (c *CryptoService) ReadKeyCertInfo(keyID string) (*x509.Certificate, error) {
	return c.certs.GetCertificateByFingerprint(keyID)
}

// x509SignatureAlgorithm picks the x509.SignatureAlgorithm matching the
// scheme pub actually signs with, so the certificate's declared
// algorithm identifier agrees with the padding x509CryptoSigner
// produces (x509.CreateCertificate's own default for an *rsa.PublicKey
// is PKCS#1v1.5, which would mismatch an RSA-PSS signer).
func x509SignatureAlgorithm(pub data.PublicKey) x509.SignatureAlgorithm {
	switch pub.SignatureAlgorithm() {
	case data.RSAPSSSignature:
		return x509.SHA256WithRSAPSS
	case data.RSAPKCS1v15Signature:
		return x509.SHA256WithRSA
	case data.ECDSASignature:
		return x509.ECDSAWithSHA256
	default:
		return x509.UnknownSignatureAlgorithm
	}
}

func parsePublicKeyForX509(pub data.PublicKey) (interface{}, error) {
	switch pub.Algorithm() {
	case data.RSAKey:
		return x509.ParsePKCS1PublicKey(pub.Public())
	case data.ECDSAKey:
		parsed, err := x509.ParsePKIXPublicKey(pub.Public())
		if err != nil {
			return nil, err
		}
		if _, ok := parsed.(*ecdsa.PublicKey); !ok {
			return nil, fmt.Errorf("cryptoservice: not an ECDSA public key")
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("cryptoservice: unsupported key algorithm %s", pub.Algorithm())
	}
}

// x509CryptoSigner adapts the CryptoService's Sign method to the
// crypto.Signer shape x509.CreateCertificate expects, routing
// self-signing through the same sign path (and, for hardware keys, the
// same PIN-gated round trip) every metadata signature takes.
type x509CryptoSigner struct {
	svc   *CryptoService
	keyID string
}

func (s x509CryptoSigner) Public() crypto.PublicKey {
	pub := s.svc.PublicKey(s.keyID)
	key, _ := parsePublicKeyForX509(pub)
	return key
}

func (s x509CryptoSigner) Sign(_ io.Reader, digest []byte, _ crypto.SignerOpts) ([]byte, error) {
	return s.svc.Sign(s.keyID, digest)
}
