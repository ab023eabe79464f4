package signed

import "fmt"

// ErrInsufficientSignatures means a role body carried fewer valid
// signatures than its threshold requires.
type ErrInsufficientSignatures struct {
	Role      string
	Numkeys   int
	Threshold int
}

func (e ErrInsufficientSignatures) Error() string {
	return fmt.Sprintf("signed: %s has %d valid signature(s), threshold is %d", e.Role, e.Numkeys, e.Threshold)
}

// ErrRoleThreshold is returned when an operation would leave a role with
// fewer assigned keys than its own threshold, rather than letting the
// role become unsatisfiable.
type ErrRoleThreshold struct {
	Role      string
	Threshold int
	Remaining int
}

func (e ErrRoleThreshold) Error() string {
	return fmt.Sprintf("signed: removing key(s) would leave %s with %d key(s), below its threshold of %d", e.Role, e.Remaining, e.Threshold)
}

// ErrExpired means a signed body's expiry timestamp is in the past.
type ErrExpired struct {
	Role string
}

func (e ErrExpired) Error() string {
	return fmt.Sprintf("signed: %s has expired", e.Role)
}

// ErrInvalidKeyType means a key's declared algorithm or scheme is not one
// this engine can sign or verify with.
type ErrInvalidKeyType struct {
	Msg string
}

func (e ErrInvalidKeyType) Error() string {
	return fmt.Sprintf("signed: invalid key type: %s", e.Msg)
}

// ErrNoKeys means a role has no usable keys available to sign with.
type ErrNoKeys struct {
	Role string
}

func (e ErrNoKeys) Error() string {
	return fmt.Sprintf("signed: no signing keys available for role %s", e.Role)
}

// ErrInvalidRole means a role name is not one this engine recognizes
// (not a canonical role and not a delegation path under targets).
type ErrInvalidRole struct {
	Role   string
	Reason string
}

func (e ErrInvalidRole) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("signed: invalid role %s: %s", e.Role, e.Reason)
	}
	return fmt.Sprintf("signed: invalid role %s", e.Role)
}

// SigningError wraps a failure from a CryptoService or Signer, keeping
// the originating key-id for diagnostics without leaking key material.
type SigningError struct {
	KeyID string
	Err   error
}

func (e SigningError) Error() string {
	return fmt.Sprintf("signed: signing with key %s failed: %v", e.KeyID, e.Err)
}

func (e SigningError) Unwrap() error { return e.Err }
