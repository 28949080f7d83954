package backend

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrNotSignedIn        = errors.New("not signed in")
)

// AuthError is an identity-provider rejection carrying the message shown to
// the user verbatim.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

func NewAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	return &AuthError{Message: err.Error(), Err: err}
}

// StoreError is a record-store failure (constraint violation, transport
// failure). Message is what the store reported, if anything.
type StoreError struct {
	Op      string // "select" or "insert"
	Table   string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Op + " " + e.Table + " failed"
}

func (e *StoreError) Unwrap() error { return e.Err }
