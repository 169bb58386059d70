package errs

import (
	"errors"
	"fmt"
)

// Kind classifies picker failures
type Kind int

const (
	// KindInitialization means the identity client or Drive API could not be set up
	KindInitialization Kind = iota
	// KindAuthentication means consent was denied or the token exchange failed
	KindAuthentication
	// KindNotAuthenticated means a listing was attempted without a token
	KindNotAuthenticated
	// KindListing means a Drive query was rejected or the network failed
	KindListing
)

func (k Kind) String() string {
	switch k {
	case KindInitialization:
		return "initialization failed"
	case KindAuthentication:
		return "authentication failed"
	case KindNotAuthenticated:
		return "not authenticated"
	case KindListing:
		return "listing failed"
	default:
		return "unknown error"
	}
}

// Recoverable reports whether the user can retry after a failure of this kind
func (k Kind) Recoverable() bool {
	return k == KindAuthentication || k == KindListing
}

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotInitialized   = errors.New("identity client not initialized")
	ErrConsentDenied    = errors.New("consent denied")
)

// Error is the uniform shape every failure is normalized to before it
// reaches an error callback
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Normalize wraps err into an *Error. Errors that already carry a kind are
// returned unchanged.
func Normalize(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return New(kind, op, err)
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, defaulting to KindListing for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindListing
}
