// Package apperror classifies domain and application errors into the
// taxonomy the HTTP transport maps to status codes, without coupling
// every bounded context's sentinel errors to net/http.
package apperror

import "errors"

// Kind is a transport-independent error classification.
type Kind int

const (
	// KindInternal is the zero value: an unclassified/unexpected failure.
	KindInternal Kind = iota
	KindBadClientData
	KindUnauthorized
	KindNotFound
	KindConflict
	KindUnidentifiableClient
)

// Error wraps an underlying error with a Kind for transport mapping.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func newErr(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, msg: msg, err: err}
}

// BadClientData wraps err as a malformed/invalid request.
func BadClientData(msg string, err error) error { return newErr(KindBadClientData, msg, err) }

// Unauthorized wraps err as a failed authentication/authorization check.
func Unauthorized(msg string, err error) error { return newErr(KindUnauthorized, msg, err) }

// NotFound wraps err as a missing resource.
func NotFound(msg string, err error) error { return newErr(KindNotFound, msg, err) }

// Conflict wraps err as a state conflict (optimistic concurrency, uniqueness).
func Conflict(msg string, err error) error { return newErr(KindConflict, msg, err) }

// Internal wraps err as an unexpected failure.
func Internal(msg string, err error) error { return newErr(KindInternal, msg, err) }

// UnidentifiableClient wraps err as a request whose caller could not be
// identified (missing/invalid API key or bearer token).
func UnidentifiableClient(msg string, err error) error {
	return newErr(KindUnidentifiableClient, msg, err)
}

// KindOf extracts the Kind of err, defaulting to KindInternal when err was
// not produced by this package.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
