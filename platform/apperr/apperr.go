// Package apperr provides the typed errors services return. The HTTP layer
// maps each Kind to a status code; anything untyped becomes a 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: no stored call, contact or number.
	KindNotFound
	// KindValidation: input that cannot be parsed or stored.
	KindValidation
	// KindInternal: storage or other unexpected failures.
	KindInternal
	// KindUnavailable: a lookup source or dependency cannot be reached.
	KindUnavailable
	// KindRateLimited: the caller or an upstream quota was exhausted.
	KindRateLimited
)

var statusByKind = map[Kind]int{
	KindNotFound:    http.StatusNotFound,
	KindValidation:  http.StatusBadRequest,
	KindInternal:    http.StatusInternalServerError,
	KindUnavailable: http.StatusServiceUnavailable,
	KindRateLimited: http.StatusTooManyRequests,
}

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string
	Err     error
	Details interface{}
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code for the error's kind.
func (e *Error) HTTPStatus() int {
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithOp sets the failing operation, e.g. "lookup.Block".
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithCause records the underlying error for errors.Is/As.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// WithDetails attaches data returned alongside the message.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error    { return newError(KindNotFound, message) }
func Validation(message string) *Error  { return newError(KindValidation, message) }
func Internal(message string) *Error    { return newError(KindInternal, message) }
func Unavailable(message string) *Error { return newError(KindUnavailable, message) }
func RateLimited(message string) *Error { return newError(KindRateLimited, message) }

// Is reports whether err wraps an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return kind == KindUnknown
}
