package core

import "github.com/pkg/errors"

// Kind classifies a domain failure; the outer HTTP layer maps it to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindForbidden
	KindConflict
	KindExpired
)

// Error is a domain error with a Kind and a human-readable message.
// Persistence-layer details never travel in it; they are wrapped separately
// and surface as KindInternal.
type Error struct {
	Kind Kind
	Msg  string
}

func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string {
	return e.Msg
}

// ErrKind returns the Kind of err, unwrapping pkg/errors causes.
// Any non-domain error is KindInternal.
func ErrKind(err error) Kind {
	if derr, ok := errors.Cause(err).(*Error); ok {
		return derr.Kind
	}
	return KindInternal
}

// IsKind reports whether err's cause is a domain error of the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && ErrKind(err) == kind
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
