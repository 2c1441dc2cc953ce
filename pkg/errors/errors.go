package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Identity tokens
	ErrInvalidSigningMethod = fmt.Errorf("invalid token signing method")
	ErrInvalidToken         = fmt.Errorf("invalid token")
	ErrTokenExpired         = fmt.Errorf("token expired")
	ErrEmptyAuthHeader      = fmt.Errorf("authorization header is missing")
	ErrInvalidAuthHeader    = fmt.Errorf("malformed authorization header")
	ErrUnauthorized         = fmt.Errorf("unauthorized")
	ErrForbidden            = fmt.Errorf("access denied")

	// Context
	ErrIdentityNotFoundInContext = fmt.Errorf("identity not found in request context")

	// General
	ErrNotFound   = fmt.Errorf("record not found")
	ErrBadRequest = fmt.Errorf("bad request")
	ErrConflict   = fmt.Errorf("conflict")

	// Workflow
	ErrIllegalTransition = fmt.Errorf("%w: illegal status transition", ErrConflict)
	ErrUnknownStatus     = fmt.Errorf("%w: unknown status", ErrConflict)
)

// HttpError carries an explicit status code and a client-safe message.
// Err is logged but never sent to the client.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

// ValidationError maps request fields to a human readable problem.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) HasErrors() bool { return e != nil && len(e.Fields) > 0 }

// OrNil returns nil when nothing was collected, so callers can return it unconditionally.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFound wraps ErrNotFound with the entity label, e.g. "order 12 not found".
func NotFound(entity string, id uint64) error {
	return &notFoundError{entity: entity, id: id}
}

type notFoundError struct {
	entity string
	id     uint64
}

func (e *notFoundError) Error() string {
	if e.id == 0 {
		return e.entity + " not found"
	}
	return fmt.Sprintf("%s %d not found", e.entity, e.id)
}

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

// Conflictf builds an error matching ErrConflict whose text is safe to show to clients.
func Conflictf(format string, args ...interface{}) error {
	return &conflictError{msg: fmt.Sprintf(format, args...)}
}

type conflictError struct{ msg string }

func (e *conflictError) Error() string        { return e.msg }
func (e *conflictError) Is(target error) bool { return target == ErrConflict }

// IsValidation reports whether err carries field errors.
func IsValidation(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
