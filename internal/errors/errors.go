// Package errors defines the error kinds shared by the CLI and the JSON
// API. A kind fixes both the exit code of a failed command and the
// status of a failed request.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind is the category of an error. See kinds for the exit code and
// HTTP status of each.
type Kind int

const (
	KindInvalidArgs Kind = iota
	KindNotFound
	// KindStateError is an operation the current data does not allow,
	// such as a strict chain over a dependency cycle.
	KindStateError
	KindConcurrentConflict
	// KindInternal covers storage and encoding failures.
	KindInternal
	KindGeneral
	// KindUnauthorized, KindForbidden and KindUnavailable come from the
	// hosted backend: rejected credentials, an account off the
	// allow-list, and a backend that is not configured or unreachable.
	KindUnauthorized
	KindForbidden
	KindUnavailable
)

// kindInfo is the name, CLI exit code and HTTP status of a kind.
type kindInfo struct {
	name   string
	exit   int
	status int
}

var kinds = map[Kind]kindInfo{
	KindInvalidArgs:        {"InvalidArgs", 2, http.StatusBadRequest},
	KindNotFound:           {"NotFound", 3, http.StatusNotFound},
	KindStateError:         {"StateError", 4, http.StatusUnprocessableEntity},
	KindInternal:           {"Internal", 5, http.StatusInternalServerError},
	KindConcurrentConflict: {"ConcurrentConflict", 6, http.StatusConflict},
	KindUnauthorized:       {"Unauthorized", 7, http.StatusUnauthorized},
	KindForbidden:          {"Forbidden", 8, http.StatusForbidden},
	KindUnavailable:        {"Unavailable", 9, http.StatusServiceUnavailable},
	KindGeneral:            {"General", 1, http.StatusInternalServerError},
}

// info returns the table entry of k; unknown kinds behave as General.
func (k Kind) info() (kindInfo, bool) {
	if ki, ok := kinds[k]; ok {
		return ki, true
	}
	return kinds[KindGeneral], false
}

// String returns the name of the kind, or "Unknown".
func (k Kind) String() string {
	ki, ok := k.info()
	if !ok {
		return "Unknown"
	}
	return ki.name
}

// Error is an error with a kind, an optional cause and optional
// details and suggestion for the user.
type Error struct {
	Kind       Kind
	Message    string
	Cause      error
	Details    map[string]interface{}
	Suggestion string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// CLIExitCode returns the process exit code of the error's kind.
func (e *Error) CLIExitCode() int {
	ki, _ := e.Kind.info()
	return ki.exit
}

// HTTPStatus returns the response status of the error's kind.
func (e *Error) HTTPStatus() int {
	ki, _ := e.Kind.info()
	return ki.status
}

// WithDetails adds details to the error and returns it for chaining.
func (e *Error) WithDetails(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error and returns it for chaining.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound creates an error for missing resources.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// InvalidArgs creates an error for invalid arguments.
func InvalidArgs(format string, args ...interface{}) *Error {
	return newError(KindInvalidArgs, format, args...)
}

// StateError creates an error for operations the current state forbids.
func StateError(format string, args ...interface{}) *Error {
	return newError(KindStateError, format, args...)
}

// ConcurrentConflict creates an error for concurrent modification conflicts.
func ConcurrentConflict(format string, args ...interface{}) *Error {
	return newError(KindConcurrentConflict, format, args...)
}

// Internal creates an error for internal/storage errors.
func Internal(format string, args ...interface{}) *Error {
	return newError(KindInternal, format, args...)
}

// General creates a general error.
func General(format string, args ...interface{}) *Error {
	return newError(KindGeneral, format, args...)
}

// Unauthorized creates an error for rejected credentials.
func Unauthorized(format string, args ...interface{}) *Error {
	return newError(KindUnauthorized, format, args...)
}

// Forbidden creates an error for accounts without access.
func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

// Unavailable creates an error for an unconfigured or unreachable backend.
func Unavailable(format string, args ...interface{}) *Error {
	return newError(KindUnavailable, format, args...)
}

// Wrap wraps an existing error with a specific kind and message.
func Wrap(err error, kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// WrapInternal wraps an error as an internal error.
func WrapInternal(err error, format string, args ...interface{}) *Error {
	return Wrap(err, KindInternal, format, args...)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetKind extracts the Kind from an error, returning KindGeneral if the error
// chain holds no *Error.
func GetKind(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindGeneral
}

// GetCLIExitCode extracts the CLI exit code from an error.
func GetCLIExitCode(err error) int {
	if e, ok := As(err); ok {
		return e.CLIExitCode()
	}
	return kinds[KindGeneral].exit
}

// GetHTTPStatus extracts the HTTP status code from an error.
func GetHTTPStatus(err error) int {
	if e, ok := As(err); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Is returns true if the error chain holds an *Error of the specified kind.
func Is(err error, kind Kind) bool {
	if e, ok := As(err); ok {
		return e.Kind == kind
	}
	return false
}
