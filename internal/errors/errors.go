package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the code of the outermost AppError in the chain, or "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether any AppError in the chain carries code
func HasCode(err error, code string) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Predefined error codes
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeNotFound      = "NOT_FOUND"
	CodeInternalError = "INTERNAL_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"

	// Startup failures; all of them abort the process.
	CodeMissingArtifact = "MISSING_ARTIFACT"
	CodeFetchError      = "FETCH_ERROR"
	CodeSchemaMismatch  = "SCHEMA_MISMATCH"
	CodeDuplicateRoute  = "DUPLICATE_ROUTE"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// MissingArtifact reports an expected input file that does not exist
func MissingArtifact(path string) *AppError {
	return New(CodeMissingArtifact, fmt.Sprintf("missing artifact %s", path))
}

// FetchError reports a remote lookup or download failure
func FetchError(what string, cause error) *AppError {
	return &AppError{
		Code:    CodeFetchError,
		Message: fmt.Sprintf("failed to fetch %s", what),
		Cause:   cause,
	}
}

// SchemaMismatch reports inputs that do not line up with each other
func SchemaMismatch(format string, args ...interface{}) *AppError {
	return New(CodeSchemaMismatch, fmt.Sprintf(format, args...))
}

// DuplicateRoute reports a second registration under the same route
func DuplicateRoute(route string) *AppError {
	return New(CodeDuplicateRoute, fmt.Sprintf("route %q already registered", route))
}
