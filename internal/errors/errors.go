package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is an application-specific error type
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// wraps an error with a code and message
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// CodeOf returns the code of the outermost AppError in err's chain, or "" if there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// Error code constants
const (
	CodeInternal    = "INTERNAL_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeInvalidArg  = "INVALID_ARGUMENT"
	CodeExternal    = "EXTERNAL_ERROR"
	CodeConflict    = "CONFLICT"         // Resource already exists (UNIQUE violation)
	CodeDependency  = "DEPENDENCY_ERROR" // Foreign key constraint violation
	CodeResolution  = "RESOLUTION_ERROR" // Channel could not be resolved or listed
	CodeEmptyResult = "EMPTY_RESULT"     // No videos across all requested channels
	CodeIO          = "IO_ERROR"         // Corpus artifact could not be written
)
