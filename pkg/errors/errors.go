package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Module errors
	ErrModuleFailed  ErrorCode = "MODULE_FAILED"
	ErrActionInvalid ErrorCode = "ACTION_INVALID"
	ErrScriptSyntax  ErrorCode = "SCRIPT_SYNTAX"
	ErrFetchFailed   ErrorCode = "FETCH_FAILED"

	// Archive errors
	ErrArchive ErrorCode = "ARCHIVE_FAILED"

	// Programming errors inside a module
	ErrPolicyViolation ErrorCode = "POLICY_VIOLATION"

	// Version counter errors
	ErrVersionInvalid ErrorCode = "VERSION_INVALID"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
)

// ScramjetError represents a structured error with code and details
type ScramjetError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ScramjetError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ScramjetError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ScramjetError) Is(target error) bool {
	var targetErr *ScramjetError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ScramjetError with the given code and message
func New(code ErrorCode, message string) *ScramjetError {
	return &ScramjetError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ScramjetError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ScramjetError {
	return &ScramjetError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ScramjetError
func Wrap(err error, code ErrorCode, message string) *ScramjetError {
	if err == nil {
		return nil
	}
	return &ScramjetError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ScramjetError {
	if err == nil {
		return nil
	}
	return &ScramjetError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ScramjetError) WithDetail(key string, value interface{}) *ScramjetError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code.
// The outermost ScramjetError in the chain decides.
func IsErrorCode(err error, code ErrorCode) bool {
	var scramjetErr *ScramjetError
	if errors.As(err, &scramjetErr) {
		return scramjetErr.Code == code
	}
	return false
}

// HasErrorCode reports whether any ScramjetError in the chain carries code.
func HasErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var scramjetErr *ScramjetError
		if !errors.As(err, &scramjetErr) {
			return false
		}
		if scramjetErr.Code == code {
			return true
		}
		err = scramjetErr.Wrapped
	}
	return false
}

// IsCoded reports whether a ScramjetError appears anywhere in err's chain
func IsCoded(err error) bool {
	var scramjetErr *ScramjetError
	return errors.As(err, &scramjetErr)
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ScramjetError
func GetErrorCode(err error) ErrorCode {
	var scramjetErr *ScramjetError
	if errors.As(err, &scramjetErr) {
		return scramjetErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a ScramjetError
func GetErrorDetails(err error) map[string]interface{} {
	var scramjetErr *ScramjetError
	if errors.As(err, &scramjetErr) {
		return scramjetErr.Details
	}
	return nil
}
