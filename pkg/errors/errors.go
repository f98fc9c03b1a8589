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
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Watchlist errors
	ErrWatchlistNotFound ErrorCode = "WATCHLIST_NOT_FOUND"
	ErrWatchlistExists   ErrorCode = "WATCHLIST_EXISTS"
	ErrInvalidName       ErrorCode = "INVALID_NAME"

	// Path errors
	ErrUnwatchablePath ErrorCode = "UNWATCHABLE_PATH"
	ErrInvalidPath     ErrorCode = "INVALID_PATH"
	ErrPathMissing     ErrorCode = "PATH_MISSING"

	// Backup folder errors
	ErrManifestInvalid ErrorCode = "MANIFEST_INVALID"
	ErrBackupNotFound  ErrorCode = "BACKUP_NOT_FOUND"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrFileCopy   ErrorCode = "FILE_COPY"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// ArchwatchError represents a structured error with code and details
type ArchwatchError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ArchwatchError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ArchwatchError) Unwrap() error {
	return e.Wrapped
}

// Is matches any *ArchwatchError carrying the same code, so sentinels built
// with New can be used as errors.Is targets.
func (e *ArchwatchError) Is(target error) bool {
	var targetErr *ArchwatchError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ArchwatchError with the given code and message
func New(code ErrorCode, message string) *ArchwatchError {
	return &ArchwatchError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ArchwatchError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ArchwatchError {
	return &ArchwatchError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an ArchwatchError
func Wrap(err error, code ErrorCode, message string) *ArchwatchError {
	if err == nil {
		return nil
	}
	return &ArchwatchError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ArchwatchError {
	if err == nil {
		return nil
	}
	return &ArchwatchError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ArchwatchError) WithDetail(key string, value interface{}) *ArchwatchError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *ArchwatchError) WithDetails(details map[string]interface{}) *ArchwatchError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var archErr *ArchwatchError
	if errors.As(err, &archErr) {
		return archErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or "" if not an ArchwatchError
func GetErrorCode(err error) ErrorCode {
	var archErr *ArchwatchError
	if errors.As(err, &archErr) {
		return archErr.Code
	}
	return ""
}

// GetErrorDetails returns the details from an error, or nil if not an ArchwatchError
func GetErrorDetails(err error) map[string]interface{} {
	var archErr *ArchwatchError
	if errors.As(err, &archErr) {
		return archErr.Details
	}
	return nil
}
