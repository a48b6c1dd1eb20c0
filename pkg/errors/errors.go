package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode represents a unique error code
type ErrorCode string

const (
	// Generic errors
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeUnprocessable     ErrorCode = "UNPROCESSABLE"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Transport errors
	ErrCodeTransport         ErrorCode = "TRANSPORT_ERROR"
	ErrCodeRemoteUnavailable ErrorCode = "REMOTE_UNAVAILABLE"
	ErrCodeInvalidResponse   ErrorCode = "INVALID_RESPONSE"

	// Provisioning errors
	ErrCodeInvalidConfig     ErrorCode = "INVALID_CONFIG"
	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserAlreadyExists ErrorCode = "USER_ALREADY_EXISTS"
)

// Detail keys set by FromResponse
const (
	DetailStatus = "status"
	DetailBody   = "body"
)

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code    ErrorCode              // Unique error code
	Message string                 // Human-readable error message
	Details map[string]interface{} // Optional additional details
	Err     error                  // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an existing error with code and formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// FromResponse builds an error for a non-2xx response. The status code and the
// trimmed response body are kept as details.
func FromResponse(operation string, status int, body []byte) *Error {
	return Newf(MapHTTPStatusToErrorCode(status), "%s failed with status %d", operation, status).
		WithDetail(DetailStatus, status).
		WithDetail(DetailBody, strings.TrimSpace(string(body)))
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
// Returns ErrCodeInternal if the error is not a structured Error
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// GetDetails extracts the details from an error
// Returns nil if the error is not a structured Error
func GetDetails(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// StatusCode returns the HTTP status recorded on err, or 0 if there is none
func StatusCode(err error) int {
	status, _ := GetDetails(err)[DetailStatus].(int)
	return status
}

// ResponseBody returns the response body recorded on err, or "" if there is none
func ResponseBody(err error) string {
	body, _ := GetDetails(err)[DetailBody].(string)
	return body
}

// IsStatus reports whether err carries one of the given HTTP statuses
func IsStatus(err error, statuses ...int) bool {
	got := StatusCode(err)
	if got == 0 {
		return false
	}
	for _, s := range statuses {
		if got == s {
			return true
		}
	}
	return false
}

// MapHTTPStatusToErrorCode maps a remote HTTP status to an error code
func MapHTTPStatusToErrorCode(status int) ErrorCode {
	switch {
	case status == http.StatusBadRequest:
		return ErrCodeInvalidInput
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeForbidden
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusConflict:
		return ErrCodeConflict
	case status == http.StatusUnprocessableEntity:
		return ErrCodeUnprocessable
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimitExceeded
	case status >= 500:
		return ErrCodeRemoteUnavailable
	default:
		return ErrCodeInternal
	}
}

// NotFound creates a "not found" error
func NotFound(resourceType, identifier string) *Error {
	return Newf(ErrCodeNotFound, "%s not found: %s", resourceType, identifier)
}

// InvalidInput creates an "invalid input" error
func InvalidInput(field, reason string) *Error {
	return New(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason))
}

// InternalWrap wraps an internal error
func InternalWrap(err error, message string) *Error {
	return Wrap(err, ErrCodeInternal, message)
}
