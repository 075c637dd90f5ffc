package model

import "errors"

// ErrorCode classifies gateway failures.
type ErrorCode string

const (
	ErrUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrServerError       ErrorCode = "SERVER_ERROR"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrEncryptionFailed  ErrorCode = "ENCRYPTION_FAILED"
	ErrDecryptionFailed  ErrorCode = "DECRYPTION_FAILED"
	ErrInvalidRegex      ErrorCode = "INVALID_REGEX"
)

// APIError is the gateway's typed error: an error code, a human-readable
// message, and the HTTP-equivalent status code used for logging and by
// transports. Only the message text leaves the gateway boundary.
type APIError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
}

func (e *APIError) Error() string { return e.Message }

// NewAPIError creates an APIError with the given code, message and status.
func NewAPIError(code ErrorCode, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, StatusCode: status}
}

// StatusOf returns the status code carried by err, or 500 when err is not
// an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 500
}
