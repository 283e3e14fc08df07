package registry

import (
	"errors"
	"fmt"
	"net/url"
	"os"
)

// ErrorType represents the category of a sync failure
type ErrorType int

const (
	// ErrTypeNetwork indicates a transport-level error (connection refused, DNS, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the registry did not answer in time
	ErrTypeTimeout
	// ErrTypeHTTP indicates a non-success status from the registry
	ErrTypeHTTP
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeHTTP:
		return "HTTP Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// SyncError describes why a refresh cycle was abandoned
type SyncError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Type, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a transport-level error, classifying timeouts
func NewNetworkError(message string, err error) *SyncError {
	errType := ErrTypeNetwork
	if isTimeout(err) {
		errType = ErrTypeTimeout
	}
	return &SyncError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// NewHTTPError creates an error for a non-success registry response
func NewHTTPError(statusCode int) *SyncError {
	return &SyncError{
		Type:       ErrTypeHTTP,
		Message:    "registry returned non-success status",
		StatusCode: statusCode,
	}
}

func isTimeout(err error) bool {
	if os.IsTimeout(err) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// IsNetworkError checks if an error is a transport failure (including timeouts)
func IsNetworkError(err error) bool {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Type == ErrTypeNetwork || syncErr.Type == ErrTypeTimeout
	}
	return false
}

// IsTimeout checks if an error is specifically a timeout
func IsTimeout(err error) bool {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Type == ErrTypeTimeout
	}
	return false
}

// IsHTTPError checks if an error is a non-success registry response
func IsHTTPError(err error) bool {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Type == ErrTypeHTTP
	}
	return false
}
