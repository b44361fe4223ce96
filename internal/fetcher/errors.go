package fetcher

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error that occurred during a request
type ErrorType string

const (
	// ErrorTypeConfigurationMissing indicates the token for the active mode is not set
	ErrorTypeConfigurationMissing ErrorType = "configuration_missing"
	// ErrorTypeInvalidArgument indicates a caller-supplied value was rejected before any request was made
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	// ErrorTypeHTTP indicates the service answered with a non-success status
	ErrorTypeHTTP ErrorType = "http"
	// ErrorTypeDecode indicates the response body could not be parsed as the expected JSON
	ErrorTypeDecode ErrorType = "decode"
	// ErrorTypeNetwork indicates a transport-level failure (connection refused, DNS, cancelled context, etc.)
	ErrorTypeNetwork ErrorType = "network"
)

// FetchError represents a structured error from a request to the service
type FetchError struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewConfigurationMissingError creates an error for a token that is not set
func NewConfigurationMissingError(message string) *FetchError {
	return &FetchError{
		Type:    ErrorTypeConfigurationMissing,
		Message: message,
	}
}

// NewInvalidArgumentError creates an error for a rejected argument
func NewInvalidArgumentError(format string, args ...any) *FetchError {
	return &FetchError{
		Type:    ErrorTypeInvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewHTTPError creates an error carrying a non-success status code
func NewHTTPError(statusCode int, message string) *FetchError {
	if message == "" {
		message = fmt.Sprintf("unexpected status code: %d", statusCode)
	}
	return &FetchError{
		Type:       ErrorTypeHTTP,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewDecodeError creates an error for a body that could not be decoded
func NewDecodeError(message string, cause error) *FetchError {
	return &FetchError{
		Type:    ErrorTypeDecode,
		Message: message,
		Cause:   cause,
	}
}

// NewNetworkError creates a network error
func NewNetworkError(cause error) *FetchError {
	return &FetchError{
		Type:    ErrorTypeNetwork,
		Message: "network request failed",
		Cause:   cause,
	}
}

// IsType reports whether any error in err's chain is a *FetchError of type t
func IsType(err error, t ErrorType) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	return fe.Type == t
}

// StatusCode returns the HTTP status carried by err, or 0 if there is none
func StatusCode(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
