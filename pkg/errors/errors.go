// Package errors provides custom error types for the citemap system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the citemap system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoSources indicates that no usable search sources remain after filtering
	ErrNoSources = errors.New("no sources available")

	// ErrAPIKeyRequired indicates that an API key is required but not provided
	ErrAPIKeyRequired = errors.New("API key required")

	// ErrSourceUnavailable indicates that a search source is temporarily unavailable
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrMalformedResponse indicates that a source returned data that could not be decoded
	ErrMalformedResponse = errors.New("malformed response")
)

// ValidationError represents a search parameter or record validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// NetworkError represents a connectivity or timeout failure while talking to
// a search backend
type NetworkError struct {
	Source   string
	Endpoint string
	Message  string
	Err      error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error from %s (%s): %s", e.Source, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("network error from %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *NetworkError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(source, endpoint string, err error) *NetworkError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &NetworkError{
		Source:   source,
		Endpoint: endpoint,
		Message:  message,
		Err:      err,
	}
}

// FormatError represents a response payload that could not be decoded or
// normalized into records
type FormatError struct {
	Source  string
	Format  string // "json", "xml", "atom"
	Message string
	Err     error
}

// Error implements the error interface
func (e *FormatError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("format error from %s (%s): %s", e.Source, e.Format, e.Message)
	}
	return fmt.Sprintf("format error from %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FormatError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// NewFormatError creates a new FormatError
func NewFormatError(source, format, message string, err error) *FormatError {
	return &FormatError{
		Source:  source,
		Format:  format,
		Message: message,
		Err:     err,
	}
}

// APIError represents an error response from a source API
type APIError struct {
	Source     string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	if e.StatusCode == 429 {
		return target == ErrRateLimited
	}
	if e.StatusCode >= 500 {
		return target == ErrSourceUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(source string, statusCode int, message string) *APIError {
	return &APIError{
		Source:     source,
		StatusCode: statusCode,
		Message:    message,
	}
}

// SearchError represents a failure of one source during a search run.
// It is the catch-all wrapper the orchestrator records in result metadata.
type SearchError struct {
	Source  string
	Query   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *SearchError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("search error from %s for %q: %s", e.Source, e.Query, e.Message)
	}
	return fmt.Sprintf("search error from %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewSearchError creates a new SearchError
func NewSearchError(source, query string, err error) *SearchError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &SearchError{
		Source:  source,
		Query:   query,
		Message: message,
		Err:     err,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{
		Operation: operation,
		Duration:  duration,
		Message:   message,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsSourceUnavailable checks if an error indicates source unavailability
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsFormatError checks if an error indicates an undecodable response
func IsFormatError(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapNetwork wraps an error as a NetworkError
func WrapNetwork(source, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	return NewNetworkError(source, endpoint, err)
}

// WrapFormat wraps an error as a FormatError
func WrapFormat(source, format string, err error) error {
	if err == nil {
		return nil
	}
	return NewFormatError(source, format, err.Error(), err)
}

// WrapSearch wraps an error as a SearchError, preserving an existing
// SearchError unchanged so the classification closest to the failure wins.
func WrapSearch(source, query string, err error) error {
	if err == nil {
		return nil
	}
	var se *SearchError
	if errors.As(err, &se) {
		return err
	}
	return NewSearchError(source, query, err)
}

// WrapAPI wraps an error as an APIError
func WrapAPI(source string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Source:     source,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}
