package baseapi

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure scenarios
var (
	// ErrRateLimited is returned (as a cause) when a response status matches
	// the configured rate limit status code
	ErrRateLimited = errors.New("baseapi: rate limited")

	// ErrRateLimitExceeded is returned (as a cause) when the client-side
	// token bucket refuses a call before any request is sent
	ErrRateLimitExceeded = errors.New("baseapi: client-side rate limit exceeded")

	// ErrAuthFailed is returned (as a cause) on a 401 response
	ErrAuthFailed = errors.New("baseapi: authentication failed")

	// ErrUnhandledStatus is returned (as a cause) for a status code outside
	// the classification table
	ErrUnhandledStatus = errors.New("baseapi: unhandled status code")

	// ErrEmptyResponse is returned when a 2xx response arrives with an empty
	// body, which the protocol treats as a contract violation
	ErrEmptyResponse = errors.New("baseapi: empty response body")

	// ErrCircuitOpen is returned when the circuit breaker is in open state
	ErrCircuitOpen = errors.New("baseapi: circuit open")
)

// ErrorType classifies a ClientError.
type ErrorType string

const (
	// ErrorTypeRateLimit marks responses matching the configured rate limit
	// status code, and client-side token bucket refusals.
	ErrorTypeRateLimit ErrorType = "RateLimit"
	// ErrorTypeAuth marks 401 responses carrying a server-supplied message.
	ErrorTypeAuth ErrorType = "Auth"
	// ErrorTypeUnhandled marks any other non-2xx status; treated as an
	// integration error rather than a recoverable condition.
	ErrorTypeUnhandled ErrorType = "Unhandled"
	// ErrorTypeCircuitOpen marks calls refused by an open circuit breaker.
	ErrorTypeCircuitOpen ErrorType = "CircuitOpen"
	// ErrorTypeValidation marks configuration problems detected at
	// construction and surfaced on first use.
	ErrorTypeValidation ErrorType = "Validation"
)

// ClientError is the structured error for classified failures. Malformed
// responses (empty 2xx body, undecodable JSON) are deliberately not part of
// this taxonomy and propagate as plain wrapped errors.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int    // status that produced the error, 0 when none
	URL        string // request URL, empty when not applicable
	Method     string
	RequestID  string // populated when debug request IDs are enabled
	Timestamp  time.Time
	Cause      error
}

// Error implements error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *ClientError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Type: %s\n", e.Type)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}

// IsRateLimit reports whether err is a rate limit failure, server-signaled or
// client-side.
func IsRateLimit(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrRateLimitExceeded) {
		return true
	}
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrorTypeRateLimit
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	if errors.Is(err, ErrAuthFailed) {
		return true
	}
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrorTypeAuth
}

// IsUnhandled reports whether err is an unclassified non-2xx status.
func IsUnhandled(err error) bool {
	if errors.Is(err, ErrUnhandledStatus) {
		return true
	}
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrorTypeUnhandled
}

// IsTransient determines if an error represents a failure that might succeed
// on a later attempt. The client never retries on its own; this is advisory
// for callers that do. Returns true for rate limiting, open circuits, and 5xx
// statuses surfaced as unhandled errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrRateLimited) || errors.Is(err, ErrRateLimitExceeded) {
		return true
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case ErrorTypeRateLimit, ErrorTypeCircuitOpen:
			return true
		case ErrorTypeUnhandled:
			return clientErr.StatusCode >= 500
		default:
			return false
		}
	}

	return false
}
