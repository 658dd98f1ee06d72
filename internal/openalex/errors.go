package openalex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the OpenAlex client.
var (
	// ErrNotFound indicates the work does not exist in OpenAlex.
	ErrNotFound = errors.New("work not found in OpenAlex")

	// ErrRateLimited indicates OpenAlex rejected the request with 429.
	ErrRateLimited = errors.New("OpenAlex rate limit exceeded")

	// ErrNetwork indicates a transport failure, including request timeouts.
	ErrNetwork = errors.New("network error communicating with OpenAlex")

	// ErrInvalidResponse indicates a body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from OpenAlex")
)

// APIError represents a non-success HTTP status from OpenAlex.
type APIError struct {
	StatusCode int
	WorkID     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("OpenAlex API error (status %d) for work %s", e.StatusCode, e.WorkID)
}

// IsNotFound returns true if the error indicates the work was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsTimeout returns true if the request ran past its deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// FailureReason classifies a fetch error into a short label for logs and metrics.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case IsNotFound(err):
		return "not_found"
	case IsRateLimited(err):
		return "rate_limited"
	case IsTimeout(err):
		return "timeout"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	default:
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return "status"
		}
		return "other"
	}
}
