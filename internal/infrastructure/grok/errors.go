package grok

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates the call exceeded the configured request timeout.
	ErrTimeout = errors.New("grok: request timed out")
	// ErrRateLimited indicates the upstream returned 429.
	ErrRateLimited = errors.New("grok: rate limited")
	// ErrMalformedResponse indicates the upstream answered but the payload
	// could not be parsed, even after the JSON recovery ladder.
	ErrMalformedResponse = errors.New("grok: malformed response")
)

// APIError captures a non-2xx upstream response other than 429.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("grok: upstream status %d: %s", e.StatusCode, e.Body)
}
