package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited is returned when the model endpoint answers 429
	ErrRateLimited = errors.New("model endpoint rate limited")

	// ErrPaymentRequired is returned when the model endpoint answers 402
	ErrPaymentRequired = errors.New("model endpoint requires payment")

	// ErrUpstream is returned for any other non-success transport result
	ErrUpstream = errors.New("model endpoint error")

	// ErrTimeout is returned when the call exceeds its deadline
	ErrTimeout = errors.New("model call timed out")

	// ErrEmptyResponse is returned when a 2xx answer carries no content
	ErrEmptyResponse = errors.New("model returned no content")

	// ErrNotConfigured is returned when the provider has no API key
	ErrNotConfigured = errors.New("model provider is not configured")
)

// statusError maps a non-success HTTP status to one of the sentinel errors.
func statusError(status int, detail string) error {
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, detail)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s", ErrPaymentRequired, detail)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, status, detail)
	}
}

// transportError maps a failed round trip, preferring the context's own error.
func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
