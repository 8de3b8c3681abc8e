package errors

import (
	stdErrors "errors"
	"fmt"
	"time"
)

// RateLimitError represents a rate limit response from any API.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// NewRateLimitError creates a RateLimitError with the given message.
func NewRateLimitError(message string) *RateLimitError {
	return &RateLimitError{Message: message}
}

// NewRateLimitErrorWithRetry creates a RateLimitError carrying the server's
// Retry-After hint.
func NewRateLimitErrorWithRetry(message string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{Message: message, RetryAfter: retryAfter}
}

// IsRateLimitError reports whether err is a RateLimitError (even when wrapped).
func IsRateLimitError(err error) bool {
	var rateLimitErr *RateLimitError
	return stdErrors.As(err, &rateLimitErr)
}
