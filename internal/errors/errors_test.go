package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("slow down")

	if err.Error() != "slow down" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "slow down")
	}

	if !IsRateLimitError(err) {
		t.Fatalf("IsRateLimitError returned false for RateLimitError")
	}

	wrapped := fmt.Errorf("search: %w", err)
	if !IsRateLimitError(wrapped) {
		t.Fatalf("IsRateLimitError returned false for wrapped RateLimitError")
	}
}

func TestRateLimitErrorWithRetry(t *testing.T) {
	err := NewRateLimitErrorWithRetry("too many requests", 2*time.Minute)

	expected := "too many requests (retry after 2m0s)"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	if !IsRateLimitError(err) {
		t.Fatalf("IsRateLimitError returned false for RateLimitErrorWithRetry")
	}
}

func TestRateLimitErrorWithRetry_ZeroDuration(t *testing.T) {
	err := NewRateLimitErrorWithRetry("rate limited", 0)

	if err.Error() != "rate limited" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "rate limited")
	}
}

func TestMutationError(t *testing.T) {
	cause := stdErrors.New("status 500")
	err := NewMutationError("tag", "9798688", cause)

	expected := "tag failed for title 9798688: status 500"
	if err.Error() != expected {
		t.Fatalf("Error message = %q, want %q", err.Error(), expected)
	}

	if !IsMutationError(err) {
		t.Fatalf("IsMutationError returned false for MutationError")
	}

	if !stdErrors.Is(err, cause) {
		t.Fatalf("MutationError should unwrap to its cause")
	}

	wrapped := fmt.Errorf("sync: %w", err)
	if !IsMutationError(wrapped) {
		t.Fatalf("IsMutationError returned false for wrapped MutationError")
	}
}

func TestStopProcessingError(t *testing.T) {
	err := NewStopProcessingError("user stopped")

	if err.Error() != "user stopped" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "user stopped")
	}

	if !IsStopProcessingError(err) {
		t.Fatalf("IsStopProcessingError returned false for StopProcessingError")
	}

	wrapped := stdErrors.Join(err)
	if !IsStopProcessingError(wrapped) {
		t.Fatalf("IsStopProcessingError returned false for wrapped StopProcessingError")
	}
}

func TestIsMutationErrorRejectsOtherErrors(t *testing.T) {
	if IsMutationError(stdErrors.New("plain")) {
		t.Fatalf("IsMutationError returned true for a plain error")
	}
	if IsRateLimitError(NewStopProcessingError("nope")) {
		t.Fatalf("IsRateLimitError returned true for a StopProcessingError")
	}
}
