package errors

import stdErrors "errors"

// StopProcessingError represents a user-driven stop signal, raised when the
// interactive shelf picker is quit instead of completing a selection.
type StopProcessingError struct {
	Reason string
}

func (e *StopProcessingError) Error() string {
	return e.Reason
}

// NewStopProcessingError creates a StopProcessingError with the provided reason.
func NewStopProcessingError(reason string) *StopProcessingError {
	return &StopProcessingError{Reason: reason}
}

// IsStopProcessingError reports whether err is a StopProcessingError (even when wrapped).
func IsStopProcessingError(err error) bool {
	var stopErr *StopProcessingError
	return stdErrors.As(err, &stopErr)
}
