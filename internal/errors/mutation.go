package errors

import (
	stdErrors "errors"
	"fmt"
)

// MutationError represents a failed tag or untag call against the catalog.
// Mutations are never retried, so a MutationError aborts the run.
type MutationError struct {
	Op      string // "tag" or "untag"
	TitleID string
	Err     error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s failed for title %s: %v", e.Op, e.TitleID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError wraps err as a MutationError for the given operation.
func NewMutationError(op, titleID string, err error) *MutationError {
	return &MutationError{Op: op, TitleID: titleID, Err: err}
}

// IsMutationError reports whether err is a MutationError (even when wrapped).
func IsMutationError(err error) bool {
	var mutationErr *MutationError
	return stdErrors.As(err, &mutationErr)
}
