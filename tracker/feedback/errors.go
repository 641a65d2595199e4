package feedback

import (
	"errors"
	"fmt"
)

var (
	ErrTaskIDRequired   = errors.New("task id is required")
	ErrRatingRequired   = errors.New("rating is required")
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	ErrFeedbackTooLong  = errors.New("feedback text exceeds 2000 characters")
)

// ValidationError marks input rejected before any backend call.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid feedback: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
