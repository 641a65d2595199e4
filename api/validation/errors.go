package validation

import "errors"

var (
	ErrInvalidTaskType = errors.New("invalid task type")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidBody     = errors.New("invalid request body")
)
