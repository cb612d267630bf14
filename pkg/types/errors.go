package types

import "errors"

// Domain errors for type validation
var (
	ErrInvalidProjectID = errors.New("invalid project ID")
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrInvalidScore     = errors.New("score must be between 0 and 100")
	ErrEmptyCategory    = errors.New("tag category cannot be empty")
	ErrEmptyTagValue    = errors.New("tag value cannot be empty")
)
