package resumes

import "errors"

var (
	// ErrNotFound covers both a missing document and one owned by someone else.
	ErrNotFound        = errors.New("resume not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownTemplate = errors.New("unknown template")
)
