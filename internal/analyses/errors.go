package analyses

import "errors"

var (
	// ErrNotFound means the analysis does not exist or is not owned by the caller.
	ErrNotFound = errors.New("analysis not found")
	// ErrInvalidInput covers validation failures on requests.
	ErrInvalidInput = errors.New("invalid input")
)
