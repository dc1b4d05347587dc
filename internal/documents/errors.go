package documents

import "errors"

var (
	// ErrNotFound means the document does not exist or is not owned by the caller.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput covers validation failures on uploads and queries.
	ErrInvalidInput = errors.New("invalid input")
	// ErrProcessing means text extraction failed.
	ErrProcessing = errors.New("document processing failed")
	// ErrNotReady means extracted content was requested before processing completed.
	ErrNotReady = errors.New("document content not ready")
)
