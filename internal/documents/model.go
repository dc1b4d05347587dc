package documents

import (
	"time"

	"lawexam-backend/internal/ocr"
)

// Processing statuses a document moves through.
const (
	StatusUploaded   = "uploaded"
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ValidStatus reports whether s is a known processing status.
func ValidStatus(s string) bool {
	switch s {
	case StatusUploaded, StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Document is an uploaded exam file and its extraction state.
type Document struct {
	ID               string
	UserID           string
	OriginalFilename string
	StoredFilename   string
	MimeType         string
	FileSize         int64

	ProcessingStatus string
	ExtractedText    *string
	PageCount        *int
	OCRMeta          *ocr.Metadata
	ErrorMessage     *string

	ProcessingStartedAt   *time.Time
	ProcessingCompletedAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Stats summarizes a user's documents for the stats endpoint.
type Stats struct {
	TotalDocuments int64            `json:"total_documents"`
	ByStatus       map[string]int64 `json:"by_status"`
	TotalBytes     int64            `json:"total_bytes"`
}
