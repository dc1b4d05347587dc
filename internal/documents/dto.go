package documents

import (
	"time"

	"lawexam-backend/internal/ocr"
)

type documentResponse struct {
	ID                    string     `json:"id"`
	OriginalFilename      string     `json:"original_filename"`
	MimeType              string     `json:"mime_type"`
	FileSize              int64      `json:"file_size"`
	ProcessingStatus      string     `json:"processing_status"`
	PageCount             *int       `json:"page_count,omitempty"`
	ErrorMessage          *string    `json:"error_message,omitempty"`
	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type contentResponse struct {
	ID            string        `json:"id"`
	ExtractedText string        `json:"extracted_text"`
	PageCount     *int          `json:"page_count,omitempty"`
	OCRMetadata   *ocr.Metadata `json:"ocr_metadata,omitempty"`
}

type listResponse struct {
	Documents []documentResponse `json:"documents"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

func toDocumentResponse(doc Document) documentResponse {
	return documentResponse{
		ID:                    doc.ID,
		OriginalFilename:      doc.OriginalFilename,
		MimeType:              doc.MimeType,
		FileSize:              doc.FileSize,
		ProcessingStatus:      doc.ProcessingStatus,
		PageCount:             doc.PageCount,
		ErrorMessage:          doc.ErrorMessage,
		ProcessingStartedAt:   doc.ProcessingStartedAt,
		ProcessingCompletedAt: doc.ProcessingCompletedAt,
		CreatedAt:             doc.CreatedAt,
		UpdatedAt:             doc.UpdatedAt,
	}
}
