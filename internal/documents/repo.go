package documents

import (
	"context"
	"time"

	"lawexam-backend/internal/ocr"
)

// Repo persists documents. All reads and mutations are scoped to the owning
// user; a document belonging to someone else behaves as if it does not exist.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, id string) (Document, error)
	ListByUser(ctx context.Context, userID string, limit, offset int, status string) ([]Document, error)
	// Delete removes the record and reports whether it existed.
	Delete(ctx context.Context, userID, id string) (bool, error)

	MarkPending(ctx context.Context, id string) error
	// ClaimForProcessing atomically moves a claimable document (uploaded,
	// pending or failed) to processing. It returns false when the document
	// is already being processed or is completed, so concurrent callers
	// resolve to a single winner.
	ClaimForProcessing(ctx context.Context, userID, id string, startedAt time.Time) (bool, error)
	MarkCompleted(ctx context.Context, id, text string, pageCount int, meta ocr.Metadata, completedAt time.Time) error
	MarkFailed(ctx context.Context, id, errMsg string, completedAt time.Time) error

	Stats(ctx context.Context, userID string) (Stats, error)
}
