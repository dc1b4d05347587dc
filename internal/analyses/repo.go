package analyses

import "context"

// Repo persists question analyses, scoped to the owning user.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, userID, id string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int, questionType string) ([]Analysis, error)

	// UpdateEnrichment stores the similar-question and practice-material
	// recommendations computed after the analysis is committed.
	UpdateEnrichment(ctx context.Context, id string, similar, materials []map[string]any) error
	// Rate records a user rating and reports whether the analysis existed.
	Rate(ctx context.Context, userID, id string, rating float64, feedback string) (bool, error)

	Stats(ctx context.Context, userID string) (Stats, error)
	// FindSimilar returns other analyses of the same question type with at
	// least minConfidence, excluding excludeID, newest first.
	FindSimilar(ctx context.Context, userID, excludeID, questionType string, minConfidence float64, limit int) ([]Analysis, error)
}
