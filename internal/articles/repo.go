package articles

import "context"

// Repo stores legal articles and serves keyword lookups for enrichment.
type Repo interface {
	Create(ctx context.Context, article LegalArticle) error
	// SearchByKeywords returns articles whose name or content matches any
	// of the given keywords, capped at limit.
	SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]LegalArticle, error)
}
