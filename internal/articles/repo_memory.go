package articles

import (
	"context"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory Repo used in dev mode and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	articles []LegalArticle
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Create(_ context.Context, article LegalArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles = append(r.articles, article)
	return nil
}

func (r *MemoryRepo) SearchByKeywords(_ context.Context, keywords []string, limit int) ([]LegalArticle, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []LegalArticle
	for _, article := range r.articles {
		if len(out) >= limit {
			break
		}
		for _, kw := range keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			if strings.Contains(article.LawName, kw) || strings.Contains(article.ArticleContent, kw) {
				out = append(out, article)
				break
			}
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
