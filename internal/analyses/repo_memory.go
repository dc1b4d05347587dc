package analyses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used in dev mode and tests.
type MemoryRepo struct {
	mu       sync.Mutex
	analyses map[string]Analysis
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{analyses: make(map[string]Analysis)}
}

func (r *MemoryRepo) Create(_ context.Context, a Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[a.ID] = a
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, userID, id string) (Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok || a.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) ListByUser(_ context.Context, userID string, limit, offset int, questionType string) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var all []Analysis
	for _, a := range r.analyses {
		if a.UserID != userID {
			continue
		}
		if questionType != "" && a.QuestionType != questionType {
			continue
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryRepo) UpdateEnrichment(_ context.Context, id string, similar, materials []map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return ErrNotFound
	}
	a.SimilarQuestions = similar
	a.PracticeMaterials = materials
	a.UpdatedAt = time.Now().UTC()
	r.analyses[id] = a
	return nil
}

func (r *MemoryRepo) Rate(_ context.Context, userID, id string, rating float64, feedback string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok || a.UserID != userID {
		return false, nil
	}
	a.UserRating = &rating
	if feedback != "" {
		a.UserFeedback = &feedback
	}
	a.UpdatedAt = time.Now().UTC()
	r.analyses[id] = a
	return true, nil
}

func (r *MemoryRepo) Stats(_ context.Context, userID string) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{ByType: make(map[string]int64)}
	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	var confidenceSum, ratingSum float64
	for _, a := range r.analyses {
		if a.UserID != userID {
			continue
		}
		stats.TotalAnalyses++
		stats.ByType[a.QuestionType]++
		confidenceSum += a.ConfidenceScore
		if a.UserRating != nil {
			stats.RatedCount++
			ratingSum += *a.UserRating
		}
		if a.CreatedAt.After(weekAgo) {
			stats.Last7Days++
		}
	}
	if stats.TotalAnalyses > 0 {
		stats.AverageConfidence = confidenceSum / float64(stats.TotalAnalyses)
	}
	if stats.RatedCount > 0 {
		avg := ratingSum / float64(stats.RatedCount)
		stats.AverageRating = &avg
	}
	return stats, nil
}

func (r *MemoryRepo) FindSimilar(_ context.Context, userID, excludeID, questionType string, minConfidence float64, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 3
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var all []Analysis
	for _, a := range r.analyses {
		if a.UserID != userID || a.ID == excludeID {
			continue
		}
		if a.QuestionType != questionType || a.ConfidenceScore < minConfidence {
			continue
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

var _ Repo = (*MemoryRepo)(nil)
