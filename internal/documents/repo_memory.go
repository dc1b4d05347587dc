package documents

import (
	"context"
	"sort"
	"sync"
	"time"

	"lawexam-backend/internal/ocr"
)

// MemoryRepo is an in-memory Repo used in dev mode and tests.
type MemoryRepo struct {
	mu   sync.Mutex
	docs map[string]Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[string]Document)}
}

func (r *MemoryRepo) Create(_ context.Context, doc Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, userID, id string) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) ListByUser(_ context.Context, userID string, limit, offset int, status string) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var all []Document
	for _, doc := range r.docs {
		if doc.UserID != userID {
			continue
		}
		if status != "" && doc.ProcessingStatus != status {
			continue
		}
		all = append(all, doc)
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

func (r *MemoryRepo) Delete(_ context.Context, userID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.UserID != userID {
		return false, nil
	}
	delete(r.docs, id)
	return true, nil
}

func (r *MemoryRepo) MarkPending(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.ProcessingStatus = StatusPending
	doc.UpdatedAt = time.Now().UTC()
	r.docs[id] = doc
	return nil
}

func (r *MemoryRepo) ClaimForProcessing(_ context.Context, userID, id string, startedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || doc.UserID != userID {
		return false, nil
	}
	switch doc.ProcessingStatus {
	case StatusUploaded, StatusPending, StatusFailed:
	default:
		return false, nil
	}
	doc.ProcessingStatus = StatusProcessing
	doc.ProcessingStartedAt = &startedAt
	doc.ErrorMessage = nil
	doc.UpdatedAt = startedAt
	r.docs[id] = doc
	return true, nil
}

func (r *MemoryRepo) MarkCompleted(_ context.Context, id, text string, pageCount int, meta ocr.Metadata, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.ProcessingStatus = StatusCompleted
	doc.ExtractedText = &text
	doc.PageCount = &pageCount
	doc.OCRMeta = &meta
	doc.ErrorMessage = nil
	doc.ProcessingCompletedAt = &completedAt
	doc.UpdatedAt = completedAt
	r.docs[id] = doc
	return nil
}

func (r *MemoryRepo) MarkFailed(_ context.Context, id, errMsg string, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return ErrNotFound
	}
	doc.ProcessingStatus = StatusFailed
	doc.ErrorMessage = &errMsg
	doc.ProcessingCompletedAt = &completedAt
	doc.UpdatedAt = completedAt
	r.docs[id] = doc
	return nil
}

func (r *MemoryRepo) Stats(_ context.Context, userID string) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{ByStatus: make(map[string]int64)}
	for _, doc := range r.docs {
		if doc.UserID != userID {
			continue
		}
		stats.TotalDocuments++
		stats.ByStatus[doc.ProcessingStatus]++
		stats.TotalBytes += doc.FileSize
	}
	return stats, nil
}

var _ Repo = (*MemoryRepo)(nil)
