package documents

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lawexam-backend/internal/filestore"
	"lawexam-backend/internal/ocr"
	"lawexam-backend/internal/shared/telemetry"
)

// Extractor turns a stored file into text. Satisfied by ocr.Extractor.
type Extractor interface {
	Extract(ctx context.Context, path string) (ocr.Result, error)
}

// Service drives the upload -> extract -> persist pipeline.
type Service struct {
	repo      Repo
	store     *filestore.Store
	extractor Extractor
}

func NewService(repo Repo, store *filestore.Store, extractor Extractor) *Service {
	return &Service{repo: repo, store: store, extractor: extractor}
}

// Upload validates and stores the file, records the document, and optionally
// runs extraction inline.
func (s *Service) Upload(ctx context.Context, userID, filename string, size int64, body io.Reader, processImmediately bool) (Document, error) {
	if strings.TrimSpace(filename) == "" {
		return Document{}, fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}
	if !s.store.IsAllowed(filename) {
		return Document{}, filestore.ErrTypeNotAllowed
	}
	if !s.store.CheckSize(size) {
		return Document{}, fmt.Errorf("%w: %d bytes", filestore.ErrFileTooLarge, size)
	}

	storedName, _, err := s.store.Save(body, filename)
	if err != nil {
		return Document{}, err
	}

	now := time.Now().UTC()
	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userID,
		OriginalFilename: filename,
		StoredFilename:   storedName,
		MimeType:         mimeTypeFor(filename),
		FileSize:         size,
		ProcessingStatus: StatusUploaded,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		s.store.Delete(storedName)
		return Document{}, fmt.Errorf("create document record: %w", err)
	}

	telemetry.L().Info().
		Str("document_id", doc.ID).
		Str("user_id", userID).
		Int64("file_size", size).
		Msg("document uploaded")

	if processImmediately {
		return s.Process(ctx, userID, doc.ID)
	}

	if err := s.repo.MarkPending(ctx, doc.ID); err != nil {
		telemetry.L().Warn().Err(err).Str("document_id", doc.ID).Msg("mark pending failed")
		return doc, nil
	}
	doc.ProcessingStatus = StatusPending
	return doc, nil
}

// Process runs text extraction for a document. Completed documents are
// returned as-is, and a document already being processed is not re-claimed.
func (s *Service) Process(ctx context.Context, userID, id string) (Document, error) {
	doc, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	switch doc.ProcessingStatus {
	case StatusCompleted, StatusProcessing:
		return doc, nil
	}

	startedAt := time.Now().UTC()
	claimed, err := s.repo.ClaimForProcessing(ctx, userID, id, startedAt)
	if err != nil {
		return Document{}, fmt.Errorf("claim document: %w", err)
	}
	if !claimed {
		// Another caller won the claim; report the current state.
		return s.repo.GetByID(ctx, userID, id)
	}

	path, ok := s.store.Path(doc.StoredFilename)
	if !ok {
		return s.failed(ctx, userID, id, "stored file is missing")
	}

	result, err := s.extractor.Extract(ctx, path)
	if err != nil {
		telemetry.L().Error().Err(err).Str("document_id", id).Msg("extraction failed")
		if _, ferr := s.failed(ctx, userID, id, err.Error()); ferr != nil {
			return Document{}, ferr
		}
		return Document{}, fmt.Errorf("%w: %v", ErrProcessing, err)
	}
	if !result.Meta.Success {
		msg := result.Meta.Error
		if msg == "" {
			msg = "no text could be extracted"
		}
		return s.failed(ctx, userID, id, msg)
	}

	completedAt := time.Now().UTC()
	if err := s.repo.MarkCompleted(ctx, id, result.Text, result.Meta.TotalPages, result.Meta, completedAt); err != nil {
		return Document{}, fmt.Errorf("mark completed: %w", err)
	}

	telemetry.L().Info().
		Str("document_id", id).
		Int("pages", result.Meta.TotalPages).
		Dur("duration", completedAt.Sub(startedAt)).
		Msg("document processed")

	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) failed(ctx context.Context, userID, id, msg string) (Document, error) {
	if err := s.repo.MarkFailed(ctx, id, msg, time.Now().UTC()); err != nil {
		return Document{}, fmt.Errorf("mark failed: %w", err)
	}
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) Get(ctx context.Context, userID, id string) (Document, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int, status string) ([]Document, error) {
	if status != "" && !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.repo.ListByUser(ctx, userID, limit, offset, status)
}

// Content returns the extracted text. Only completed documents have content.
func (s *Service) Content(ctx context.Context, userID, id string) (Document, error) {
	doc, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	if doc.ProcessingStatus != StatusCompleted {
		return Document{}, fmt.Errorf("%w: status is %s", ErrNotReady, doc.ProcessingStatus)
	}
	return doc, nil
}

// Delete removes the record and the stored file. File removal is best-effort.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	doc, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	existed, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !existed {
		return ErrNotFound
	}
	if !s.store.Delete(doc.StoredFilename) {
		telemetry.L().Warn().Str("document_id", id).Str("stored_filename", doc.StoredFilename).Msg("stored file already missing")
	}
	return nil
}

func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	return s.repo.Stats(ctx, userID)
}

func mimeTypeFor(filename string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); t != "" {
		return t
	}
	return "application/octet-stream"
}
