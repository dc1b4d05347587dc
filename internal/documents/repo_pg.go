package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lawexam-backend/internal/ocr"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const docColumns = `id, user_id, original_filename, stored_filename, mime_type, file_size,
processing_status, extracted_text, page_count, ocr_metadata, error_message,
processing_started_at, processing_completed_at, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, user_id, original_filename, stored_filename, mime_type, file_size, processing_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`
	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.OriginalFilename,
		doc.StoredFilename,
		doc.MimeType,
		doc.FileSize,
		doc.ProcessingStatus,
		doc.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1 AND user_id = $2 LIMIT 1`, docColumns)
	doc, err := scanDoc(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int, status string) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM documents WHERE user_id = $1`, docColumns)
	args := []any{userID}
	if status != "" {
		query += fmt.Sprintf(" AND processing_status = $%d", len(args)+1)
		args = append(args, status)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PGRepo) MarkPending(ctx context.Context, id string) error {
	const query = `UPDATE documents SET processing_status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.DB.ExecContext(ctx, query, StatusPending, time.Now().UTC(), id)
	return err
}

func (r *PGRepo) ClaimForProcessing(ctx context.Context, userID, id string, startedAt time.Time) (bool, error) {
	const query = `
UPDATE documents
SET processing_status = $1, processing_started_at = $2, error_message = NULL, updated_at = $2
WHERE id = $3 AND user_id = $4 AND processing_status IN ($5, $6, $7)`
	res, err := r.DB.ExecContext(ctx, query, StatusProcessing, startedAt, id, userID, StatusUploaded, StatusPending, StatusFailed)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PGRepo) MarkCompleted(ctx context.Context, id, text string, pageCount int, meta ocr.Metadata, completedAt time.Time) error {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal ocr metadata: %w", err)
	}
	const query = `
UPDATE documents
SET processing_status = $1, extracted_text = $2, page_count = $3, ocr_metadata = $4,
    error_message = NULL, processing_completed_at = $5, updated_at = $5
WHERE id = $6`
	_, err = r.DB.ExecContext(ctx, query, StatusCompleted, text, pageCount, metaJSON, completedAt, id)
	return err
}

func (r *PGRepo) MarkFailed(ctx context.Context, id, errMsg string, completedAt time.Time) error {
	const query = `
UPDATE documents
SET processing_status = $1, error_message = $2, processing_completed_at = $3, updated_at = $3
WHERE id = $4`
	_, err := r.DB.ExecContext(ctx, query, StatusFailed, errMsg, completedAt, id)
	return err
}

func (r *PGRepo) Stats(ctx context.Context, userID string) (Stats, error) {
	stats := Stats{ByStatus: make(map[string]int64)}

	rows, err := r.DB.QueryContext(ctx, `
SELECT processing_status, COUNT(*), COALESCE(SUM(file_size), 0)
FROM documents
WHERE user_id = $1
GROUP BY processing_status`, userID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count, bytes int64
		if err := rows.Scan(&status, &count, &bytes); err != nil {
			return Stats{}, err
		}
		stats.ByStatus[status] = count
		stats.TotalDocuments += count
		stats.TotalBytes += bytes
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoc(row rowScanner) (Document, error) {
	var doc Document
	var text, errMsg sql.NullString
	var pageCount sql.NullInt64
	var metaJSON []byte
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.OriginalFilename,
		&doc.StoredFilename,
		&doc.MimeType,
		&doc.FileSize,
		&doc.ProcessingStatus,
		&text,
		&pageCount,
		&metaJSON,
		&errMsg,
		&startedAt,
		&completedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if text.Valid {
		doc.ExtractedText = &text.String
	}
	if pageCount.Valid {
		n := int(pageCount.Int64)
		doc.PageCount = &n
	}
	if len(metaJSON) > 0 {
		var meta ocr.Metadata
		if err := json.Unmarshal(metaJSON, &meta); err == nil {
			doc.OCRMeta = &meta
		}
	}
	if errMsg.Valid {
		doc.ErrorMessage = &errMsg.String
	}
	if startedAt.Valid {
		doc.ProcessingStartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		doc.ProcessingCompletedAt = &completedAt.Time
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
