package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `id, user_id, document_id, question_text, question_type, question_difficulty,
analysis_result, relevant_laws, legal_concepts, key_points, similar_questions, practice_materials,
confidence_score, study_suggestions, ai_model_used, processing_time_ms,
user_rating, user_feedback, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, a Analysis) error {
	cols, err := marshalJSONCols(a)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO question_analyses (id, user_id, document_id, question_text, question_type, question_difficulty,
analysis_result, relevant_laws, legal_concepts, key_points, similar_questions, practice_materials,
confidence_score, study_suggestions, ai_model_used, processing_time_ms, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)`
	_, err = r.DB.ExecContext(
		ctx,
		query,
		a.ID,
		a.UserID,
		nullStrPtr(a.DocumentID),
		a.QuestionText,
		a.QuestionType,
		a.QuestionDifficulty,
		cols.result,
		cols.laws,
		cols.concepts,
		cols.keyPoints,
		cols.similar,
		cols.materials,
		a.ConfidenceScore,
		a.StudySuggestions,
		a.AIModelUsed,
		a.ProcessingTimeMS,
		a.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Analysis, error) {
	query := fmt.Sprintf(`SELECT %s FROM question_analyses WHERE id = $1 AND user_id = $2 LIMIT 1`, analysisColumns)
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int, questionType string) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM question_analyses WHERE user_id = $1`, analysisColumns)
	args := []any{userID}
	if questionType != "" {
		query += fmt.Sprintf(" AND question_type = $%d", len(args)+1)
		args = append(args, questionType)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	return r.queryMany(ctx, query, args...)
}

func (r *PGRepo) UpdateEnrichment(ctx context.Context, id string, similar, materials []map[string]any) error {
	similarJSON, err := json.Marshal(orEmptySlice(similar))
	if err != nil {
		return fmt.Errorf("marshal similar questions: %w", err)
	}
	materialsJSON, err := json.Marshal(orEmptySlice(materials))
	if err != nil {
		return fmt.Errorf("marshal practice materials: %w", err)
	}

	const query = `
UPDATE question_analyses
SET similar_questions = $1, practice_materials = $2, updated_at = $3
WHERE id = $4`
	_, err = r.DB.ExecContext(ctx, query, similarJSON, materialsJSON, time.Now().UTC(), id)
	return err
}

func (r *PGRepo) Rate(ctx context.Context, userID, id string, rating float64, feedback string) (bool, error) {
	const query = `
UPDATE question_analyses
SET user_rating = $1, user_feedback = $2, updated_at = $3
WHERE id = $4 AND user_id = $5`
	res, err := r.DB.ExecContext(ctx, query, rating, nullString(feedback), time.Now().UTC(), id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PGRepo) Stats(ctx context.Context, userID string) (Stats, error) {
	stats := Stats{ByType: make(map[string]int64)}

	rows, err := r.DB.QueryContext(ctx, `
SELECT question_type, COUNT(*), COALESCE(AVG(confidence_score), 0)
FROM question_analyses
WHERE user_id = $1
GROUP BY question_type`, userID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	var weighted float64
	for rows.Next() {
		var qtype string
		var count int64
		var avg float64
		if err := rows.Scan(&qtype, &count, &avg); err != nil {
			return Stats{}, err
		}
		stats.ByType[qtype] = count
		stats.TotalAnalyses += count
		weighted += avg * float64(count)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}
	if stats.TotalAnalyses > 0 {
		stats.AverageConfidence = weighted / float64(stats.TotalAnalyses)
	}

	var avgRating sql.NullFloat64
	var rated int64
	err = r.DB.QueryRowContext(ctx, `
SELECT AVG(user_rating), COUNT(user_rating)
FROM question_analyses
WHERE user_id = $1 AND user_rating IS NOT NULL`, userID).Scan(&avgRating, &rated)
	if err != nil {
		return Stats{}, err
	}
	stats.RatedCount = rated
	if avgRating.Valid {
		stats.AverageRating = &avgRating.Float64
	}

	err = r.DB.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM question_analyses
WHERE user_id = $1 AND created_at >= $2`, userID, time.Now().UTC().AddDate(0, 0, -7)).Scan(&stats.Last7Days)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (r *PGRepo) FindSimilar(ctx context.Context, userID, excludeID, questionType string, minConfidence float64, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 3
	}
	query := fmt.Sprintf(`
SELECT %s FROM question_analyses
WHERE user_id = $1 AND id <> $2 AND question_type = $3 AND confidence_score >= $4
ORDER BY created_at DESC
LIMIT $5`, analysisColumns)
	return r.queryMany(ctx, query, userID, excludeID, questionType, minConfidence, limit)
}

func (r *PGRepo) queryMany(ctx context.Context, query string, args ...any) ([]Analysis, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type jsonCols struct {
	result, laws, concepts, keyPoints, similar, materials []byte
}

func marshalJSONCols(a Analysis) (jsonCols, error) {
	var cols jsonCols
	var err error
	if cols.result, err = json.Marshal(orEmptyMap(a.AnalysisResult)); err != nil {
		return cols, fmt.Errorf("marshal analysis result: %w", err)
	}
	if cols.laws, err = json.Marshal(orEmptySlice(a.RelevantLaws)); err != nil {
		return cols, fmt.Errorf("marshal relevant laws: %w", err)
	}
	if cols.concepts, err = json.Marshal(orEmptySlice(a.LegalConcepts)); err != nil {
		return cols, fmt.Errorf("marshal legal concepts: %w", err)
	}
	if a.KeyPoints == nil {
		a.KeyPoints = []string{}
	}
	if cols.keyPoints, err = json.Marshal(a.KeyPoints); err != nil {
		return cols, fmt.Errorf("marshal key points: %w", err)
	}
	if cols.similar, err = json.Marshal(orEmptySlice(a.SimilarQuestions)); err != nil {
		return cols, fmt.Errorf("marshal similar questions: %w", err)
	}
	if cols.materials, err = json.Marshal(orEmptySlice(a.PracticeMaterials)); err != nil {
		return cols, fmt.Errorf("marshal practice materials: %w", err)
	}
	return cols, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var a Analysis
	var docID, feedback, suggestions sql.NullString
	var rating sql.NullFloat64
	var result, laws, concepts, keyPoints, similar, materials []byte

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&docID,
		&a.QuestionText,
		&a.QuestionType,
		&a.QuestionDifficulty,
		&result,
		&laws,
		&concepts,
		&keyPoints,
		&similar,
		&materials,
		&a.ConfidenceScore,
		&suggestions,
		&a.AIModelUsed,
		&a.ProcessingTimeMS,
		&rating,
		&feedback,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return Analysis{}, err
	}
	if docID.Valid {
		a.DocumentID = &docID.String
	}
	a.StudySuggestions = suggestions.String
	if rating.Valid {
		a.UserRating = &rating.Float64
	}
	if feedback.Valid {
		a.UserFeedback = &feedback.String
	}
	unmarshalInto(result, &a.AnalysisResult)
	unmarshalInto(laws, &a.RelevantLaws)
	unmarshalInto(concepts, &a.LegalConcepts)
	unmarshalInto(keyPoints, &a.KeyPoints)
	unmarshalInto(similar, &a.SimilarQuestions)
	unmarshalInto(materials, &a.PracticeMaterials)
	return a, nil
}

func unmarshalInto(raw []byte, dst any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func orEmptySlice(s []map[string]any) []map[string]any {
	if s == nil {
		return []map[string]any{}
	}
	return s
}

func nullStrPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
