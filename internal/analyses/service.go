package analyses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lawexam-backend/internal/articles"
	"lawexam-backend/internal/llm"
	"lawexam-backend/internal/shared/telemetry"
)

// Input is a question analysis request.
type Input struct {
	QuestionText string
	Context      string
	TypeHint     string
	DocumentID   *string
}

// Service runs question analyses, falling back to the rule-based classifier
// when no AI client is configured or the AI call fails.
type Service struct {
	repo     Repo
	articles articles.Repo
	client   llm.Client
}

// NewService creates the analysis service. client may be nil; every request
// then uses the fallback classifier.
func NewService(repo Repo, articlesRepo articles.Repo, client llm.Client) *Service {
	return &Service{repo: repo, articles: articlesRepo, client: client}
}

// Analyze classifies and analyzes a legal exam question, persists the result
// and enriches it with similar questions and practice materials.
func (s *Service) Analyze(ctx context.Context, userID string, in Input) (Analysis, error) {
	text := strings.TrimSpace(in.QuestionText)
	if text == "" {
		return Analysis{}, fmt.Errorf("%w: question text is required", ErrInvalidInput)
	}

	started := time.Now()
	result, modelUsed := s.runAnalysis(ctx, text, in)

	now := time.Now().UTC()
	analysis := Analysis{
		ID:                 uuid.NewString(),
		UserID:             userID,
		DocumentID:         in.DocumentID,
		QuestionText:       text,
		QuestionType:       result.QuestionType,
		QuestionDifficulty: result.DifficultyLevel,
		AnalysisResult:     buildResultPayload(result, modelUsed),
		RelevantLaws:       result.RelevantLaws,
		LegalConcepts:      conceptsToMaps(result.LegalConcepts),
		KeyPoints:          result.KeyPoints,
		ConfidenceScore:    result.ConfidenceScore,
		StudySuggestions:   result.StudySuggestions,
		AIModelUsed:        modelUsed,
		ProcessingTimeMS:   time.Since(started).Milliseconds(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, analysis); err != nil {
		return Analysis{}, fmt.Errorf("persist analysis: %w", err)
	}

	// Enrichment is best-effort: a failure never loses the analysis itself.
	if err := s.enrich(ctx, &analysis); err != nil {
		telemetry.L().Warn().Err(err).Str("analysis_id", analysis.ID).Msg("enrichment failed")
	}

	telemetry.L().Info().
		Str("analysis_id", analysis.ID).
		Str("user_id", userID).
		Str("question_type", analysis.QuestionType).
		Str("model", modelUsed).
		Float64("confidence", analysis.ConfidenceScore).
		Msg("question analyzed")

	return analysis, nil
}

// runAnalysis tries the AI client and falls back to the rule-based classifier.
func (s *Service) runAnalysis(ctx context.Context, text string, in Input) (llm.AnalysisResult, string) {
	if s.client == nil {
		return fallbackResult(text), fallbackModelName
	}

	result, meta, err := s.client.AnalyzeQuestion(ctx, llm.QuestionInput{
		QuestionText: text,
		Context:      in.Context,
		TypeHint:     in.TypeHint,
	})
	if err != nil {
		telemetry.L().Warn().Err(err).Msg("ai analysis failed, using fallback classifier")
		return fallbackResult(text), fallbackModelName
	}
	return result, meta.ModelUsed
}

func buildResultPayload(result llm.AnalysisResult, modelUsed string) map[string]any {
	if modelUsed == fallbackModelName {
		return map[string]any{
			"method": "fallback",
			"note":   "AI服務暫時不可用，使用基礎分類",
		}
	}
	return map[string]any{
		"answer_approach": result.AnswerApproach,
		"key_points":      result.KeyPoints,
		"metadata":        map[string]any{"model": modelUsed},
	}
}

func conceptsToMaps(concepts []llm.LegalConcept) []map[string]any {
	if len(concepts) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, map[string]any{
			"concept":     c.Concept,
			"description": c.Description,
			"importance":  c.Importance,
		})
	}
	return out
}

func (s *Service) Get(ctx context.Context, userID, id string) (Analysis, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int, questionType string) ([]Analysis, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset, questionType)
}

// Rate records a 1-5 user rating with optional feedback.
func (s *Service) Rate(ctx context.Context, userID, id string, rating float64, feedback string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	ok, err := s.repo.Rate(ctx, userID, id, rating, feedback)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	return s.repo.Stats(ctx, userID)
}
