package llm

import (
	"context"
)

// QuestionInput captures the inputs for a legal-question analysis.
type QuestionInput struct {
	QuestionText string
	Context      string
	TypeHint     string
}

// LegalConcept is one identified legal concept.
type LegalConcept struct {
	Concept     string `json:"concept"`
	Description string `json:"description"`
	Importance  string `json:"importance"`
}

// AnalysisResult is the structured output contract of the reasoning service.
type AnalysisResult struct {
	QuestionType     string           `json:"question_type"`
	DifficultyLevel  string           `json:"difficulty_level"`
	RelevantLaws     []map[string]any `json:"relevant_laws"`
	LegalConcepts    []LegalConcept   `json:"legal_concepts"`
	KeyPoints        []string         `json:"key_points"`
	AnswerApproach   string           `json:"answer_approach"`
	StudySuggestions string           `json:"study_suggestions"`
	ConfidenceScore  float64          `json:"confidence_score"`
}

// Metadata describes one reasoning-service call.
type Metadata struct {
	ModelUsed        string  `json:"model_used"`
	ProcessingTimeMS float64 `json:"processing_time_ms"`
	Success          bool    `json:"success"`
	Error            string  `json:"error,omitempty"`
}

// Client abstracts the external reasoning service.
type Client interface {
	AnalyzeQuestion(ctx context.Context, input QuestionInput) (AnalysisResult, Metadata, error)
}
