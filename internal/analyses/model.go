package analyses

import "time"

// Question types recognized by the classifier and the AI analysis.
const (
	TypeMultipleChoice = "選擇題"
	TypeEssay          = "申論題"
	TypeCaseStudy      = "案例分析"
	TypeShortAnswer    = "問答題"
	TypeUnclassified   = "未分類"
)

// Difficulty levels.
const (
	DifficultyBasic        = "初級"
	DifficultyIntermediate = "中級"
	DifficultyAdvanced     = "高級"
)

// Analysis is a stored question analysis, either AI-produced or from the
// fallback classifier.
type Analysis struct {
	ID         string
	UserID     string
	DocumentID *string

	QuestionText       string
	QuestionType       string
	QuestionDifficulty string

	AnalysisResult    map[string]any
	RelevantLaws      []map[string]any
	LegalConcepts     []map[string]any
	KeyPoints         []string
	SimilarQuestions  []map[string]any
	PracticeMaterials []map[string]any

	ConfidenceScore  float64
	StudySuggestions string
	AIModelUsed      string
	ProcessingTimeMS int64

	UserRating   *float64
	UserFeedback *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats summarizes a user's analyses for the stats endpoint.
type Stats struct {
	TotalAnalyses     int64            `json:"total_analyses"`
	ByType            map[string]int64 `json:"by_type"`
	AverageConfidence float64          `json:"average_confidence"`
	AverageRating     *float64         `json:"average_rating,omitempty"`
	RatedCount        int64            `json:"rated_count"`
	Last7Days         int64            `json:"last_7_days"`
}
