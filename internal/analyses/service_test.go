package analyses

import (
	"context"
	"errors"
	"testing"
	"time"

	"lawexam-backend/internal/articles"
	"lawexam-backend/internal/llm"
)

type fakeClient struct {
	result llm.AnalysisResult
	err    error
}

func (f *fakeClient) AnalyzeQuestion(_ context.Context, _ llm.QuestionInput) (llm.AnalysisResult, llm.Metadata, error) {
	if f.err != nil {
		return llm.AnalysisResult{}, llm.Metadata{ModelUsed: "gpt-4o-mini", Error: f.err.Error()}, f.err
	}
	return f.result, llm.Metadata{ModelUsed: "gpt-4o-mini", Success: true}, nil
}

const choiceQuestion = "下列何者為契約成立要件？請從選項中挑出正確答案。"

func TestAnalyzeFallbackWhenNoClient(t *testing.T) {
	svc := NewService(NewMemoryRepo(), articles.NewMemoryRepo(), nil)

	a, err := svc.Analyze(context.Background(), "user-1", Input{QuestionText: choiceQuestion})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.QuestionType != TypeMultipleChoice {
		t.Errorf("type = %s, want %s", a.QuestionType, TypeMultipleChoice)
	}
	if a.ConfidenceScore != 0.3 {
		t.Errorf("confidence = %v, want 0.3", a.ConfidenceScore)
	}
	if a.AIModelUsed != "fallback_classifier" {
		t.Errorf("model = %s, want fallback_classifier", a.AIModelUsed)
	}
	if a.AnalysisResult["method"] != "fallback" {
		t.Errorf("analysis_result = %v", a.AnalysisResult)
	}
}

func TestAnalyzeFallbackOnClientError(t *testing.T) {
	client := &fakeClient{err: errors.New("upstream timeout")}
	svc := NewService(NewMemoryRepo(), articles.NewMemoryRepo(), client)

	a, err := svc.Analyze(context.Background(), "user-1", Input{QuestionText: choiceQuestion})
	if err != nil {
		t.Fatalf("analyze should absorb client errors, got: %v", err)
	}
	if a.AIModelUsed != "fallback_classifier" {
		t.Errorf("model = %s, want fallback_classifier", a.AIModelUsed)
	}
}

func TestAnalyzeWithClient(t *testing.T) {
	client := &fakeClient{result: llm.AnalysisResult{
		QuestionType:     TypeEssay,
		DifficultyLevel:  DifficultyAdvanced,
		RelevantLaws:     []map[string]any{{"law_name": "民法", "article_number": "184"}},
		LegalConcepts:    []llm.LegalConcept{{Concept: "侵權行為", Description: "不法侵害他人權利", Importance: "high"}},
		KeyPoints:        []string{"構成要件", "舉證責任"},
		AnswerApproach:   "先析構成要件再論舉證",
		StudySuggestions: "複習民法第184條",
		ConfidenceScore:  0.85,
	}}
	svc := NewService(NewMemoryRepo(), articles.NewMemoryRepo(), client)

	a, err := svc.Analyze(context.Background(), "user-1", Input{QuestionText: "請說明民法上侵權行為的構成要件"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.QuestionType != TypeEssay {
		t.Errorf("type = %s, want %s", a.QuestionType, TypeEssay)
	}
	if a.AIModelUsed != "gpt-4o-mini" {
		t.Errorf("model = %s", a.AIModelUsed)
	}
	if a.ConfidenceScore != 0.85 {
		t.Errorf("confidence = %v", a.ConfidenceScore)
	}
	if len(a.LegalConcepts) != 1 || a.LegalConcepts[0]["concept"] != "侵權行為" {
		t.Errorf("concepts = %v", a.LegalConcepts)
	}
	if a.AnalysisResult["answer_approach"] != "先析構成要件再論舉證" {
		t.Errorf("analysis_result = %v", a.AnalysisResult)
	}
}

func TestAnalyzeEnrichment(t *testing.T) {
	articleRepo := articles.NewMemoryRepo()
	now := time.Now().UTC()
	_ = articleRepo.Create(context.Background(), articles.LegalArticle{
		ID:             "art-1",
		LawName:        "民法",
		ArticleNumber:  "153",
		ArticleContent: "當事人互相表示意思一致者，無論其為明示或默示，契約即為成立。",
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	ctx := context.Background()

	// An earlier high-confidence analysis of the same type becomes a
	// similar-question candidate.
	first := &fakeClient{result: llm.AnalysisResult{
		QuestionType:    TypeMultipleChoice,
		DifficultyLevel: DifficultyBasic,
		ConfidenceScore: 0.9,
	}}
	svcAI := NewService(NewMemoryRepo(), articleRepo, first)
	if _, err := svcAI.Analyze(ctx, "user-1", Input{QuestionText: choiceQuestion}); err != nil {
		t.Fatalf("seed analysis: %v", err)
	}

	a, err := svcAI.Analyze(ctx, "user-1", Input{QuestionText: "下列何者非契約之要素？"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(a.SimilarQuestions) != 1 {
		t.Fatalf("similar = %d, want 1", len(a.SimilarQuestions))
	}
	if a.SimilarQuestions[0]["similarity_score"] != 0.7 {
		t.Errorf("similarity_score = %v", a.SimilarQuestions[0]["similarity_score"])
	}
	if len(a.PracticeMaterials) != 1 {
		t.Fatalf("materials = %d, want 1", len(a.PracticeMaterials))
	}
	if a.PracticeMaterials[0]["law_name"] != "民法" {
		t.Errorf("materials = %v", a.PracticeMaterials)
	}
}

func TestRate(t *testing.T) {
	svc := NewService(NewMemoryRepo(), articles.NewMemoryRepo(), nil)
	ctx := context.Background()

	a, err := svc.Analyze(ctx, "user-1", Input{QuestionText: choiceQuestion})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if err := svc.Rate(ctx, "user-1", a.ID, 5, "很有幫助"); err != nil {
		t.Fatalf("rate: %v", err)
	}
	got, err := svc.Get(ctx, "user-1", a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserRating == nil || *got.UserRating != 5 {
		t.Errorf("rating = %v, want 5", got.UserRating)
	}

	if err := svc.Rate(ctx, "user-1", a.ID, 6, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("out-of-range rating: err = %v, want ErrInvalidInput", err)
	}
	if err := svc.Rate(ctx, "user-2", a.ID, 4, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-tenant rate: err = %v, want ErrNotFound", err)
	}
	if err := svc.Rate(ctx, "user-1", "missing", 4, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: err = %v, want ErrNotFound", err)
	}
}

func TestStatsAggregation(t *testing.T) {
	svc := NewService(NewMemoryRepo(), articles.NewMemoryRepo(), nil)
	ctx := context.Background()

	a1, err := svc.Analyze(ctx, "user-1", Input{QuestionText: choiceQuestion})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if _, err := svc.Analyze(ctx, "user-1", Input{QuestionText: "請說明侵權行為的構成要件"}); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if err := svc.Rate(ctx, "user-1", a1.ID, 4, ""); err != nil {
		t.Fatalf("rate: %v", err)
	}

	stats, err := svc.Stats(ctx, "user-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalAnalyses != 2 {
		t.Errorf("total = %d, want 2", stats.TotalAnalyses)
	}
	if stats.ByType[TypeMultipleChoice] != 1 || stats.ByType[TypeEssay] != 1 {
		t.Errorf("by_type = %v", stats.ByType)
	}
	if stats.RatedCount != 1 || stats.AverageRating == nil || *stats.AverageRating != 4 {
		t.Errorf("rating stats = %d %v", stats.RatedCount, stats.AverageRating)
	}
	if stats.Last7Days != 2 {
		t.Errorf("last_7_days = %d, want 2", stats.Last7Days)
	}
}
