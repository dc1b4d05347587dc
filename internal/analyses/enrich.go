package analyses

import (
	"context"
	"unicode/utf8"
)

const (
	similarMinConfidence = 0.5
	similarLimit         = 3
	articleLimit         = 5
	previewRunes         = 100
)

// enrich attaches similar past questions and statute-based practice materials
// to a freshly persisted analysis, then stores them.
func (s *Service) enrich(ctx context.Context, a *Analysis) error {
	similar, err := s.similarQuestions(ctx, a)
	if err != nil {
		return err
	}
	materials, err := s.practiceMaterials(ctx, a.QuestionText)
	if err != nil {
		return err
	}
	if len(similar) == 0 && len(materials) == 0 {
		return nil
	}
	if err := s.repo.UpdateEnrichment(ctx, a.ID, similar, materials); err != nil {
		return err
	}
	a.SimilarQuestions = similar
	a.PracticeMaterials = materials
	return nil
}

func (s *Service) similarQuestions(ctx context.Context, a *Analysis) ([]map[string]any, error) {
	matches, err := s.repo.FindSimilar(ctx, a.UserID, a.ID, a.QuestionType, similarMinConfidence, similarLimit)
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for _, m := range matches {
		out = append(out, map[string]any{
			"analysis_id":      m.ID,
			"question_text":    truncateRunes(m.QuestionText, previewRunes),
			"question_type":    m.QuestionType,
			"similarity_score": 0.7,
		})
	}
	return out, nil
}

func (s *Service) practiceMaterials(ctx context.Context, questionText string) ([]map[string]any, error) {
	if s.articles == nil {
		return nil, nil
	}
	keywords := extractKeywords(questionText, 3)
	if len(keywords) == 0 {
		return nil, nil
	}
	found, err := s.articles.SearchByKeywords(ctx, keywords, articleLimit)
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for _, art := range found {
		out = append(out, map[string]any{
			"law_name":        art.LawName,
			"article_number":  art.ArticleNumber,
			"article_title":   art.ArticleTitle,
			"article_content": truncateRunes(art.ArticleContent, previewRunes),
			"relevance":       "high",
		})
	}
	return out, nil
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
