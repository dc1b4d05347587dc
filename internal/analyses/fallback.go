package analyses

import (
	"strings"
	"unicode/utf8"

	"lawexam-backend/internal/llm"
)

// legalKeywords is the dictionary used by the fallback classifier and by
// enrichment keyword extraction.
var legalKeywords = []string{
	"契約", "財產", "損害", "責任", "權利", "義務", "法律", "條文",
	"民法", "刑法", "商業", "公司", "消費者", "保護", "管理", "條例",
}

// classifyQuestion assigns a question type from surface markers in the text.
func classifyQuestion(text string) string {
	switch {
	case containsAny(text, "選擇", "下列", "何者", "哪個"):
		return TypeMultipleChoice
	case containsAny(text, "說明", "解釋", "論述", "分析"):
		return TypeEssay
	case containsAny(text, "案例", "事實", "情況", "甲乙"):
		return TypeCaseStudy
	case containsAny(text, "?", "？"):
		return TypeShortAnswer
	default:
		return TypeUnclassified
	}
}

// estimateDifficulty maps question length to a difficulty level.
func estimateDifficulty(text string) string {
	n := utf8.RuneCountInString(text)
	switch {
	case n < 50:
		return DifficultyBasic
	case n < 150:
		return DifficultyIntermediate
	default:
		return DifficultyAdvanced
	}
}

// extractKeywords returns the legal keywords present in the text, in
// dictionary order, capped at max.
func extractKeywords(text string, max int) []string {
	var out []string
	for _, kw := range legalKeywords {
		if strings.Contains(text, kw) {
			out = append(out, kw)
			if len(out) >= max {
				break
			}
		}
	}
	return out
}

// fallbackResult builds the rule-based analysis used when the AI service is
// unavailable or errors out.
func fallbackResult(text string) llm.AnalysisResult {
	var concepts []llm.LegalConcept
	for _, kw := range extractKeywords(text, 5) {
		concepts = append(concepts, llm.LegalConcept{
			Concept:     kw,
			Description: "題目中出現的法律關鍵詞",
			Importance:  "medium",
		})
	}
	return llm.AnalysisResult{
		QuestionType:     classifyQuestion(text),
		DifficultyLevel:  estimateDifficulty(text),
		LegalConcepts:    concepts,
		KeyPoints:        []string{"需要完整AI分析功能"},
		AnswerApproach:   "建議先辨識題目涉及的法律領域，再逐項檢視相關條文要件",
		StudySuggestions: "請諮詢法律專家或使用完整AI分析功能",
		ConfidenceScore:  fallbackConfidence,
	}
}

const (
	fallbackConfidence = 0.3
	fallbackModelName  = "fallback_classifier"
)

func containsAny(text string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
