package analyses

import (
	"strings"
	"testing"
)

func TestClassifyQuestion(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"下列何者為契約成立要件？", TypeMultipleChoice},
		{"哪個選項正確", TypeMultipleChoice},
		{"請說明民法上侵權行為的構成要件", TypeEssay},
		{"試分析本條文的立法目的", TypeEssay},
		{"甲乙兩名當事人之間的糾紛", TypeCaseStudy},
		{"根據以下案例事實回答", TypeCaseStudy},
		{"民法第184條規定為何？", TypeShortAnswer},
		{"民法第184條規定的內容", TypeUnclassified},
	}
	for _, tc := range cases {
		if got := classifyQuestion(tc.text); got != tc.want {
			t.Errorf("classifyQuestion(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestEstimateDifficulty(t *testing.T) {
	short := "短題目"
	medium := strings.Repeat("題", 80)
	long := strings.Repeat("題", 200)

	if got := estimateDifficulty(short); got != DifficultyBasic {
		t.Errorf("short = %s, want %s", got, DifficultyBasic)
	}
	if got := estimateDifficulty(medium); got != DifficultyIntermediate {
		t.Errorf("medium = %s, want %s", got, DifficultyIntermediate)
	}
	if got := estimateDifficulty(long); got != DifficultyAdvanced {
		t.Errorf("long = %s, want %s", got, DifficultyAdvanced)
	}
}

func TestExtractKeywords(t *testing.T) {
	text := "契約當事人對損害賠償責任的約定是否違反消費者保護法"
	got := extractKeywords(text, 3)
	want := []string{"契約", "損害", "責任"}
	if len(got) != len(want) {
		t.Fatalf("keywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestFallbackResult(t *testing.T) {
	result := fallbackResult("下列何者為契約成立要件？")
	if result.QuestionType != TypeMultipleChoice {
		t.Errorf("type = %s, want %s", result.QuestionType, TypeMultipleChoice)
	}
	if result.ConfidenceScore != 0.3 {
		t.Errorf("confidence = %v, want 0.3", result.ConfidenceScore)
	}
	if len(result.KeyPoints) != 1 || result.KeyPoints[0] != "需要完整AI分析功能" {
		t.Errorf("key points = %v", result.KeyPoints)
	}
	if !strings.Contains(result.StudySuggestions, "法律專家") {
		t.Errorf("study suggestions = %q", result.StudySuggestions)
	}
}
