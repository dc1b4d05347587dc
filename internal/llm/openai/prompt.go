package openai

import (
	"strings"

	"lawexam-backend/internal/llm"
)

const systemPrompt = `你是一位專業的法律專家，專門分析臺灣國家考試的法律題目。你的任務是：

1. 分析題型和難度等級
2. 識別相關的法條和法律概念
3. 提供解題要點和思路
4. 給出學習建議

請用繁體中文回答，並確保分析準確、實用。

重要規則：
- 專注於臺灣法律體系
- 提供具體的法條編號和條文
- 解釋必須清晰易懂
- 學習建議要具體可行
- 信心分數要客觀評估`

const formatInstructions = `請以JSON物件格式回答，包含以下欄位：
question_type (題型分類), difficulty_level (難度等級),
relevant_laws (相關法條列表), legal_concepts (重要法律概念，含 concept/description/importance),
key_points (解題要點), answer_approach (解題思路),
study_suggestions (學習建議), confidence_score (0-1 信心分數)`

func buildUserPrompt(input llm.QuestionInput) string {
	var b strings.Builder
	b.WriteString("請分析以下法律題目：\n\n【題目】\n")
	b.WriteString(input.QuestionText)
	b.WriteString("\n\n")

	if input.Context != "" {
		b.WriteString("【背景資訊】\n")
		b.WriteString(input.Context)
		b.WriteString("\n\n")
	}
	if input.TypeHint != "" {
		b.WriteString("【題型提示】\n")
		b.WriteString(input.TypeHint)
		b.WriteString("\n\n")
	}

	b.WriteString(formatInstructions)
	return b.String()
}
