package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lawexam-backend/internal/llm"
	"lawexam-backend/internal/shared/telemetry"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("OPENAI_MODEL is required")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// AnalyzeQuestion asks the model for a structured legal analysis. Transport
// and service failures return an error; a response that cannot be parsed
// degrades through JSON-substring salvage to a minimal low-confidence result.
func (c *Client) AnalyzeQuestion(ctx context.Context, input llm.QuestionInput) (llm.AnalysisResult, llm.Metadata, error) {
	start := time.Now()
	meta := llm.Metadata{ModelUsed: c.model}

	raw, err := c.complete(ctx, input)
	meta.ProcessingTimeMS = float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		meta.Error = err.Error()
		return llm.AnalysisResult{}, meta, err
	}
	meta.Success = true

	result, ok := parseResult(raw)
	if !ok {
		telemetry.L().Warn().Str("model", c.model).Msg("failed to parse structured output, using minimal result")
		result = minimalResult()
	}
	return result, meta, nil
}

func (c *Client) complete(ctx context.Context, input llm.QuestionInput) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(input)},
		},
		// Low temperature for consistent legal analysis.
		Temperature:    0.1,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response (http %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai http status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// parseResult decodes the structured response, falling back to extracting
// the outermost JSON object when the model wrapped it in prose.
func parseResult(raw string) (llm.AnalysisResult, bool) {
	var result llm.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err == nil && result.QuestionType != "" {
		return clampConfidence(result), true
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err == nil && result.QuestionType != "" {
			return clampConfidence(result), true
		}
	}
	return llm.AnalysisResult{}, false
}

func clampConfidence(result llm.AnalysisResult) llm.AnalysisResult {
	if result.ConfidenceScore < 0 {
		result.ConfidenceScore = 0
	}
	if result.ConfidenceScore > 1 {
		result.ConfidenceScore = 1
	}
	return result
}

func minimalResult() llm.AnalysisResult {
	return llm.AnalysisResult{
		QuestionType:     "未分類",
		DifficultyLevel:  "中級",
		KeyPoints:        []string{"需要進一步分析"},
		AnswerApproach:   "AI 回應解析失敗，建議手動分析",
		StudySuggestions: "請諮詢法律專家或查閱相關法條",
		ConfidenceScore:  0.1,
	}
}

var _ llm.Client = (*Client)(nil)
