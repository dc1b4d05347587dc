package analyses_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lawexam-backend/internal/bootstrap"
	"lawexam-backend/internal/shared/config"
)

func buildApp(t *testing.T) *bootstrap.App {
	t.Helper()
	app, err := bootstrap.Build(config.Config{
		Env:               "dev",
		LogLevel:          "error",
		UploadDir:         t.TempDir(),
		MaxFileSize:       1 << 20,
		AllowedExtensions: ".pdf,.png",
		OCRLanguage:       "ch_tra",
		OCRWorkers:        1,
		JWTSecret:         "test-secret",
		JWTTTL:            time.Hour,
	})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return app
}

func authToken(t *testing.T, app *bootstrap.App, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"password123"}`, email)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var login struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return login.AccessToken
}

func postJSON(t *testing.T, app *bootstrap.App, token, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeQuestionFallback(t *testing.T) {
	app := buildApp(t)
	token := authToken(t, app, "analysis@example.com")

	// No AI key is configured, so the rule-based classifier answers.
	rec := postJSON(t, app, token, "/api/v1/analysis/question",
		`{"question_text":"下列何者為契約成立的必要要件？"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var analysis struct {
		ID              string         `json:"id"`
		QuestionType    string         `json:"question_type"`
		ConfidenceScore float64        `json:"confidence_score"`
		AIModelUsed     string         `json:"ai_model_used"`
		AnalysisResult  map[string]any `json:"analysis_result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if analysis.QuestionType != "選擇題" {
		t.Errorf("type = %s, want 選擇題", analysis.QuestionType)
	}
	if analysis.ConfidenceScore != 0.3 {
		t.Errorf("confidence = %v, want 0.3", analysis.ConfidenceScore)
	}
	if analysis.AIModelUsed != "fallback_classifier" {
		t.Errorf("model = %s", analysis.AIModelUsed)
	}
	if analysis.AnalysisResult["method"] != "fallback" {
		t.Errorf("analysis_result = %v", analysis.AnalysisResult)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/"+analysis.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	app := buildApp(t)
	token := authToken(t, app, "short@example.com")

	rec := postJSON(t, app, token, "/api/v1/analysis/question", `{"question_text":"太短"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRateAnalysis(t *testing.T) {
	app := buildApp(t)
	token := authToken(t, app, "rate@example.com")

	rec := postJSON(t, app, token, "/api/v1/analysis/question",
		`{"question_text":"請說明民法上侵權行為的構成要件為何"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("analyze status = %d", rec.Code)
	}
	var analysis struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = postJSON(t, app, token, "/api/v1/analysis/"+analysis.ID+"/rate", `{"rating":5,"feedback":"很清楚"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("rate status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Boundary: 1 and 5 pass, 0 and 6 are rejected by binding.
	if rec := postJSON(t, app, token, "/api/v1/analysis/"+analysis.ID+"/rate", `{"rating":1}`); rec.Code != http.StatusOK {
		t.Errorf("rating 1 status = %d, want 200", rec.Code)
	}
	if rec := postJSON(t, app, token, "/api/v1/analysis/"+analysis.ID+"/rate", `{"rating":6}`); rec.Code != http.StatusBadRequest {
		t.Errorf("rating 6 status = %d, want 400", rec.Code)
	}
	if rec := postJSON(t, app, token, "/api/v1/analysis/"+analysis.ID+"/rate", `{"rating":0}`); rec.Code != http.StatusBadRequest {
		t.Errorf("rating 0 status = %d, want 400", rec.Code)
	}
}

func TestListAndTypes(t *testing.T) {
	app := buildApp(t)
	token := authToken(t, app, "types@example.com")

	rec := postJSON(t, app, token, "/api/v1/analysis/question",
		`{"question_text":"下列何者為契約成立的必要要件？"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("analyze status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis?question_type=選擇題", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Analyses []json.RawMessage `json:"analyses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Analyses) != 1 {
		t.Errorf("analyses = %d, want 1", len(list.Analyses))
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/analysis/types/available", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("types status = %d", rec.Code)
	}
	var types struct {
		QuestionTypes []json.RawMessage `json:"question_types"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &types); err != nil {
		t.Fatalf("decode types: %v", err)
	}
	if len(types.QuestionTypes) != 5 {
		t.Errorf("question types = %d, want 5", len(types.QuestionTypes))
	}
}
