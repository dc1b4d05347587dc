package analyses

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lawexam-backend/internal/shared/server/middleware"
	"lawexam-backend/internal/shared/server/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	grp := rg.Group("/analysis")
	grp.POST("/question", h.analyze)
	grp.GET("", h.list)
	grp.GET("/stats/summary", h.stats)
	grp.GET("/types/available", h.types)
	grp.GET("/:id", h.get)
	grp.POST("/:id/rate", h.rate)
}

type analyzeRequest struct {
	QuestionText string  `json:"question_text" binding:"required,min=10,max=5000"`
	Context      string  `json:"context"`
	TypeHint     string  `json:"type_hint"`
	DocumentID   *string `json:"document_id"`
}

type rateRequest struct {
	Rating   float64 `json:"rating" binding:"required,gte=1,lte=5"`
	Feedback string  `json:"feedback"`
}

type analysisResponse struct {
	ID                 string           `json:"id"`
	DocumentID         *string          `json:"document_id,omitempty"`
	QuestionText       string           `json:"question_text"`
	QuestionType       string           `json:"question_type"`
	QuestionDifficulty string           `json:"question_difficulty"`
	AnalysisResult     map[string]any   `json:"analysis_result"`
	RelevantLaws       []map[string]any `json:"relevant_laws"`
	LegalConcepts      []map[string]any `json:"legal_concepts"`
	KeyPoints          []string         `json:"key_points"`
	SimilarQuestions   []map[string]any `json:"similar_questions"`
	PracticeMaterials  []map[string]any `json:"practice_materials"`
	ConfidenceScore    float64          `json:"confidence_score"`
	StudySuggestions   string           `json:"study_suggestions"`
	AIModelUsed        string           `json:"ai_model_used"`
	ProcessingTimeMS   int64            `json:"processing_time_ms"`
	UserRating         *float64         `json:"user_rating,omitempty"`
	UserFeedback       *string          `json:"user_feedback,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

type listResponse struct {
	Analyses []analysisResponse `json:"analyses"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

func toAnalysisResponse(a Analysis) analysisResponse {
	return analysisResponse{
		ID:                 a.ID,
		DocumentID:         a.DocumentID,
		QuestionText:       a.QuestionText,
		QuestionType:       a.QuestionType,
		QuestionDifficulty: a.QuestionDifficulty,
		AnalysisResult:     a.AnalysisResult,
		RelevantLaws:       a.RelevantLaws,
		LegalConcepts:      a.LegalConcepts,
		KeyPoints:          a.KeyPoints,
		SimilarQuestions:   a.SimilarQuestions,
		PracticeMaterials:  a.PracticeMaterials,
		ConfidenceScore:    a.ConfidenceScore,
		StudySuggestions:   a.StudySuggestions,
		AIModelUsed:        a.AIModelUsed,
		ProcessingTimeMS:   a.ProcessingTimeMS,
		UserRating:         a.UserRating,
		UserFeedback:       a.UserFeedback,
		CreatedAt:          a.CreatedAt,
	}
}

func (h *Handler) analyze(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "question_text must be 10-5000 characters", err.Error())
		return
	}

	analysis, err := h.service.Analyze(c.Request.Context(), userID, Input{
		QuestionText: req.QuestionText,
		Context:      req.Context,
		TypeHint:     req.TypeHint,
		DocumentID:   req.DocumentID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, toAnalysisResponse(analysis))
}

func (h *Handler) get(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)
	analysis, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, toAnalysisResponse(analysis))
}

func (h *Handler) list(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)
	questionType := c.Query("question_type")

	results, err := h.service.List(c.Request.Context(), userID, limit, offset, questionType)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]analysisResponse, 0, len(results))
	for _, a := range results {
		out = append(out, toAnalysisResponse(a))
	}
	respond.OK(c, listResponse{Analyses: out, Limit: limit, Offset: offset})
}

func (h *Handler) rate(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)

	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "rating must be between 1 and 5", err.Error())
		return
	}
	if err := h.service.Rate(c.Request.Context(), userID, c.Param("id"), req.Rating, req.Feedback); err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"rated": true})
}

func (h *Handler) stats(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)
	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, stats)
}

func (h *Handler) types(c *gin.Context) {
	respond.OK(c, gin.H{
		"question_types": []gin.H{
			{"value": TypeMultipleChoice, "description": "單選或多選題"},
			{"value": TypeEssay, "description": "需要完整論述的題目"},
			{"value": TypeCaseStudy, "description": "根據案例事實進行法律分析"},
			{"value": TypeShortAnswer, "description": "簡答形式的問題"},
			{"value": TypeUnclassified, "description": "無法自動歸類的題目"},
		},
		"difficulty_levels": []gin.H{
			{"value": DifficultyBasic, "description": "基礎題"},
			{"value": DifficultyIntermediate, "description": "中等難度"},
			{"value": DifficultyAdvanced, "description": "進階題"},
		},
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "unexpected error", nil)
	}
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
