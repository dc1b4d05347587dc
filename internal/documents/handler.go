package documents

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lawexam-backend/internal/filestore"
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
	grp := rg.Group("/documents")
	grp.POST("/upload", h.upload)
	grp.GET("", h.list)
	grp.GET("/stats/summary", h.stats)
	grp.GET("/:id", h.get)
	grp.GET("/:id/content", h.content)
	grp.POST("/:id/process", h.process)
	grp.DELETE("/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "file is required", err.Error())
		return
	}

	processImmediately := true
	if raw := c.Query("process_immediately"); raw != "" {
		processImmediately = raw != "false" && raw != "0"
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation", "could not read uploaded file", nil)
		return
	}
	defer f.Close()

	doc, err := h.service.Upload(c.Request.Context(), userID, fileHeader.Filename, fileHeader.Size, f, processImmediately)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, toDocumentResponse(doc))
}

func (h *Handler) get(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)
	doc, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, toDocumentResponse(doc))
}

func (h *Handler) content(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)
	doc, err := h.service.Content(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	var text string
	if doc.ExtractedText != nil {
		text = *doc.ExtractedText
	}
	respond.OK(c, contentResponse{
		ID:            doc.ID,
		ExtractedText: text,
		PageCount:     doc.PageCount,
		OCRMetadata:   doc.OCRMeta,
	})
}

func (h *Handler) process(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)
	doc, err := h.service.Process(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, toDocumentResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)
	status := c.Query("status")

	docs, err := h.service.List(c.Request.Context(), userID, limit, offset, status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentResponse(doc))
	}
	respond.OK(c, listResponse{Documents: out, Limit: limit, Offset: offset})
}

func (h *Handler) remove(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"deleted": true})
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

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, filestore.ErrTypeNotAllowed):
		respond.Error(c, http.StatusBadRequest, "unsupported_type", "file type is not supported", nil)
	case errors.Is(err, filestore.ErrFileTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds the size limit", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation", err.Error(), nil)
	case errors.Is(err, ErrNotReady):
		respond.Error(c, http.StatusBadRequest, "not_ready", err.Error(), nil)
	case errors.Is(err, ErrProcessing):
		respond.Error(c, http.StatusInternalServerError, "processing_failed", "document processing failed", nil)
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
