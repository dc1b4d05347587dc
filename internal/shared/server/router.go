package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lawexam-backend/internal/analyses"
	"lawexam-backend/internal/documents"
	"lawexam-backend/internal/shared/config"
	"lawexam-backend/internal/shared/server/middleware"
	"lawexam-backend/internal/users"
)

// RouterDeps carries everything the HTTP layer needs.
type RouterDeps struct {
	Config          config.Config
	UsersHandler    *users.Handler
	DocumentHandler *documents.Handler
	AnalysisHandler *analyses.Handler
}

// NewRouter builds the gin engine with the full middleware chain and all
// API routes mounted under /api/v1.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(deps.Config.CORSAllowOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(deps.Config.JWTSecret))

	deps.UsersHandler.Register(api)
	deps.DocumentHandler.Register(api)
	deps.AnalysisHandler.Register(api)

	return r
}
