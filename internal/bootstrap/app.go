package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"lawexam-backend/internal/analyses"
	"lawexam-backend/internal/articles"
	"lawexam-backend/internal/documents"
	"lawexam-backend/internal/filestore"
	"lawexam-backend/internal/llm"
	"lawexam-backend/internal/llm/openai"
	"lawexam-backend/internal/ocr"
	"lawexam-backend/internal/shared/config"
	"lawexam-backend/internal/shared/server"
	"lawexam-backend/internal/shared/storage/db"
	"lawexam-backend/internal/shared/telemetry"
	"lawexam-backend/internal/users"
)

// App holds the wired application: repositories, services, handlers and the
// HTTP router, all built from config without package-level state.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	FileStore *filestore.Store
	Extractor *ocr.Extractor
	LLM       llm.Client

	UsersRepo     users.Repo
	DocumentsRepo documents.Repo
	AnalysesRepo  analyses.Repo
	ArticlesRepo  articles.Repo

	UsersService     *users.Service
	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
}

// Build wires the full dependency graph. In dev environments a missing or
// unreachable database degrades to in-memory repositories; production fails.
func Build(cfg config.Config) (*App, error) {
	telemetry.Setup("lawexam-backend", cfg.LogLevel, cfg.Env)
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := filestore.New(cfg.UploadDir, cfg.MaxFileSize, cfg.Extensions())
	if err != nil {
		return nil, fmt.Errorf("init file storage: %w", err)
	}

	extractor := ocr.NewExtractor(cfg.OCREngine, cfg.OCRLanguage, cfg.OCRWorkers)

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		FileStore: store,
		Extractor: extractor,
		LLM:       buildLLM(cfg),
	}

	if sqlDB != nil {
		app.UsersRepo = &users.PGRepo{DB: sqlDB}
		app.DocumentsRepo = &documents.PGRepo{DB: sqlDB}
		app.AnalysesRepo = &analyses.PGRepo{DB: sqlDB}
		app.ArticlesRepo = &articles.PGRepo{DB: sqlDB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.AnalysesRepo = analyses.NewMemoryRepo()
		app.ArticlesRepo = articles.NewMemoryRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo, cfg.JWTSecret, cfg.JWTTTL)
	app.DocumentsService = documents.NewService(app.DocumentsRepo, store, extractor)
	app.AnalysesService = analyses.NewService(app.AnalysesRepo, app.ArticlesRepo, app.LLM)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		UsersHandler:    users.NewHandler(app.UsersService),
		DocumentHandler: documents.NewHandler(app.DocumentsService),
		AnalysisHandler: analyses.NewHandler(app.AnalysesService),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.L().Warn().Msg("DATABASE_URL empty, using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("LAWEXAM_DATABASE_URL is required")
	}

	opts := db.DefaultOptions()
	opts.MaxOpenConns = cfg.DBMaxOpenConns
	opts.MaxIdleConns = cfg.DBMaxIdleConns
	opts.ConnMaxLifetime = cfg.DBConnMaxLife
	opts.PingTimeout = cfg.DBPingTimeout

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.L().Warn().Err(err).Msg("database connect failed, using in-memory repositories")
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

// buildLLM returns nil when the AI client is not configured; the analysis
// service then serves every request from the fallback classifier.
func buildLLM(cfg config.Config) llm.Client {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		telemetry.L().Warn().Msg("OPENAI_API_KEY empty, analyses use the fallback classifier")
		return nil
	}
	client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAITimeout)
	if err != nil {
		telemetry.L().Warn().Err(err).Msg("openai client init failed, analyses use the fallback classifier")
		return nil
	}
	return client
}
