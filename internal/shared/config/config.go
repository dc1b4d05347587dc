package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces all environment variables (LAWEXAM_*).
const EnvPrefix = "lawexam"

// Config holds application configuration.
type Config struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Env             string   `envconfig:"ENV" default:"dev"`
	LogLevel        string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSAllowOrigin []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173"`

	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	DBMaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	DBMaxIdleConns int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	DBConnMaxLife  time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	DBPingTimeout  time.Duration `envconfig:"DB_PING_TIMEOUT" default:"5s"`

	UploadDir         string `envconfig:"UPLOAD_DIR" default:"data/uploads"`
	MaxFileSize       int64  `envconfig:"MAX_FILE_SIZE" default:"10485760"`
	AllowedExtensions string `envconfig:"ALLOWED_EXTENSIONS" default:".pdf,.png,.jpg,.jpeg"`

	OCREngine   string `envconfig:"OCR_ENGINE" default:"paddleocr"`
	OCRLanguage string `envconfig:"OCR_LANGUAGE" default:"ch_tra"`
	OCRWorkers  int    `envconfig:"OCR_WORKERS" default:"2"`

	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string        `envconfig:"OPENAI_MODEL" default:"gpt-4"`
	OpenAITimeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

// Load reads configuration from the environment, loading local .env files
// first for dev convenience.
func Load() (Config, error) {
	_ = godotenv.Load(".env", "cmd/.env")

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Env = normalizeEnv(cfg.Env)

	if cfg.Env == "production" {
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return Config{}, fmt.Errorf("LAWEXAM_DATABASE_URL is required in production")
		}
		if strings.TrimSpace(cfg.JWTSecret) == "" {
			return Config{}, fmt.Errorf("LAWEXAM_JWT_SECRET is required in production")
		}
	}
	return cfg, nil
}

// Extensions returns the allow-list as a cleaned slice (".pdf", ...).
func (c Config) Extensions() []string {
	var out []string
	for _, raw := range strings.Split(c.AllowedExtensions, ",") {
		ext := strings.ToLower(strings.TrimSpace(raw))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// IsDevLike reports whether the environment tolerates missing external deps.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
