package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"log"
	"os"

	"lawexam-backend/internal/shared/config"
	"lawexam-backend/internal/shared/storage/db"
	"lawexam-backend/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	telemetry.Setup("lawexam-migrate", cfg.LogLevel, cfg.Env)
	ctx := context.Background()

	opts := db.DefaultOptions()
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.L().Error().Err(err).Msg("failed to connect database")
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.L().Error().Err(err).Msg("failed to run migrations")
		os.Exit(1)
	}
	telemetry.L().Info().Msg("migrations complete")
}
