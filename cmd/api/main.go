package main

import (
	"fmt"
	"log"

	"lawexam-backend/internal/bootstrap"
	"lawexam-backend/internal/shared/config"
	"lawexam-backend/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if app.DB != nil {
		defer app.DB.Close()
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	telemetry.L().Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting API server")

	if err := app.Router.Run(addr); err != nil {
		telemetry.L().Fatal().Err(err).Msg("server error")
	}
}
