package main

import (
	"context"
	"os"
	"strings"

	"bus-route-viewer/internal/adapters/repositories"
	"bus-route-viewer/internal/config"
	"bus-route-viewer/internal/platform/db"
	"bus-route-viewer/internal/platform/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load(config.Overrides{})
	logging.Setup(os.Stderr, cfg.LogFormat, cfg.Debug)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	databaseURL := cfg.DatabaseURL
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx := context.Background()

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	defer conn.Close()

	log.Info().Msg("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatal().Err(err).Msg("schema initialization failed")
	}
	log.Info().Msg("Schema ready.")
}
