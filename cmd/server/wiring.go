package main

import (
	"context"

	"bus-route-viewer/internal/adapters/optimizer"
	"bus-route-viewer/internal/adapters/repositories"
	"bus-route-viewer/internal/config"
	"bus-route-viewer/internal/platform/db"
	"bus-route-viewer/internal/platform/redisclient"
	"bus-route-viewer/internal/ports"

	"github.com/rs/zerolog/log"
)

// buildOptimizer wires the HTTP optimizer, behind a Redis response cache when
// REDIS_ADDRESS is set. An unreachable Redis only disables the cache.
func buildOptimizer(ctx context.Context, cfg config.Config) (ports.LivenessProber, func(), error) {
	httpOpt, err := optimizer.NewHTTPOptimizer(cfg.BackendURL, cfg.HTTPTimeout)
	if err != nil {
		return nil, nil, err
	}

	if cfg.RedisAddress == "" || cfg.CacheTTL <= 0 {
		return httpOpt, func() {}, nil
	}

	client, err := redisclient.Connect(ctx, cfg.RedisAddress, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Warn().Err(err).Msg("response cache disabled")
		return httpOpt, func() {}, nil
	}

	log.Info().Str("addr", cfg.RedisAddress).Dur("ttl", cfg.CacheTTL).Msg("response cache enabled")
	cached := optimizer.NewCachedOptimizer(httpOpt, optimizer.NewRedisCache(client, cfg.CacheTTL), cfg.CacheTTL)
	return cached, func() { _ = client.Close() }, nil
}

// openHistory uses Postgres when DATABASE_URL is set, memory otherwise.
func openHistory(ctx context.Context, cfg config.Config) (ports.HistoryRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		return repositories.NewMemoryHistoryRepository(cfg.HistoryLimit * 10), func() {}, nil
	}

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if err := repositories.InitSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, err
	}

	return repositories.NewPostgresHistoryRepository(conn), func() { conn.Close() }, nil
}
