// @title         ReviewNexus API
// @version       0.1.0
// @description   Review ingestion, product pages, search, and access stats

package main

import (
	"context"
	"time"

	"reviewnexus/internal/platform/config"
	"reviewnexus/internal/platform/logger"
	phttp "reviewnexus/internal/platform/net/http"
	"reviewnexus/internal/platform/store"

	"reviewnexus/internal/services/api"
)

func main() {
	cfg := config.New()

	// bring up logging early
	l := logger.Get()

	pgURL := cfg.MayString("PG_URL", "")

	// open the platform store; a missing PG_URL keeps the server up and
	// handlers degrade with their own storage messages
	st, err := store.Open(
		context.Background(),
		store.Config{
			AppName: "reviewnexus-api",
			PG: store.PGConfig{
				Enabled:        pgURL != "",
				URL:            pgURL,
				MaxConns:       int32(cfg.MayInt("PG_MAX_CONNS", 4)),
				SlowQueryMs:    cfg.MayInt("PG_SLOW_MS", 500),
				LogSQL:         cfg.MayBool("PG_LOG_SQL", false),
				ConnectRetries: cfg.MayInt("PG_CONNECT_RETRIES", 6),
				PingTimeout:    cfg.MayDuration("PG_PING_TIMEOUT", 5*time.Second),
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if pgURL == "" {
		l.Warn().Msg("PG_URL not set, storage-backed endpoints will degrade")
	}

	// http server (reads API_PORT)
	srv := phttp.NewServer(cfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         cfg,
			Store:          st,
			Logger:         l,
			EnableSwagger:  cfg.MayBool("SWAGGER", true),
			EnableProfiler: cfg.MayBool("PROFILER", false),
		},
	)

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
