// Command reviewnexus-botpost posts one bot review and exits.
// Meant for local runs and cron hosts that prefer a process over the
// authenticated /cron/bot-review endpoint
package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"

	"reviewnexus/internal/modkit"
	"reviewnexus/internal/modkit/module"
	"reviewnexus/internal/modkit/repokit"
	"reviewnexus/internal/platform/config"
	"reviewnexus/internal/platform/logger"
	"reviewnexus/internal/platform/store"
	"reviewnexus/internal/platform/store/schema"

	reviewmod "reviewnexus/internal/services/api/review/module"
)

func main() {
	cfg := config.New()
	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		AppName: "reviewnexus-botpost",
		PG: store.PGConfig{
			Enabled:        true,
			URL:            cfg.MustString("PG_URL"),
			MaxConns:       int32(cfg.MayInt("PG_MAX_CONNS", 2)),
			SlowQueryMs:    cfg.MayInt("PG_SLOW_MS", 500),
			LogSQL:         cfg.MayBool("PG_LOG_SQL", false),
			ConnectRetries: cfg.MayInt("PG_CONNECT_RETRIES", 6),
			PingTimeout:    cfg.MayDuration("PG_PING_TIMEOUT", 5*time.Second),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// one shot tool, a dead database should fail loudly up front
	repokit.MustGuard(context.Background(), st)

	runID := uuid.NewString()
	log := l.With().Str("run_id", runID).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MayDuration("BOTPOST_TIMEOUT", 60*time.Second))
	defer cancel()

	if err := schema.NewEnsurer(st.PG).Ensure(ctx); err != nil {
		log.Panic().Err(err).Msg("schema ensure failed")
	}

	deps := modkit.Deps{Log: log, Cfg: cfg, PG: st.PG}
	review := reviewmod.New(deps)
	port := module.MustPortsOf[reviewmod.Ports](review).Review

	res, err := port.PostBotReview(ctx)
	if err != nil {
		log.Error().Err(err).Msg("bot review failed")
		os.Exit(1)
	}
	if res.Skipped {
		log.Info().Str("reason", res.Message).Msg("bot review skipped")
		return
	}
	log.Info().
		Str("platform", string(res.Platform)).
		Str("product_id", res.ProductID).
		Int("score", res.Score).
		Msg("bot review posted")
}
