// Package schema lazily ensures the database tables exist.
// Ensure is memoized per process and single-flighted so concurrent first
// requests share one round of DDL instead of racing each other
package schema

import (
	"context"
	"sync/atomic"

	"reviewnexus/internal/platform/logger"
	"reviewnexus/internal/platform/store"

	"golang.org/x/sync/singleflight"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS reviews (
		id BIGSERIAL PRIMARY KEY,
		product_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		product_name TEXT,
		source_url TEXT,
		performer_names TEXT[] NOT NULL DEFAULT '{}',
		cosplay_character TEXT,
		author TEXT NOT NULL DEFAULT 'user',
		score INT NOT NULL CHECK (score BETWEEN 0 AND 100),
		comment TEXT,
		tags TEXT[] NOT NULL DEFAULT '{}',
		likes_count INT NOT NULL DEFAULT 0,
		helpful_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews (product_id, platform)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS product_notes (
		product_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		overall_comment TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (product_id, platform)
	)`,
	`CREATE TABLE IF NOT EXISTS access_logs (
		id BIGSERIAL PRIMARY KEY,
		accessed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		path TEXT NOT NULL,
		referer TEXT,
		client_id TEXT,
		visitor_hash TEXT NOT NULL,
		ip_hash TEXT NOT NULL,
		ua_hash TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_access_logs_accessed_at ON access_logs (accessed_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_access_logs_visitor ON access_logs (visitor_hash, accessed_at DESC)`,
	`CREATE TABLE IF NOT EXISTS fanza_releases (
		product_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		source_url TEXT,
		image_url TEXT,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Ensurer runs the additive DDL at most once per process
type Ensurer struct {
	pg    store.RowQuerier
	group singleflight.Group
	done  atomic.Bool
}

// NewEnsurer builds an Ensurer over the given querier
func NewEnsurer(pg store.RowQuerier) *Ensurer { return &Ensurer{pg: pg} }

// Ensure creates missing tables and indexes. Safe to call from every
// request path: after the first success it is a single atomic load.
// A nil querier is a no-op so an unconfigured database can degrade
// at the handler level instead of here
func (e *Ensurer) Ensure(ctx context.Context) error {
	if e.pg == nil || e.done.Load() {
		return nil
	}
	_, err, _ := e.group.Do("ensure", func() (any, error) {
		if e.done.Load() {
			return nil, nil
		}
		for _, stmt := range statements {
			if _, err := e.pg.Exec(ctx, stmt); err != nil {
				return nil, err
			}
		}
		e.done.Store(true)
		logger.Named("schema").Debug().Msg("schema ensured")
		return nil, nil
	})
	return err
}
