// Package service contains the listing snapshot workflows
package service

import (
	"context"
	"strings"

	"reviewnexus/internal/modkit/repokit"
	perr "reviewnexus/internal/platform/errors"
	"reviewnexus/internal/platform/logger"
	"reviewnexus/internal/services/api/listing/domain"
	"reviewnexus/internal/services/api/listing/repo"
)

const maxRecent = 100

// Service defines the listing service contract
type Service interface {
	domain.ListingPort
}

// Svc implements the listing service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	log    logger.Logger
}

// New constructs a listing service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], log logger.Logger) *Svc {
	if db == nil {
		panic("listing.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("listing.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, log: log}
}

// Replace refreshes the whole snapshot table atomically
func (s *Svc) Replace(ctx context.Context, items []domain.Snapshot) (domain.ReplaceResult, error) {
	clean := make([]domain.Snapshot, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it.ProductID = strings.ToLower(strings.TrimSpace(it.ProductID))
		it.Title = strings.TrimSpace(it.Title)
		if it.ProductID == "" || it.Title == "" {
			continue
		}
		if _, dup := seen[it.ProductID]; dup {
			continue
		}
		seen[it.ProductID] = struct{}{}
		clean = append(clean, it)
	}

	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		return s.binder.Bind(q).ReplaceAll(ctx, clean)
	})
	if err != nil {
		s.log.Error().Err(err).Int("count", len(clean)).Msg("listing replace failed")
		return domain.ReplaceResult{}, perr.WithOp(err, "listing.Replace")
	}
	return domain.ReplaceResult{OK: true, Count: len(clean)}, nil
}

// Recent returns the freshest snapshots for the home page
func (s *Svc) Recent(ctx context.Context, limit int) ([]domain.Snapshot, error) {
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}
	out, err := s.Repo.Recent(ctx, limit)
	if err != nil {
		return nil, perr.WithOp(err, "listing.Recent")
	}
	if out == nil {
		out = []domain.Snapshot{}
	}
	return out, nil
}
