// Package store provides a thin facade over the Postgres backend.
// Repos depend on the RowQuerier/TxRunner seams, never on pgx directly
package store

import (
	"context"
	"errors"
	"fmt"

	"reviewnexus/internal/platform/logger"
)

// Store is the facade over configured backends.
// zero value is safe but does nothing
type Store struct {
	// Log is the logger used by subclients
	Log logger.Logger

	// PG is the postgres sql seam, a disconnected stub when disabled
	PG TxRunner
}

// Row exposes the minimal scan contract a single row needs
type Row interface {
	Scan(dest ...any) error
}

// Rows exposes the minimal iteration and scan for a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag is a tiny interface to inspect command results
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use for sql
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner wraps transaction execution around a function
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open constructs a Store with the requested backends.
// Backends not enabled in cfg remain nil on the Store
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	// defaults for zero logger to avoid nil checks
	s.Log = s.Log.With().Logger()

	if cfg.PG.Enabled {
		pgClient, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = pgClient
	} else {
		// keep the seam non nil so services stay constructible and
		// degrade per request instead of panicking at boot
		s.PG = disconnected{}
	}

	return s, nil
}

// ErrNotConfigured is returned by every call on a disconnected seam
var ErrNotConfigured = errors.New("store: postgres not configured")

type disconnected struct{}

func (disconnected) Exec(context.Context, string, ...any) (CommandTag, error) {
	return nil, ErrNotConfigured
}

func (disconnected) Query(context.Context, string, ...any) (Rows, error) {
	return nil, ErrNotConfigured
}

func (disconnected) QueryRow(context.Context, string, ...any) Row {
	return errRow{err: ErrNotConfigured}
}

func (disconnected) Tx(context.Context, func(q RowQuerier) error) error {
	return ErrNotConfigured
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// Guard verifies all configured seams are reachable
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	if s.PG != nil {
		if p, ok := any(s.PG).(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("pg: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes all initialized backends gracefully, nil backends are ignored
func (s *Store) Close(ctx context.Context) error {
	var errs []error
	if c, ok := s.PG.(interface{ Close() error }); ok {
		if e := c.Close(); e != nil {
			errs = append(errs, e)
		}
	}
	return errors.Join(errs...)
}
