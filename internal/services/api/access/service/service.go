// Package service contains the access recording and stats workflows
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"reviewnexus/internal/modkit/repokit"
	"reviewnexus/internal/platform/logger"
	pstrings "reviewnexus/internal/platform/strings"
	"reviewnexus/internal/services/api/access/domain"
	"reviewnexus/internal/services/api/access/repo"
)

const (
	maxHours       = 720
	maxRecentLimit = 500

	defaultHours       = 24
	defaultRecentLimit = 50
)

// Service defines the access service contract
type Service interface {
	domain.AccessPort
}

// Svc implements the access recorder
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	log    logger.Logger

	now func() time.Time
}

// New constructs an access service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], log logger.Logger) *Svc {
	if db == nil {
		panic("access.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("access.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, log: log, now: time.Now}
}

// Hash32 is a sha256 hex digest truncated to 32 characters.
// Identities are stored hashed only, raw ip and user agent never persist
func Hash32(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:32]
}

// VisitorHash derives the per-visitor key from client id plus hashed ip and ua
func VisitorHash(clientID, ipHash, uaHash string) string {
	return Hash32(clientID + "|" + ipHash + "|" + uaHash)
}

// Record hashes and persists one access event
func (s *Svc) Record(ctx context.Context, hit domain.Hit) (domain.RecordResult, error) {
	path := normalizePath(hit.Path)
	ipHash := Hash32(strings.TrimSpace(hit.IP))
	uaHash := Hash32(strings.TrimSpace(hit.UserAgent))

	row := repo.InsertRow{
		Path:        path,
		Referer:     pstrings.Ptr(strings.TrimSpace(hit.Referer)),
		ClientID:    pstrings.Ptr(strings.TrimSpace(hit.ClientID)),
		VisitorHash: VisitorHash(strings.TrimSpace(hit.ClientID), ipHash, uaHash),
		IPHash:      ipHash,
		UAHash:      uaHash,
	}
	if err := s.Repo.Insert(ctx, row); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("access hit insert failed")
		return domain.RecordResult{OK: false}, nil
	}
	return domain.RecordResult{OK: true}, nil
}

// Stats returns windowed counts, hourly buckets and recent hits
func (s *Svc) Stats(ctx context.Context, q domain.StatsQuery) (domain.StatsView, error) {
	hours := clampInt(q.Hours, 1, maxHours, defaultHours)
	limit := clampInt(q.RecentLimit, 1, maxRecentLimit, defaultRecentLimit)

	view := domain.StatsView{
		Hours:  hours,
		Hourly: []domain.HourlyRow{},
		Recent: []domain.RecentRow{},
	}
	since := s.now().Add(-time.Duration(hours) * time.Hour)

	summary, err := s.Repo.Summary(ctx, since)
	if err != nil {
		s.log.Error().Err(err).Msg("access stats failed")
		view.Error = "stats are temporarily unavailable"
		return view, nil
	}
	view.OK = true
	view.Summary = summary

	if hourly, err := s.Repo.Hourly(ctx, since); err == nil {
		view.Hourly = hourly
	}
	if recent, err := s.Repo.Recent(ctx, limit); err == nil {
		view.Recent = recent
	}
	return view, nil
}

// normalizePath strips query noise and guarantees a leading slash
func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func clampInt(v, lo, hi, def int) int {
	if v == 0 {
		return def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
