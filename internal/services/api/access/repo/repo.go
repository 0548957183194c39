// Package repo provides postgres access for the access log
package repo

import (
	"context"
	"time"

	"reviewnexus/internal/modkit/repokit"
	perr "reviewnexus/internal/platform/errors"
	"reviewnexus/internal/services/api/access/domain"
)

// InsertRow carries one hashed access event
type InsertRow struct {
	Path        string
	Referer     *string
	ClientID    *string
	VisitorHash string
	IPHash      string
	UAHash      string
}

// Repo is the persistence surface for access events
type Repo interface {
	Insert(ctx context.Context, row InsertRow) error
	Summary(ctx context.Context, since time.Time) (domain.Summary, error)
	Hourly(ctx context.Context, since time.Time) ([]domain.HourlyRow, error)
	Recent(ctx context.Context, limit int) ([]domain.RecentRow, error)
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Insert(ctx context.Context, row InsertRow) error {
	const sql = `
insert into access_logs (path, referer, client_id, visitor_hash, ip_hash, ua_hash)
values ($1, $2, $3, $4, $5, $6)
`
	_, err := r.q.Exec(ctx, sql, row.Path, row.Referer, row.ClientID, row.VisitorHash, row.IPHash, row.UAHash)
	return perr.FromPostgres(err, "insert access hit")
}

func (r *queries) Summary(ctx context.Context, since time.Time) (domain.Summary, error) {
	const sql = `
select count(*)::int, count(distinct visitor_hash)::int
from access_logs
where accessed_at >= $1
`
	var s domain.Summary
	if err := r.q.QueryRow(ctx, sql, since).Scan(&s.Total, &s.UniqueVisitors); err != nil {
		return domain.Summary{}, perr.FromPostgres(err, "access summary")
	}
	return s, nil
}

func (r *queries) Hourly(ctx context.Context, since time.Time) ([]domain.HourlyRow, error) {
	const sql = `
select date_trunc('hour', accessed_at) as hour,
count(*)::int,
count(distinct visitor_hash)::int
from access_logs
where accessed_at >= $1
group by hour
order by hour desc
`
	out, err := repokit.Many(ctx, r.q, func(row repokit.Row) (domain.HourlyRow, error) {
		var h domain.HourlyRow
		return h, row.Scan(&h.Hour, &h.Count, &h.Visitors)
	}, sql, since)
	if err != nil {
		return nil, perr.FromPostgres(err, "access hourly")
	}
	return out, nil
}

func (r *queries) Recent(ctx context.Context, limit int) ([]domain.RecentRow, error) {
	const sql = `
select accessed_at, path, coalesce(referer, ''), visitor_hash
from access_logs
order by accessed_at desc, id desc
limit $1
`
	out, err := repokit.Many(ctx, r.q, func(row repokit.Row) (domain.RecentRow, error) {
		var rr domain.RecentRow
		return rr, row.Scan(&rr.AccessedAt, &rr.Path, &rr.Referer, &rr.VisitorHash)
	}, sql, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "access recent")
	}
	return out, nil
}
