// Package repo provides postgres access for cached external listings
package repo

import (
	"context"

	"reviewnexus/internal/modkit/repokit"
	perr "reviewnexus/internal/platform/errors"
	pstrings "reviewnexus/internal/platform/strings"
	"reviewnexus/internal/services/api/listing/domain"
)

// Repo is the persistence surface for listing snapshots
type Repo interface {
	ReplaceAll(ctx context.Context, items []domain.Snapshot) error
	Recent(ctx context.Context, limit int) ([]domain.Snapshot, error)
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

// ReplaceAll swaps the whole snapshot set. Callers run it inside a
// transaction so readers never observe a half-replaced table
func (r *queries) ReplaceAll(ctx context.Context, items []domain.Snapshot) error {
	if _, err := r.q.Exec(ctx, `delete from fanza_releases`); err != nil {
		return perr.FromPostgres(err, "clear listings")
	}
	const sql = `
insert into fanza_releases (product_id, title, source_url, image_url, fetched_at)
values ($1, $2, $3, $4, now())
on conflict (product_id)
do update set title = excluded.title, source_url = excluded.source_url,
image_url = excluded.image_url, fetched_at = now()
`
	for _, it := range items {
		if _, err := r.q.Exec(ctx, sql, it.ProductID, it.Title,
			pstrings.Ptr(it.SourceURL), pstrings.Ptr(it.ImageURL)); err != nil {
			return perr.FromPostgres(err, "insert listing")
		}
	}
	return nil
}

func (r *queries) Recent(ctx context.Context, limit int) ([]domain.Snapshot, error) {
	const sql = `
select product_id, title, coalesce(source_url, ''), coalesce(image_url, ''), fetched_at
from fanza_releases
order by fetched_at desc, product_id asc
limit $1
`
	out, err := repokit.Many(ctx, r.q, func(row repokit.Row) (domain.Snapshot, error) {
		var s domain.Snapshot
		return s, row.Scan(&s.ProductID, &s.Title, &s.SourceURL, &s.ImageURL, &s.FetchedAt)
	}, sql, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list recent listings")
	}
	return out, nil
}
