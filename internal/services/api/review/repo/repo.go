// Package repo provides postgres access for reviews and product notes
package repo

import (
	"context"
	"time"

	"reviewnexus/internal/core/resolve"
	"reviewnexus/internal/modkit/repokit"
	perr "reviewnexus/internal/platform/errors"
	"reviewnexus/internal/services/api/review/domain"
)

// InsertRow carries the fields of a new review
type InsertRow struct {
	ProductID        string
	Platform         resolve.Platform
	ProductName      *string
	SourceURL        *string
	PerformerNames   []string
	CosplayCharacter *string
	Author           string
	Score            int
	Comment          *string
	Tags             []string
}

// Repo is the persistence surface for the review service
type Repo interface {
	Insert(ctx context.Context, row InsertRow) (int64, error)
	ListByProduct(ctx context.Context, platform resolve.Platform, productID string) ([]domain.Review, error)
	UpsertNote(ctx context.Context, platform resolve.Platform, productID, comment string) error
	GetNote(ctx context.Context, platform resolve.Platform, productID string) (string, error)
	BackfillName(ctx context.Context, platform resolve.Platform, productID, title string) error
	BackfillNames(ctx context.Context, platform resolve.Platform, productID string, names []string) error
	BotPostedSince(ctx context.Context, since time.Time) (bool, error)
	HasHumanComment(ctx context.Context, platform resolve.Platform, productID string) (bool, error)
	Search(ctx context.Context, like string, limit int) ([]domain.ProductAgg, error)
	Latest(ctx context.Context, limit int) ([]domain.Review, error)
	TopProducts(ctx context.Context, limit int) ([]domain.ProductAgg, error)
	React(ctx context.Context, reviewID int64, reaction string) error
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

func (r *queries) Insert(ctx context.Context, row InsertRow) (int64, error) {
	const sql = `
insert into reviews
(product_id, platform, product_name, source_url, performer_names, cosplay_character, author, score, comment, tags)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
returning id
`
	var id int64
	err := r.q.QueryRow(ctx, sql,
		row.ProductID, string(row.Platform), row.ProductName, row.SourceURL,
		row.PerformerNames, row.CosplayCharacter, row.Author, row.Score, row.Comment, row.Tags,
	).Scan(&id)
	if err != nil {
		return 0, perr.FromPostgres(err, "insert review")
	}
	return id, nil
}

const reviewCols = `
id, product_id, platform, product_name, source_url,
coalesce(performer_names, '{}'), cosplay_character, author, score, comment,
coalesce(tags, '{}'), likes_count, helpful_count, created_at
`

func (r *queries) ListByProduct(ctx context.Context, platform resolve.Platform, productID string) ([]domain.Review, error) {
	const sql = `
select ` + reviewCols + `
from reviews
where product_id = $1 and platform = $2
order by created_at desc, id desc
`
	out, err := repokit.Many(ctx, r.q, scanReview, sql, productID, string(platform))
	if err != nil {
		return nil, perr.FromPostgres(err, "list reviews")
	}
	return out, nil
}

func (r *queries) UpsertNote(ctx context.Context, platform resolve.Platform, productID, comment string) error {
	const sql = `
insert into product_notes (product_id, platform, overall_comment, updated_at)
values ($1, $2, nullif($3, ''), now())
on conflict (product_id, platform)
do update set overall_comment = excluded.overall_comment, updated_at = now()
`
	if err := repokit.ExecOne(ctx, r.q, sql, productID, string(platform), comment); err != nil {
		return perr.FromPostgres(err, "upsert product note")
	}
	return nil
}

func (r *queries) GetNote(ctx context.Context, platform resolve.Platform, productID string) (string, error) {
	const sql = `
select coalesce(overall_comment, '')
from product_notes
where product_id = $1 and platform = $2
limit 1
`
	note, err := repokit.One(ctx, r.q, func(row repokit.Row) (string, error) {
		var n string
		return n, row.Scan(&n)
	}, sql, productID, string(platform))
	if err != nil {
		if perr.IsNoRows(err) {
			return "", nil
		}
		return "", perr.FromPostgres(err, "get product note")
	}
	return note, nil
}

func (r *queries) BackfillName(ctx context.Context, platform resolve.Platform, productID, title string) error {
	// only rows whose name is empty or a placeholder equal to the id
	const sql = `
update reviews
set product_name = $3
where product_id = $1 and platform = $2
and (product_name is null or trim(product_name) = '' or lower(product_name) = lower($1))
`
	if _, err := r.q.Exec(ctx, sql, productID, string(platform), title); err != nil {
		return perr.FromPostgres(err, "backfill product name")
	}
	return nil
}

func (r *queries) BackfillNames(ctx context.Context, platform resolve.Platform, productID string, names []string) error {
	const sql = `
update reviews
set performer_names = $3
where product_id = $1 and platform = $2
and (performer_names is null or array_length(performer_names, 1) is null)
`
	if _, err := r.q.Exec(ctx, sql, productID, string(platform), names); err != nil {
		return perr.FromPostgres(err, "backfill performer names")
	}
	return nil
}

func (r *queries) BotPostedSince(ctx context.Context, since time.Time) (bool, error) {
	const sql = `
select exists (
  select 1 from reviews
  where author = $1 and created_at >= $2
)
`
	posted, err := repokit.Scalar[bool](ctx, r.q, sql, domain.AuthorBot, since)
	if err != nil {
		return false, perr.FromPostgres(err, "check bot hour")
	}
	return posted, nil
}

func (r *queries) HasHumanComment(ctx context.Context, platform resolve.Platform, productID string) (bool, error) {
	const sql = `
select exists (
  select 1 from reviews
  where product_id = $1 and platform = $2
  and author = $3
  and comment is not null and length(trim(comment)) > 0
)
`
	has, err := repokit.Scalar[bool](ctx, r.q, sql, productID, string(platform), domain.AuthorUser)
	if err != nil {
		return false, perr.FromPostgres(err, "check human comments")
	}
	return has, nil
}

const aggCols = `
r.product_id,
r.platform,
coalesce(max(r.product_name), r.product_id) as product_name,
round(avg(r.score)::numeric, 2)::float8 as average,
percentile_cont(0.5) within group (order by r.score)::float8 as median,
count(*)::int as total,
max(r.created_at) as last_created_at
`

func (r *queries) Search(ctx context.Context, like string, limit int) ([]domain.ProductAgg, error) {
	const sql = `
select ` + aggCols + `,
(
  select coalesce(array_agg(distinct t), '{}')
  from reviews r2, unnest(coalesce(r2.tags, '{}')) as t
  where r2.product_id = r.product_id and r2.platform = r.platform
) as tags,
(
  select coalesce(array_agg(distinct r2.cosplay_character), '{}')
  from reviews r2
  where r2.product_id = r.product_id and r2.platform = r.platform
  and r2.cosplay_character is not null
) as characters
from reviews r
where r.product_id ilike $1
or coalesce(r.product_name, '') ilike $1
or r.comment ilike $1
or exists (
  select 1 from unnest(coalesce(r.tags, '{}')) as t where t ilike $1
)
group by r.product_id, r.platform
order by total desc, last_created_at desc
limit $2
`
	out, err := repokit.Many(ctx, r.q, func(row repokit.Row) (domain.ProductAgg, error) {
		var a domain.ProductAgg
		err := row.Scan(
			&a.ProductID, &a.Platform, &a.ProductName, &a.Average, &a.Median,
			&a.Total, &a.LastCreatedAt, &a.Tags, &a.Characters,
		)
		return a, err
	}, sql, like, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "search products")
	}
	return out, nil
}

func (r *queries) Latest(ctx context.Context, limit int) ([]domain.Review, error) {
	const sql = `
select ` + reviewCols + `
from reviews
order by created_at desc, id desc
limit $1
`
	out, err := repokit.Many(ctx, r.q, scanReview, sql, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list latest reviews")
	}
	return out, nil
}

func (r *queries) TopProducts(ctx context.Context, limit int) ([]domain.ProductAgg, error) {
	const sql = `
select ` + aggCols + `
from reviews r
group by r.product_id, r.platform
order by total desc, average desc, last_created_at desc
limit $1
`
	out, err := repokit.Many(ctx, r.q, func(row repokit.Row) (domain.ProductAgg, error) {
		var a domain.ProductAgg
		err := row.Scan(
			&a.ProductID, &a.Platform, &a.ProductName, &a.Average, &a.Median,
			&a.Total, &a.LastCreatedAt,
		)
		return a, err
	}, sql, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list top products")
	}
	return out, nil
}

func (r *queries) React(ctx context.Context, reviewID int64, reaction string) error {
	var sql string
	switch reaction {
	case domain.ReactionLike:
		sql = `update reviews set likes_count = likes_count + 1 where id = $1`
	case domain.ReactionHelpful:
		sql = `update reviews set helpful_count = helpful_count + 1 where id = $1`
	default:
		return perr.InvalidArgf("unknown reaction %q", reaction)
	}
	tag, err := r.q.Exec(ctx, sql, reviewID)
	if err != nil {
		return perr.FromPostgres(err, "react to review")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("review %d not found", reviewID)
	}
	return nil
}

func scanReview(row repokit.Row) (domain.Review, error) {
	var rv domain.Review
	err := row.Scan(
		&rv.ID, &rv.ProductID, &rv.Platform, &rv.ProductName, &rv.SourceURL,
		&rv.PerformerNames, &rv.CosplayCharacter, &rv.Author, &rv.Score, &rv.Comment,
		&rv.Tags, &rv.LikesCount, &rv.HelpfulCount, &rv.CreatedAt,
	)
	return rv, err
}
