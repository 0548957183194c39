//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"reviewnexus/internal/core/resolve"
	"reviewnexus/internal/platform/store"
	"reviewnexus/internal/platform/store/schema"
	"reviewnexus/internal/services/api/review/domain"
)

func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func openRepo(t *testing.T, ctx context.Context, dsn string) (Repo, func()) {
	t.Helper()

	st, err := store.Open(ctx, store.Config{
		AppName: "reviewnexus-repo-integration",
		PG: store.PGConfig{
			Enabled:        true,
			URL:            dsn,
			MaxConns:       2,
			ConnectRetries: 10,
			PingTimeout:    2 * time.Second,
		},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	if err := schema.NewEnsurer(st.PG).Ensure(ctx); err != nil {
		t.Fatalf("schema ensure: %v", err)
	}
	return NewPG().Bind(st.PG), func() { _ = st.Close(context.Background()) }
}

func strp(s string) *string { return &s }

func TestRepo_InsertListAndReact_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	r, closeStore := openRepo(t, ctx, dsn)
	defer closeStore()

	id, err := r.Insert(ctx, InsertRow{
		ProductID:      "ssis999",
		Platform:       resolve.PlatformFanza,
		ProductName:    strp("Integration Title"),
		SourceURL:      strp("https://video.dmm.co.jp/av/content/?id=ssis999"),
		PerformerNames: []string{"山田花子"},
		Author:         domain.AuthorUser,
		Score:          88,
		Comment:        strp("solid"),
		Tags:           []string{"巨乳"},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a generated id")
	}

	if _, err := r.Insert(ctx, InsertRow{
		ProductID: "ssis999",
		Platform:  resolve.PlatformFanza,
		Author:    domain.AuthorBot,
		Score:     50,
	}); err != nil {
		t.Fatalf("insert bot row: %v", err)
	}

	rows, err := r.ListByProduct(ctx, resolve.PlatformFanza, "ssis999")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	// newest first
	if rows[0].Author != domain.AuthorBot {
		t.Fatalf("ordering is wrong, first author %q", rows[0].Author)
	}
	if got := rows[1].PerformerNames; len(got) != 1 || got[0] != "山田花子" {
		t.Fatalf("performer names round trip failed: %v", got)
	}

	if err := r.React(ctx, id, domain.ReactionLike); err != nil {
		t.Fatalf("react: %v", err)
	}
	if err := r.React(ctx, 999999, domain.ReactionLike); err == nil {
		t.Fatal("reacting to a missing review should fail")
	}

	rows, err = r.ListByProduct(ctx, resolve.PlatformFanza, "ssis999")
	if err != nil {
		t.Fatalf("list after react: %v", err)
	}
	if rows[1].LikesCount != 1 {
		t.Fatalf("want likes_count 1, got %d", rows[1].LikesCount)
	}
}

func TestRepo_NotesAndBotChecks_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	r, closeStore := openRepo(t, ctx, dsn)
	defer closeStore()

	if note, err := r.GetNote(ctx, resolve.PlatformFantia, "12345"); err != nil || note != "" {
		t.Fatalf("missing note should read empty, got %q err %v", note, err)
	}
	if err := r.UpsertNote(ctx, resolve.PlatformFantia, "12345", "first"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := r.UpsertNote(ctx, resolve.PlatformFantia, "12345", "second"); err != nil {
		t.Fatalf("upsert overwrite: %v", err)
	}
	if note, err := r.GetNote(ctx, resolve.PlatformFantia, "12345"); err != nil || note != "second" {
		t.Fatalf("want %q, got %q err %v", "second", note, err)
	}

	posted, err := r.BotPostedSince(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("bot posted check: %v", err)
	}
	if posted {
		t.Fatal("no bot rows yet")
	}
	if _, err := r.Insert(ctx, InsertRow{
		ProductID: "ipx001", Platform: resolve.PlatformFanza,
		Author: domain.AuthorBot, Score: 40,
	}); err != nil {
		t.Fatalf("insert bot: %v", err)
	}
	posted, err = r.BotPostedSince(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("bot posted recheck: %v", err)
	}
	if !posted {
		t.Fatal("bot row should be visible")
	}

	has, err := r.HasHumanComment(ctx, resolve.PlatformFanza, "ipx001")
	if err != nil {
		t.Fatalf("human comment check: %v", err)
	}
	if has {
		t.Fatal("bot comment must not count as a human comment")
	}
}

func TestRepo_SearchAndAggregates_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	r, closeStore := openRepo(t, ctx, dsn)
	defer closeStore()

	for _, score := range []int{60, 80, 100} {
		if _, err := r.Insert(ctx, InsertRow{
			ProductID:   "midv777",
			Platform:    resolve.PlatformFanza,
			ProductName: strp("検索対象の作品"),
			Author:      domain.AuthorUser,
			Score:       score,
			Tags:        []string{"コスプレ"},
		}); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}

	aggs, err := r.Search(ctx, "%midv%", 24)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(aggs) != 1 {
		t.Fatalf("want 1 group, got %d", len(aggs))
	}
	a := aggs[0]
	if a.Total != 3 {
		t.Fatalf("want total 3, got %d", a.Total)
	}
	if a.Average == nil || *a.Average != 80 {
		t.Fatalf("want average 80, got %v", a.Average)
	}
	if a.Median == nil || *a.Median != 80 {
		t.Fatalf("want median 80, got %v", a.Median)
	}
	if len(a.Tags) != 1 || a.Tags[0] != "コスプレ" {
		t.Fatalf("group tags round trip failed: %v", a.Tags)
	}

	// tag text also matches the ILIKE needle
	aggs, err = r.Search(ctx, "%コスプレ%", 24)
	if err != nil {
		t.Fatalf("tag search: %v", err)
	}
	if len(aggs) != 1 {
		t.Fatalf("tag search want 1 group, got %d", len(aggs))
	}

	top, err := r.TopProducts(ctx, 10)
	if err != nil {
		t.Fatalf("top products: %v", err)
	}
	if len(top) != 1 || top[0].ProductID != "midv777" {
		t.Fatalf("unexpected top products: %+v", top)
	}

	if err := r.BackfillName(ctx, resolve.PlatformFanza, "midv777", "should not apply"); err != nil {
		t.Fatalf("backfill: %v", err)
	}
	rows, err := r.ListByProduct(ctx, resolve.PlatformFanza, "midv777")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, rv := range rows {
		if rv.ProductName == nil || *rv.ProductName != "検索対象の作品" {
			t.Fatalf("backfill must not touch rows with a real name: %+v", rv.ProductName)
		}
	}
}
