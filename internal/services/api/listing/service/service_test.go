package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"reviewnexus/internal/modkit/repokit"
	perr "reviewnexus/internal/platform/errors"
	"reviewnexus/internal/services/api/listing/domain"
	"reviewnexus/internal/services/api/listing/repo"
)

// fakeRepo records replace calls and serves canned snapshots
type fakeRepo struct {
	stored   []domain.Snapshot
	replaced int
	failAll  bool

	lastRecentLimit int
}

func (f *fakeRepo) ReplaceAll(ctx context.Context, items []domain.Snapshot) error {
	if f.failAll {
		return perr.DBf("connection refused")
	}
	f.stored = append([]domain.Snapshot(nil), items...)
	f.replaced++
	return nil
}

func (f *fakeRepo) Recent(ctx context.Context, limit int) ([]domain.Snapshot, error) {
	if f.failAll {
		return nil, perr.DBf("connection refused")
	}
	f.lastRecentLimit = limit
	if limit > len(f.stored) {
		limit = len(f.stored)
	}
	return f.stored[:limit], nil
}

type fakeBinder struct{ r repo.Repo }

func (b fakeBinder) Bind(repokit.Queryer) repo.Repo { return b.r }

// txDB runs the tx body against itself, the fake repo never touches sql
type txDB struct{}

func (txDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) {
	panic("unused")
}
func (txDB) Query(context.Context, string, ...any) (repokit.Rows, error) { panic("unused") }
func (txDB) QueryRow(context.Context, string, ...any) repokit.Row        { panic("unused") }
func (d txDB) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error {
	return fn(d)
}

func newTestSvc(t *testing.T, fr *fakeRepo) *Svc {
	t.Helper()
	return New(txDB{}, fakeBinder{r: fr}, zerolog.Nop())
}

func snap(id, title string) domain.Snapshot {
	return domain.Snapshot{ProductID: id, Title: title, FetchedAt: time.Now()}
}

func TestReplace_CleansAndDedupes(t *testing.T) {
	fr := &fakeRepo{}
	s := newTestSvc(t, fr)

	res, err := s.Replace(context.Background(), []domain.Snapshot{
		snap("  SSIS001 ", "  First  "),
		snap("ssis001", "duplicate of the first"),
		snap("", "no id"),
		snap("midv002", "   "),
		snap("ipx001", "Third"),
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !res.OK || res.Count != 2 {
		t.Fatalf("want 2 kept, got %+v", res)
	}
	if fr.stored[0].ProductID != "ssis001" || fr.stored[0].Title != "First" {
		t.Fatalf("normalization failed: %+v", fr.stored[0])
	}
	if fr.stored[1].ProductID != "ipx001" {
		t.Fatalf("dedupe kept the wrong rows: %+v", fr.stored)
	}
}

func TestReplace_EmptyInputClearsTable(t *testing.T) {
	fr := &fakeRepo{stored: []domain.Snapshot{snap("old", "Old")}}
	s := newTestSvc(t, fr)

	res, err := s.Replace(context.Background(), nil)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !res.OK || res.Count != 0 {
		t.Fatalf("want empty OK result, got %+v", res)
	}
	if len(fr.stored) != 0 || fr.replaced != 1 {
		t.Fatalf("table should be replaced with nothing: %+v", fr.stored)
	}
}

func TestReplace_StoreFailureSurfaces(t *testing.T) {
	fr := &fakeRepo{failAll: true}
	s := newTestSvc(t, fr)

	if _, err := s.Replace(context.Background(), []domain.Snapshot{snap("a", "A")}); err == nil {
		t.Fatal("expected the store error to surface")
	}
}

func TestRecent_ClampsLimit(t *testing.T) {
	fr := &fakeRepo{}
	for i := 0; i < 5; i++ {
		fr.stored = append(fr.stored, snap("p", "t"))
	}
	s := newTestSvc(t, fr)

	tests := []struct {
		in   int
		want int
	}{
		{0, maxRecent},
		{-1, maxRecent},
		{3, 3},
		{maxRecent + 1, maxRecent},
	}
	for _, tt := range tests {
		if _, err := s.Recent(context.Background(), tt.in); err != nil {
			t.Fatalf("recent(%d): %v", tt.in, err)
		}
		if fr.lastRecentLimit != tt.want {
			t.Fatalf("recent(%d) hit repo with limit %d, want %d", tt.in, fr.lastRecentLimit, tt.want)
		}
	}
}

func TestRecent_NeverReturnsNil(t *testing.T) {
	fr := &fakeRepo{}
	s := newTestSvc(t, fr)

	out, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if out == nil {
		t.Fatal("empty result must be a non nil slice")
	}
}
