package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"reviewnexus/internal/core/resolve"
	"reviewnexus/internal/core/scrape"
	"reviewnexus/internal/modkit/repokit"
	perr "reviewnexus/internal/platform/errors"
	"reviewnexus/internal/platform/testkit"
	"reviewnexus/internal/services/api/review/domain"
	"reviewnexus/internal/services/api/review/repo"
)

// fakeRepo is an in-memory stand-in for the postgres repo
type fakeRepo struct {
	rows    []storedRow
	notes   map[string]string
	failAll bool
	nextID  int64
	clock   func() time.Time
}

type storedRow struct {
	repo.InsertRow
	id        int64
	createdAt time.Time
	likes     int
	helpful   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{notes: map[string]string{}, clock: time.Now}
}

var errDown = perr.DBf("connection refused")

func (f *fakeRepo) Insert(_ context.Context, row repo.InsertRow) (int64, error) {
	if f.failAll {
		return 0, errDown
	}
	f.nextID++
	f.rows = append(f.rows, storedRow{InsertRow: row, id: f.nextID, createdAt: f.clock()})
	return f.nextID, nil
}

func (f *fakeRepo) ListByProduct(_ context.Context, platform resolve.Platform, productID string) ([]domain.Review, error) {
	if f.failAll {
		return nil, errDown
	}
	var out []domain.Review
	for _, r := range f.rows {
		if r.Platform == platform && r.ProductID == productID {
			out = append(out, toReview(r))
		}
	}
	return out, nil
}

func (f *fakeRepo) UpsertNote(_ context.Context, platform resolve.Platform, productID, comment string) error {
	if f.failAll {
		return errDown
	}
	f.notes[string(platform)+"/"+productID] = comment
	return nil
}

func (f *fakeRepo) GetNote(_ context.Context, platform resolve.Platform, productID string) (string, error) {
	return f.notes[string(platform)+"/"+productID], nil
}

func (f *fakeRepo) BackfillName(_ context.Context, _ resolve.Platform, _ string, _ string) error {
	return nil
}

func (f *fakeRepo) BackfillNames(_ context.Context, _ resolve.Platform, _ string, _ []string) error {
	return nil
}

func (f *fakeRepo) BotPostedSince(_ context.Context, since time.Time) (bool, error) {
	if f.failAll {
		return false, errDown
	}
	for _, r := range f.rows {
		if r.Author == domain.AuthorBot && !r.createdAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) HasHumanComment(_ context.Context, platform resolve.Platform, productID string) (bool, error) {
	for _, r := range f.rows {
		if r.Platform == platform && r.ProductID == productID &&
			r.Author == domain.AuthorUser && r.Comment != nil && strings.TrimSpace(*r.Comment) != "" {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Search(_ context.Context, _ string, _ int) ([]domain.ProductAgg, error) {
	if f.failAll {
		return nil, errDown
	}
	return nil, nil
}

func (f *fakeRepo) Latest(_ context.Context, _ int) ([]domain.Review, error) {
	if f.failAll {
		return nil, errDown
	}
	var out []domain.Review
	for _, r := range f.rows {
		out = append(out, toReview(r))
	}
	return out, nil
}

func (f *fakeRepo) TopProducts(_ context.Context, _ int) ([]domain.ProductAgg, error) {
	return nil, nil
}

func (f *fakeRepo) React(_ context.Context, reviewID int64, reaction string) error {
	for i := range f.rows {
		if f.rows[i].id == reviewID {
			if reaction == domain.ReactionLike {
				f.rows[i].likes++
			} else {
				f.rows[i].helpful++
			}
			return nil
		}
	}
	return perr.NotFoundf("review %d not found", reviewID)
}

func toReview(r storedRow) domain.Review {
	return domain.Review{
		ID:             r.id,
		ProductID:      r.ProductID,
		Platform:       r.Platform,
		ProductName:    r.ProductName,
		SourceURL:      r.SourceURL,
		PerformerNames: r.PerformerNames,
		Author:         r.Author,
		Score:          r.Score,
		Comment:        r.Comment,
		Tags:           r.Tags,
		CreatedAt:      r.createdAt,
	}
}

type fakeBinder struct{ r repo.Repo }

func (b fakeBinder) Bind(repokit.Queryer) repo.Repo { return b.r }

// nopDB satisfies the TxRunner seam, the fake repo ignores it
type nopDB struct{}

func (nopDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) {
	panic("unused")
}
func (nopDB) Query(context.Context, string, ...any) (repokit.Rows, error) { panic("unused") }
func (nopDB) QueryRow(context.Context, string, ...any) repokit.Row        { panic("unused") }
func (nopDB) Tx(context.Context, func(q repokit.Queryer) error) error     { panic("unused") }

type fakeScraper struct{ meta scrape.Metadata }

func (f fakeScraper) ResolveMetadata(context.Context, resolve.Platform, string, []string) scrape.Metadata {
	return f.meta
}

func newTestSvc(t *testing.T, fr *fakeRepo) *Svc {
	t.Helper()
	s := New(nopDB{}, fakeBinder{r: fr}, fakeScraper{}, nil, zerolog.Nop(), Config{
		DatabaseConfigured: true,
	})
	fixed := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	fr.clock = func() time.Time { return fixed }
	s.now = fr.clock
	s.randInt = func(n int) int { return 0 }
	return s
}

func TestSubmit_ClampsScore(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{150, 100},
		{-5, 0},
		{72, 72},
	}
	for _, tt := range tests {
		fr := newFakeRepo()
		s := newTestSvc(t, fr)
		res, err := s.Submit(context.Background(), domain.SubmitInput{
			URL:         "https://video.dmm.co.jp/av/content/?id=ssis001",
			Score:       tt.in,
			ProductName: "SSIS-001",
		})
		if err != nil || !res.OK {
			t.Fatalf("submit failed: %+v err=%v", res, err)
		}
		if got := fr.rows[0].Score; got != tt.want {
			t.Fatalf("score %d persisted as %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSubmit_UnparseableURLWritesNothing(t *testing.T) {
	fr := newFakeRepo()
	s := newTestSvc(t, fr)
	res, err := s.Submit(context.Background(), domain.SubmitInput{URL: "not a url at all", Score: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK {
		t.Fatal("expected ok=false for unparseable url")
	}
	if len(fr.rows) != 0 {
		t.Fatalf("store changed on parse failure: %d rows", len(fr.rows))
	}
}

func TestSubmit_ExternalRequiresName(t *testing.T) {
	fr := newFakeRepo()
	s := newTestSvc(t, fr)

	res, _ := s.Submit(context.Background(), domain.SubmitInput{
		URL:   "https://example.com/some/product",
		Score: 50,
	})
	if res.OK || len(fr.rows) != 0 {
		t.Fatalf("external submission without a name must not persist: %+v", res)
	}

	res, _ = s.Submit(context.Background(), domain.SubmitInput{
		URL:         "https://example.com/some/product",
		Score:       50,
		ProductName: "Some Product",
	})
	if !res.OK || len(fr.rows) != 1 {
		t.Fatalf("named external submission should persist: %+v", res)
	}
	if res.Parsed == nil || res.Parsed.Platform != resolve.PlatformExternal {
		t.Fatalf("parsed key missing or wrong platform: %+v", res.Parsed)
	}
}

func TestSubmit_TagsIntersectedAndCapped(t *testing.T) {
	fr := newFakeRepo()
	s := newTestSvc(t, fr)
	res, _ := s.Submit(context.Background(), domain.SubmitInput{
		URL:         "https://video.dmm.co.jp/av/content/?id=ssis001",
		Score:       80,
		ProductName: "SSIS-001",
		Tags:        []string{"コスプレ", "madeup", "SM", "熟女", "巨乳", "素人"},
	})
	if !res.OK {
		t.Fatalf("submit failed: %+v", res)
	}
	got := fr.rows[0].Tags
	want := []string{"コスプレ", "SM", "熟女", "巨乳"}
	if len(got) != len(want) {
		t.Fatalf("tags=%v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tags=%v want %v", got, want)
		}
	}
}

func TestSubmit_CosplayCharacterGatedByTag(t *testing.T) {
	fr := newFakeRepo()
	s := newTestSvc(t, fr)

	_, _ = s.Submit(context.Background(), domain.SubmitInput{
		URL:              "https://video.dmm.co.jp/av/content/?id=ssis001",
		Score:            80,
		ProductName:      "SSIS-001",
		Tags:             []string{"SM"},
		CosplayCharacter: "キャラA",
	})
	if fr.rows[0].CosplayCharacter != nil {
		t.Fatal("character must be dropped without the cosplay tag")
	}

	_, _ = s.Submit(context.Background(), domain.SubmitInput{
		URL:              "https://video.dmm.co.jp/av/content/?id=ssis001",
		Score:            80,
		ProductName:      "SSIS-001",
		Tags:             []string{"コスプレ"},
		CosplayCharacter: "キャラA",
	})
	if fr.rows[1].CosplayCharacter == nil || *fr.rows[1].CosplayCharacter != "キャラA" {
		t.Fatalf("character not kept with cosplay tag: %+v", fr.rows[1].CosplayCharacter)
	}
}

func TestPostBotReview_HourlyIdempotent(t *testing.T) {
	fr := newFakeRepo()
	s := newTestSvc(t, fr)

	first, err := s.PostBotReview(context.Background())
	if err != nil || !first.OK || first.Skipped {
		t.Fatalf("first bot post should insert: %+v err=%v", first, err)
	}
	second, err := s.PostBotReview(context.Background())
	if err != nil || !second.OK || !second.Skipped {
		t.Fatalf("second bot post in the same hour should skip: %+v err=%v", second, err)
	}

	bots := 0
	for _, r := range fr.rows {
		if r.Author == domain.AuthorBot {
			bots++
		}
	}
	if bots != 1 {
		t.Fatalf("persisted %d bot reviews, want exactly 1", bots)
	}
}

func TestPostBotReview_SkipsHumanCoveredCandidates(t *testing.T) {
	fr := newFakeRepo()
	s := newTestSvc(t, fr)

	// cover every candidate with a real commented review
	for _, c := range domain.BotCandidates {
		comment := "covered"
		fr.rows = append(fr.rows, storedRow{InsertRow: repo.InsertRow{
			ProductID: c.ProductID,
			Platform:  c.Platform,
			Author:    domain.AuthorUser,
			Comment:   &comment,
		}})
	}

	res, err := s.PostBotReview(context.Background())
	if err != nil || !res.OK || !res.Skipped {
		t.Fatalf("fully covered candidate set should skip: %+v err=%v", res, err)
	}
}

func TestSampleTags(t *testing.T) {
	fr := newFakeRepo()
	s := newTestSvc(t, fr)
	s.randInt = func(n int) int { return n - 1 }

	for _, n := range []int{2, 3, 4} {
		got := s.sampleTags(n)
		if len(got) != n {
			t.Fatalf("sampleTags(%d) returned %d tags", n, len(got))
		}
		seen := map[string]struct{}{}
		for _, tg := range got {
			if _, dup := seen[tg]; dup {
				t.Fatalf("duplicate tag in sample: %v", got)
			}
			seen[tg] = struct{}{}
			if !containsFold(domain.TagVocabulary, tg) {
				t.Fatalf("tag %q not in vocabulary", tg)
			}
		}
	}
}

func TestProductPage_DegradesOnStoreFailure(t *testing.T) {
	fr := newFakeRepo()
	fr.failAll = true
	s := newTestSvc(t, fr)

	view, err := s.ProductPage(context.Background(), resolve.PlatformFanza, "ssis001")
	if err != nil {
		t.Fatalf("degraded page must not error: %v", err)
	}
	if view.OK {
		t.Fatal("expected ok=false")
	}
	if view.Error == "" {
		t.Fatal("expected a human-readable error message")
	}
	if len(view.Distribution) != 10 {
		t.Fatalf("degraded page still needs all 10 buckets, got %d", len(view.Distribution))
	}
	if view.CanonicalURL == "" || view.Reviews == nil || view.SourceURLs == nil {
		t.Fatalf("degraded page must stay renderable: %+v", view)
	}
}

func TestProductPage_SummaryAndOrdering(t *testing.T) {
	fr := newFakeRepo()
	s := newTestSvc(t, fr)

	for _, score := range []int{95, 100} {
		_, _ = s.Submit(context.Background(), domain.SubmitInput{
			URL:         "https://video.dmm.co.jp/av/content/?id=ssis001",
			Score:       score,
			ProductName: "SSIS-001",
			Comment:     "great",
		})
	}

	view, err := s.ProductPage(context.Background(), resolve.PlatformFanza, "ssis001")
	if err != nil || !view.OK {
		t.Fatalf("page load failed: %+v err=%v", view, err)
	}
	if view.Summary.Total != 2 {
		t.Fatalf("total=%d want 2", view.Summary.Total)
	}
	if view.Summary.Average == nil || *view.Summary.Average != 97.5 {
		t.Fatalf("average=%v want 97.5", view.Summary.Average)
	}
	if view.ProductName != "SSIS-001" {
		t.Fatalf("product name=%q", view.ProductName)
	}
}

func TestSaveNoteAndReact(t *testing.T) {
	fr := newFakeRepo()
	s := newTestSvc(t, fr)

	res, _ := s.SaveNote(context.Background(), resolve.PlatformFanza, "ssis001", "overall solid")
	if !res.OK {
		t.Fatalf("note save failed: %+v", res)
	}
	if fr.notes["fanza/ssis001"] != "overall solid" {
		t.Fatalf("note not stored: %v", fr.notes)
	}

	bad, _ := s.SaveNote(context.Background(), resolve.PlatformExternal, "ext-abc", "x")
	if bad.OK {
		t.Fatal("external platform must not accept notes")
	}

	_, _ = s.Submit(context.Background(), domain.SubmitInput{
		URL: "https://video.dmm.co.jp/av/content/?id=ssis001", Score: 50, ProductName: "SSIS-001",
	})
	rres, err := s.React(context.Background(), fr.rows[0].id, domain.ReactionLike)
	if err != nil || !rres.OK {
		t.Fatalf("react failed: %+v err=%v", rres, err)
	}
	if fr.rows[0].likes != 1 {
		t.Fatalf("likes=%d want 1", fr.rows[0].likes)
	}

	if _, err := s.React(context.Background(), 9999, domain.ReactionLike); err == nil {
		t.Fatal("reacting to a missing review should error")
	}
}

func TestNew_RequiresSeams(t *testing.T) {
	testkit.MustPanic(t, func() {
		New(nil, fakeBinder{r: newFakeRepo()}, fakeScraper{}, nil, zerolog.Nop(), Config{})
	})
	testkit.MustPanic(t, func() {
		New(nopDB{}, nil, fakeScraper{}, nil, zerolog.Nop(), Config{})
	})
	testkit.MustNotPanic(t, func() {
		New(nopDB{}, fakeBinder{r: newFakeRepo()}, fakeScraper{}, nil, zerolog.Nop(), Config{})
	})
}
