// Package service contains the review ingestion and read workflows
package service

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"reviewnexus/internal/core/resolve"
	"reviewnexus/internal/core/scoring"
	"reviewnexus/internal/core/scrape"
	"reviewnexus/internal/modkit/repokit"
	perr "reviewnexus/internal/platform/errors"
	"reviewnexus/internal/platform/logger"
	pstrings "reviewnexus/internal/platform/strings"
	"reviewnexus/internal/services/api/review/domain"
	"reviewnexus/internal/services/api/review/repo"
)

// Config for the review service
type Config struct {
	// TagLimit caps the tag set stored per submission
	TagLimit int
	// SourceURLLimit caps scrape candidates collected from stored rows
	SourceURLLimit int
	// DatabaseConfigured distinguishes the missing-settings message from
	// the configured-but-failing one
	DatabaseConfigured bool
}

// Service defines the review service contract
type Service interface {
	domain.ReviewPort
}

// Svc implements the review service
type Svc struct {
	Repo    repo.Repo
	binder  repokit.Binder[repo.Repo]
	db      repokit.TxRunner
	scraper domain.MetadataPort
	listing domain.ListingReaderPort
	log     logger.Logger
	cfg     Config

	// seams for deterministic tests
	now     func() time.Time
	randInt func(n int) int
}

// New constructs a review service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[repo.Repo],
	scraper domain.MetadataPort,
	listing domain.ListingReaderPort,
	log logger.Logger,
	cfg Config,
) *Svc {
	if db == nil {
		panic("review.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("review.Service requires a non nil Repo binder")
	}
	if cfg.TagLimit <= 0 {
		cfg.TagLimit = 4
	}
	if cfg.SourceURLLimit <= 0 {
		cfg.SourceURLLimit = 20
	}
	return &Svc{
		Repo:    binder.Bind(db),
		binder:  binder,
		db:      db,
		scraper: scraper,
		listing: listing,
		log:     log,
		cfg:     cfg,
		now:     time.Now,
		randInt: rand.Intn,
	}
}

// storageMessage converts a store failure into the user-facing retry message
func (s *Svc) storageMessage(err error) string {
	if !s.cfg.DatabaseConfigured {
		return "Database settings are missing. Set PG_URL."
	}
	if perr.IsUnreachable(err) {
		return "Database connection failed. Check URL and permissions."
	}
	return "Database request failed. Try again later."
}

// Submit resolves the pasted URL and persists one immutable review row
func (s *Svc) Submit(ctx context.Context, in domain.SubmitInput) (domain.SubmitResult, error) {
	p, ok := resolve.Resolve(in.URL)
	if !ok {
		return domain.SubmitResult{OK: false, Message: "Could not parse product from URL."}, nil
	}

	cleanName := strings.TrimSpace(in.ProductName)
	if p.Platform == resolve.PlatformExternal && cleanName == "" {
		return domain.SubmitResult{
			OK:      false,
			Message: "External URLs need an explicit product name.",
			Parsed:  &domain.Parsed{ProductID: p.ID, Platform: p.Platform},
		}, nil
	}

	score := clampScore(in.Score)
	comment := strings.TrimSpace(in.Comment)
	tags := intersectTags(in.Tags, s.cfg.TagLimit)
	performers := scrape.NormalizeNames(splitPerformers(in.PerformerNames))

	// the character field only means something on cosplay-tagged reviews
	character := strings.TrimSpace(in.CosplayCharacter)
	if !containsFold(tags, domain.TagCosplay) {
		character = ""
	}

	source := strings.TrimSpace(in.URL)
	if source == "" {
		source = resolve.CanonicalURL(p.Platform, p.ID)
	}

	productName := cleanName
	if productName == "" && p.Platform != resolve.PlatformExternal {
		meta := s.resolveMetadata(ctx, p.Platform, p.ID, []string{source, resolve.CanonicalURL(p.Platform, p.ID)})
		productName = meta.Title
		if len(performers) == 0 {
			performers = meta.PerformerNames
		}
	}
	if productName == "" {
		productName = p.ID
	}

	row := repo.InsertRow{
		ProductID:        p.ID,
		Platform:         p.Platform,
		ProductName:      pstrings.Ptr(productName),
		SourceURL:        pstrings.Ptr(source),
		PerformerNames:   emptyIfNil(performers),
		CosplayCharacter: pstrings.Ptr(character),
		Author:           domain.AuthorUser,
		Score:            score,
		Comment:          pstrings.Ptr(comment),
		Tags:             emptyIfNil(tags),
	}
	if _, err := s.Repo.Insert(ctx, row); err != nil {
		s.log.Error().Err(err).Str("product_id", p.ID).Msg("review insert failed")
		return domain.SubmitResult{OK: false, Message: s.storageMessage(err)}, nil
	}

	return domain.SubmitResult{
		OK:      true,
		Message: "Posted.",
		Parsed:  &domain.Parsed{ProductID: p.ID, Platform: p.Platform},
	}, nil
}

// ProductPage loads all reviews for a key and computes the renderable view.
// Store failures degrade to an empty but complete shape
func (s *Svc) ProductPage(ctx context.Context, platform resolve.Platform, productID string) (domain.ProductView, error) {
	view := domain.ProductView{
		Platform:       platform,
		ProductID:      productID,
		ProductName:    productID,
		CanonicalURL:   resolve.CanonicalURL(platform, productID),
		ImageURL:       resolve.ImageURL(platform, productID),
		SourceURLs:     []string{},
		PerformerNames: []string{},
		Summary:        scoring.Summarize(nil),
		Distribution:   scoring.Distribution(nil),
		Reviews:        []domain.Review{},
	}

	reviews, err := s.Repo.ListByProduct(ctx, platform, productID)
	if err != nil {
		s.log.Error().Err(err).Str("product_id", productID).Msg("product page load failed")
		view.Error = s.storageMessage(err)
		return view, nil
	}
	view.OK = true
	view.Reviews = reviews

	scores := make([]int, 0, len(reviews))
	var names []string
	seenURL := make(map[string]struct{})
	for _, rv := range reviews {
		scores = append(scores, rv.Score)
		names = append(names, rv.PerformerNames...)
		if rv.SourceURL != nil && *rv.SourceURL != "" {
			if _, dup := seenURL[*rv.SourceURL]; !dup && len(view.SourceURLs) < s.cfg.SourceURLLimit {
				seenURL[*rv.SourceURL] = struct{}{}
				view.SourceURLs = append(view.SourceURLs, *rv.SourceURL)
			}
		}
		if rv.ProductName != nil && strings.TrimSpace(*rv.ProductName) != "" && view.ProductName == productID {
			view.ProductName = strings.TrimSpace(*rv.ProductName)
		}
	}
	view.Summary = scoring.Summarize(scores)
	view.Distribution = scoring.Distribution(scores)
	view.PerformerNames = scrape.NormalizeNames(names)

	if note, err := s.Repo.GetNote(ctx, platform, productID); err == nil {
		view.OverallComment = note
	}

	if scoring.ShouldRefreshMetadata(view.ProductName, productID) && refreshEligible(platform, productID) {
		candidates := append([]string{view.CanonicalURL}, view.SourceURLs...)
		meta := s.resolveMetadata(ctx, platform, productID, candidates)
		if meta.Title != "" {
			view.ProductName = meta.Title
			if err := s.Repo.BackfillName(ctx, platform, productID, meta.Title); err != nil {
				s.log.Warn().Err(err).Str("product_id", productID).Msg("name backfill failed")
			}
		}
		if len(view.PerformerNames) == 0 && len(meta.PerformerNames) > 0 {
			view.PerformerNames = meta.PerformerNames
			if err := s.Repo.BackfillNames(ctx, platform, productID, meta.PerformerNames); err != nil {
				s.log.Warn().Err(err).Str("product_id", productID).Msg("performer backfill failed")
			}
		}
	}

	return view, nil
}

// Search resolves URL-shaped queries to one product, otherwise runs a
// grouped substring match
func (s *Svc) Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error) {
	query := strings.TrimSpace(q.Query)
	out := domain.SearchResult{OK: true, Query: query, Items: []domain.ProductAgg{}}
	if query == "" && len(q.Tags) == 0 && q.Character == "" {
		return out, nil
	}

	if p, ok := resolve.Resolve(query); ok {
		selected, _ := s.ProductPage(ctx, p.Platform, p.ID)
		out.Parsed = &domain.Parsed{ProductID: p.ID, Platform: p.Platform}
		out.Selected = &selected
		out.OK = selected.OK
		out.Error = selected.Error
		return out, nil
	}

	like := "%" + query + "%"
	items, err := s.Repo.Search(ctx, like, 24)
	if err != nil {
		s.log.Error().Err(err).Str("query", query).Msg("search failed")
		out.OK = false
		out.Error = s.storageMessage(err)
		return out, nil
	}

	// tag and character filters intersect after grouping
	for _, it := range items {
		if !matchesFilters(it, q.Tags, q.Character) {
			continue
		}
		it.ImageURL = resolve.ImageURL(it.Platform, it.ProductID)
		out.Items = append(out.Items, it)
	}
	return out, nil
}

// Home returns the landing page payload
func (s *Svc) Home(ctx context.Context) (domain.HomeView, error) {
	view := domain.HomeView{
		LatestReviews: []domain.Review{},
		HotProducts:   []domain.ProductAgg{},
		Listings:      []domain.ListingItem{},
	}

	latest, err := s.Repo.Latest(ctx, 14)
	if err != nil {
		s.log.Error().Err(err).Msg("home load failed")
		view.Error = s.storageMessage(err)
		return view, nil
	}
	view.OK = true
	view.LatestReviews = latest

	top, err := s.Repo.TopProducts(ctx, 10)
	if err == nil {
		for i := range top {
			top[i].ImageURL = resolve.ImageURL(top[i].Platform, top[i].ProductID)
		}
		view.HotProducts = top
	}

	if s.listing != nil {
		if snaps, err := s.listing.Recent(ctx, 12); err == nil {
			view.Listings = snaps
		}
	}
	return view, nil
}

// SaveNote upserts the per-product overall comment
func (s *Svc) SaveNote(ctx context.Context, platform resolve.Platform, productID, comment string) (domain.NoteResult, error) {
	productID = strings.ToLower(strings.TrimSpace(productID))
	if productID == "" || (platform != resolve.PlatformFanza && platform != resolve.PlatformFantia) {
		return domain.NoteResult{OK: false, Message: "Invalid product target."}, nil
	}
	if err := s.Repo.UpsertNote(ctx, platform, productID, strings.TrimSpace(comment)); err != nil {
		s.log.Error().Err(err).Str("product_id", productID).Msg("note upsert failed")
		return domain.NoteResult{OK: false, Message: s.storageMessage(err)}, nil
	}
	return domain.NoteResult{OK: true, Message: "Saved."}, nil
}

// React bumps one of the reaction counters on a review
func (s *Svc) React(ctx context.Context, reviewID int64, reaction string) (domain.ReactionResult, error) {
	if err := s.Repo.React(ctx, reviewID, reaction); err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) || perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			return domain.ReactionResult{}, err
		}
		s.log.Error().Err(err).Int64("review_id", reviewID).Msg("reaction failed")
		return domain.ReactionResult{OK: false, Message: s.storageMessage(err)}, nil
	}
	return domain.ReactionResult{OK: true}, nil
}

// resolveMetadata guards the scraper seam against a nil port
func (s *Svc) resolveMetadata(ctx context.Context, platform resolve.Platform, productID string, candidates []string) scrape.Metadata {
	if s.scraper == nil {
		return scrape.Metadata{}
	}
	return s.scraper.ResolveMetadata(ctx, platform, productID, candidates)
}

// refreshEligible excludes keys with no usable fetch target
func refreshEligible(platform resolve.Platform, productID string) bool {
	if platform == resolve.PlatformExternal {
		return false
	}
	if platform == resolve.PlatformFanza && isAllDigits(productID) {
		return false
	}
	return true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// intersectTags keeps vocabulary tags in submission order, deduped, capped
func intersectTags(in []string, limit int) []string {
	vocab := make(map[string]struct{}, len(domain.TagVocabulary))
	for _, t := range domain.TagVocabulary {
		vocab[t] = struct{}{}
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, limit)
	for _, raw := range in {
		t := strings.TrimSpace(raw)
		if _, ok := vocab[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}

func splitPerformers(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '、' || r == '/' || r == '・'
	})
}

func containsFold(xs []string, want string) bool {
	for _, x := range xs {
		if strings.EqualFold(x, want) {
			return true
		}
	}
	return false
}

func matchesFilters(it domain.ProductAgg, tags []string, character string) bool {
	for _, t := range tags {
		if !containsFold(it.Tags, strings.TrimSpace(t)) {
			return false
		}
	}
	if c := strings.TrimSpace(character); c != "" && !containsFold(it.Characters, c) {
		return false
	}
	return true
}

func emptyIfNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
