// Package domain defines the types and contracts for the review service
package domain

import (
	"time"

	"reviewnexus/internal/core/resolve"
	"reviewnexus/internal/core/scoring"
)

// Review is one persisted submission. Rows are immutable after insert except
// for metadata backfill and reaction counters
type Review struct {
	ID               int64            `json:"id" example:"42"`
	ProductID        string           `json:"product_id" example:"ssis001"`
	Platform         resolve.Platform `json:"platform" example:"fanza"`
	ProductName      *string          `json:"product_name,omitempty" example:"SSIS-001"`
	SourceURL        *string          `json:"source_url,omitempty" example:"https://video.dmm.co.jp/av/content/?id=ssis001"`
	PerformerNames   []string         `json:"performer_names"`
	CosplayCharacter *string          `json:"cosplay_character,omitempty"`
	Author           string           `json:"author" example:"user"`
	Score            int              `json:"score" example:"95"`
	Comment          *string          `json:"comment,omitempty"`
	Tags             []string         `json:"tags"`
	LikesCount       int              `json:"likes_count" example:"0"`
	HelpfulCount     int              `json:"helpful_count" example:"0"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Authors a review row can carry
const (
	AuthorUser = "user"
	AuthorBot  = "bot"
)

// Reactions a caller can put on a review
const (
	ReactionLike    = "like"
	ReactionHelpful = "helpful"
)

// TagVocabulary is the fixed tag set submissions are intersected with
var TagVocabulary = []string{
	"3P以上", "コスプレ", "SM", "熟女", "レイプ",
	"地雷系", "巨乳", "素人", "企画", "ハメ撮り",
}

// TagCosplay gates the cosplay character field
const TagCosplay = "コスプレ"

// BotCandidate is a product key the bot may seed a review for
type BotCandidate struct {
	Platform  resolve.Platform
	ProductID string
}

// BotCandidates is the fixed product set the hourly bot picks from
var BotCandidates = []BotCandidate{
	{resolve.PlatformFanza, "ssis001"},
	{resolve.PlatformFanza, "midv002"},
	{resolve.PlatformFanza, "sora00368"},
	{resolve.PlatformFanza, "ipx001"},
	{resolve.PlatformFanza, "jul001"},
	{resolve.PlatformFantia, "12345"},
	{resolve.PlatformFantia, "98765"},
	{resolve.PlatformFantia, "774411"},
	{resolve.PlatformFantia, "556677"},
}

// BotComments is the phrase pool bot reviews draw their comment from
var BotComments = []string{
	"BOT: fast pacing and clear concept.",
	"BOT: polarizing, but has strong hooks.",
	"BOT: well-balanced structure overall.",
	"BOT: consistent direction and tone.",
	"BOT: easy to follow for first viewers.",
}

// ProductAgg is a grouped aggregate over one product key
type ProductAgg struct {
	ProductID     string           `json:"product_id" example:"ssis001"`
	Platform      resolve.Platform `json:"platform" example:"fanza"`
	ProductName   string           `json:"product_name" example:"SSIS-001"`
	Average       *float64         `json:"average" example:"72.5"`
	Median        *float64         `json:"median" example:"75"`
	Total         int              `json:"total" example:"4"`
	LastCreatedAt time.Time        `json:"last_created_at"`
	ImageURL      string           `json:"image_url,omitempty"`

	// group-level filter material, not rendered
	Tags       []string `json:"-"`
	Characters []string `json:"-"`
}

// ProductView is the always-renderable product page shape
type ProductView struct {
	OK             bool             `json:"ok"`
	Error          string           `json:"error,omitempty"`
	Platform       resolve.Platform `json:"platform" example:"fanza"`
	ProductID      string           `json:"product_id" example:"ssis001"`
	ProductName    string           `json:"product_name" example:"SSIS-001"`
	CanonicalURL   string           `json:"canonical_url"`
	ImageURL       string           `json:"image_url,omitempty"`
	SourceURLs     []string         `json:"source_urls"`
	PerformerNames []string         `json:"performer_names"`
	OverallComment string           `json:"overall_comment"`
	Summary        scoring.Summary  `json:"summary"`
	Distribution   []scoring.Bucket `json:"distribution"`
	Reviews        []Review         `json:"reviews"`
}

// HomeView is the landing page payload
type HomeView struct {
	OK            bool          `json:"ok"`
	Error         string        `json:"error,omitempty"`
	LatestReviews []Review      `json:"latest_reviews"`
	HotProducts   []ProductAgg  `json:"hot_products"`
	Listings      []ListingItem `json:"listings"`
}

// ListingItem is a cached external listing surfaced on the home page
type ListingItem struct {
	ProductID string    `json:"product_id"`
	Title     string    `json:"title"`
	SourceURL string    `json:"source_url"`
	ImageURL  string    `json:"image_url"`
	FetchedAt time.Time `json:"fetched_at"`
}
