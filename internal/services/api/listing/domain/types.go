// Package domain defines the types and contracts for cached external listings
package domain

import (
	"context"
	"time"
)

// Snapshot is one cached external listing row, refreshed wholesale by the
// periodic sync job and read-only to the ingestion path
type Snapshot struct {
	ProductID string    `json:"product_id" validate:"required,max=255" example:"ssis001"`
	Title     string    `json:"title" validate:"required,max=500" example:"SSIS-001 タイトル"`
	SourceURL string    `json:"source_url,omitempty" validate:"omitempty,max=2000"`
	ImageURL  string    `json:"image_url,omitempty" validate:"omitempty,max=2000"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ReplaceInput is the wholesale refresh payload
type ReplaceInput struct {
	Items []Snapshot `json:"items" validate:"required,max=500,dive"`
}

// ReplaceResult reports refresh outcome
type ReplaceResult struct {
	OK    bool `json:"ok"`
	Count int  `json:"count" example:"120"`
}

// ListingPort is the listing surface exposed to transports and other modules
type ListingPort interface {
	Replace(ctx context.Context, items []Snapshot) (ReplaceResult, error)
	Recent(ctx context.Context, limit int) ([]Snapshot, error)
}
