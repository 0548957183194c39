// Package domain holds DTOs for review http and service contracts
package domain

import "reviewnexus/internal/core/resolve"

// SubmitInput is a user review submission
type SubmitInput struct {
	URL              string   `json:"url" validate:"required,min=1,max=2000" example:"https://video.dmm.co.jp/av/content/?id=ssis001"`
	Score            int      `json:"score" example:"95"`
	ProductName      string   `json:"product_name,omitempty" validate:"omitempty,max=255" example:"SSIS-001"`
	Comment          string   `json:"comment,omitempty" validate:"omitempty,max=4000"`
	Tags             []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=40"`
	PerformerNames   string   `json:"performer_names,omitempty" validate:"omitempty,max=1000" example:"山田花子, 鈴木一郎"`
	CosplayCharacter string   `json:"cosplay_character,omitempty" validate:"omitempty,max=120"`
}

// Parsed echoes the resolved product key back to the submitter
type Parsed struct {
	ProductID string           `json:"product_id" example:"ssis001"`
	Platform  resolve.Platform `json:"platform" example:"fanza"`
}

// SubmitResult reports submission outcome with a human-readable message
type SubmitResult struct {
	OK      bool    `json:"ok"`
	Message string  `json:"message" example:"Posted."`
	Parsed  *Parsed `json:"parsed,omitempty"`
}

// BotResult reports the hourly bot post outcome
type BotResult struct {
	OK        bool             `json:"ok"`
	Skipped   bool             `json:"skipped"`
	Message   string           `json:"message,omitempty" example:"already posted this hour"`
	Platform  resolve.Platform `json:"platform,omitempty" example:"fanza"`
	ProductID string           `json:"product_id,omitempty" example:"ipx001"`
	Score     int              `json:"score,omitempty" example:"63"`
}

// NoteInput saves a per-product overall comment
type NoteInput struct {
	Comment string `json:"comment" validate:"max=4000"`
}

// NoteResult reports note upsert outcome
type NoteResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message" example:"Saved."`
}

// ReactionInput puts a reaction on one review
type ReactionInput struct {
	Reaction string `json:"reaction" validate:"required,oneof=like helpful" example:"like"`
}

// ReactionResult reports reaction outcome
type ReactionResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// SearchQuery carries the search parameters
type SearchQuery struct {
	Query     string
	Tags      []string
	Character string
}

// SearchResult is either a grouped item list or one selected product page
type SearchResult struct {
	OK       bool         `json:"ok"`
	Error    string       `json:"error,omitempty"`
	Query    string       `json:"query"`
	Parsed   *Parsed      `json:"parsed,omitempty"`
	Items    []ProductAgg `json:"items"`
	Selected *ProductView `json:"selected,omitempty"`
}
