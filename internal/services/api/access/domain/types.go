// Package domain defines the types and contracts for the access recorder
package domain

import (
	"context"
	"time"
)

// Hit is one raw access event before hashing
type Hit struct {
	Path      string `json:"path" validate:"required,max=2000" example:"/title/fanza/ssis001"`
	Referer   string `json:"referer,omitempty" validate:"omitempty,max=2000"`
	ClientID  string `json:"client_id,omitempty" validate:"omitempty,max=128"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// RecordResult reports hit persistence outcome
type RecordResult struct {
	OK bool `json:"ok"`
}

// StatsQuery bounds the stats window
type StatsQuery struct {
	Hours       int
	RecentLimit int
}

// Summary is the window-wide aggregate
type Summary struct {
	Total          int `json:"total" example:"1204"`
	UniqueVisitors int `json:"unique_visitors" example:"87"`
}

// HourlyRow is one hour bucket of hits
type HourlyRow struct {
	Hour     time.Time `json:"hour"`
	Count    int       `json:"count" example:"17"`
	Visitors int       `json:"visitors" example:"9"`
}

// RecentRow is one recent hit with hashed identity only
type RecentRow struct {
	AccessedAt  time.Time `json:"accessed_at"`
	Path        string    `json:"path"`
	Referer     string    `json:"referer,omitempty"`
	VisitorHash string    `json:"visitor_hash"`
}

// StatsView is the always-renderable stats payload
type StatsView struct {
	OK      bool        `json:"ok"`
	Error   string      `json:"error,omitempty"`
	Hours   int         `json:"hours"`
	Summary Summary     `json:"summary"`
	Hourly  []HourlyRow `json:"hourly"`
	Recent  []RecentRow `json:"recent"`
}

// AccessPort is the recorder surface exposed to transports
type AccessPort interface {
	Record(ctx context.Context, hit Hit) (RecordResult, error)
	Stats(ctx context.Context, q StatsQuery) (StatsView, error)
}
