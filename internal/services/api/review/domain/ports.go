package domain

import (
	"context"

	"reviewnexus/internal/core/resolve"
	"reviewnexus/internal/core/scrape"
)

// ReviewPort is the orchestrator surface exposed to transports and other modules
type ReviewPort interface {
	Submit(ctx context.Context, in SubmitInput) (SubmitResult, error)
	PostBotReview(ctx context.Context) (BotResult, error)
	ProductPage(ctx context.Context, platform resolve.Platform, productID string) (ProductView, error)
	Search(ctx context.Context, q SearchQuery) (SearchResult, error)
	Home(ctx context.Context) (HomeView, error)
	SaveNote(ctx context.Context, platform resolve.Platform, productID, comment string) (NoteResult, error)
	React(ctx context.Context, reviewID int64, reaction string) (ReactionResult, error)
}

// MetadataPort resolves display metadata from candidate URLs.
// Satisfied by the scrape client
type MetadataPort interface {
	ResolveMetadata(ctx context.Context, platform resolve.Platform, productID string, candidates []string) scrape.Metadata
}

// ListingReaderPort is the slice of the listing module the home page consumes
type ListingReaderPort interface {
	Recent(ctx context.Context, limit int) ([]ListingItem, error)
}
