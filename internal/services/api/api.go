// Package api provides the HTTP API for the application
package api

import (
	"context"
	"net/http"

	"reviewnexus/internal/platform/config"
	"reviewnexus/internal/platform/logger"
	phttp "reviewnexus/internal/platform/net/http"
	"reviewnexus/internal/platform/store"
	"reviewnexus/internal/platform/store/schema"

	"reviewnexus/internal/modkit"
	"reviewnexus/internal/modkit/httpkit"
	"reviewnexus/internal/modkit/module"
	"reviewnexus/internal/modkit/swaggerkit"

	accessmod "reviewnexus/internal/services/api/access/module"
	listingdom "reviewnexus/internal/services/api/listing/domain"
	listingmod "reviewnexus/internal/services/api/listing/module"
	metamod "reviewnexus/internal/services/api/meta/module"
	reviewdom "reviewnexus/internal/services/api/review/domain"
	reviewmod "reviewnexus/internal/services/api/review/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Log: *opt.Logger,
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	// listing ports feed the review module's home page
	listing := listingmod.New(deps)
	listingPort := module.MustPortsOf[listingmod.Ports](listing).Listing

	review := reviewmod.New(deps, modkit.WithPorts(reviewmod.Injected{
		Listing: listingAdapter{port: listingPort},
	}))

	mods := []module.Module{
		metamod.New(deps),
		review,
		accessmod.New(deps),
		listing,
	}

	// schema is ensured lazily on the first request, shared across
	// concurrent first-callers. Skipped entirely when no database is
	// configured so every request does not warn about DDL
	stack := httpkit.CommonStack()
	if opt.Config.MayString("PG_URL", "") != "" {
		ensurer := schema.NewEnsurer(opt.Store.PG)
		stack = append(stack, ensureSchema(ensurer, opt.Logger))
	}

	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})
}

// ensureSchema runs the additive DDL once, requests proceed even when it
// fails so handlers can degrade with their own messages
func ensureSchema(e *schema.Ensurer, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := e.Ensure(r.Context()); err != nil {
				log.Warn().Err(err).Msg("schema ensure failed")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// listingAdapter converts listing snapshots into the review module's shape
type listingAdapter struct {
	port listingdom.ListingPort
}

func (a listingAdapter) Recent(ctx context.Context, limit int) ([]reviewdom.ListingItem, error) {
	snaps, err := a.port.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]reviewdom.ListingItem, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, reviewdom.ListingItem{
			ProductID: s.ProductID,
			Title:     s.Title,
			SourceURL: s.SourceURL,
			ImageURL:  s.ImageURL,
			FetchedAt: s.FetchedAt,
		})
	}
	return out, nil
}
