// Package http provides http transport for the review service
package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"reviewnexus/internal/core/resolve"
	"reviewnexus/internal/modkit/httpkit"
	perr "reviewnexus/internal/platform/errors"
	"reviewnexus/internal/services/api/review/domain"
	svc "reviewnexus/internal/services/api/review/service"
)

// Register mounts review endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.SubmitInput](r, "/reviews", h.submit)
	httpkit.PostJSON[domain.ReactionInput](r, "/reviews/{id}/reactions", h.react)
	httpkit.Get(r, "/products/{platform}/{productId}", h.product)
	httpkit.PutJSON[domain.NoteInput](r, "/products/{platform}/{productId}/note", h.saveNote)
	httpkit.Get(r, "/search", h.search)
	httpkit.Get(r, "/home", h.home)
}

// RegisterCron mounts the scheduler-gated bot endpoint
func RegisterCron(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Post(r, "/cron/bot-review", h.botReview)
}

type handlers struct{ svc svc.Service }

func productKey(r *stdhttp.Request) (resolve.Platform, string, error) {
	platform := strings.ToLower(chi.URLParam(r, "platform"))
	productID := strings.ToLower(chi.URLParam(r, "productId"))
	if !resolve.ValidPlatform(platform) {
		return "", "", perr.InvalidArgf("unknown platform %q", platform)
	}
	if productID == "" {
		return "", "", perr.InvalidArgf("product id required")
	}
	return resolve.Platform(platform), productID, nil
}

// swagger:route POST /reviews Reviews submitReview
// @Summary Submit a review for a product URL
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body domain.SubmitInput true "Submission"
// @Success 200 {object} domain.SubmitResult "ok"
// @Router /reviews [post]
func (h *handlers) submit(r *stdhttp.Request, in domain.SubmitInput) (any, error) {
	return h.svc.Submit(r.Context(), in)
}

// swagger:route POST /reviews/{id}/reactions Reviews reactToReview
// @Summary React to a review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path int true "Review id"
// @Param payload body domain.ReactionInput true "Reaction"
// @Success 200 {object} domain.ReactionResult "ok"
// @Router /reviews/{id}/reactions [post]
func (h *handlers) react(r *stdhttp.Request, in domain.ReactionInput) (any, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return nil, perr.InvalidArgf("invalid review id")
	}
	return h.svc.React(r.Context(), id, in.Reaction)
}

// swagger:route GET /products/{platform}/{productId} Products productPage
// @Summary Product page data with summary and histogram
// @Tags Products
// @Produce json
// @Param platform path string true "Platform" Enums(fanza, fantia, external)
// @Param productId path string true "Product id"
// @Success 200 {object} domain.ProductView "ok"
// @Router /products/{platform}/{productId} [get]
func (h *handlers) product(r *stdhttp.Request) (any, error) {
	platform, productID, err := productKey(r)
	if err != nil {
		return nil, err
	}
	return h.svc.ProductPage(r.Context(), platform, productID)
}

// swagger:route PUT /products/{platform}/{productId}/note Products saveProductNote
// @Summary Save the per-product overall comment
// @Tags Products
// @Accept json
// @Produce json
// @Param platform path string true "Platform" Enums(fanza, fantia)
// @Param productId path string true "Product id"
// @Param payload body domain.NoteInput true "Note"
// @Success 200 {object} domain.NoteResult "ok"
// @Router /products/{platform}/{productId}/note [put]
func (h *handlers) saveNote(r *stdhttp.Request, in domain.NoteInput) (any, error) {
	platform, productID, err := productKey(r)
	if err != nil {
		return nil, err
	}
	return h.svc.SaveNote(r.Context(), platform, productID, in.Comment)
}

// swagger:route GET /search Search searchProducts
// @Summary Search products by id, name, comment, or tag
// @Tags Search
// @Produce json
// @Param q query string false "Query text or product URL"
// @Param tags query string false "Comma-separated tag filters"
// @Param character query string false "Cosplay character filter"
// @Success 200 {object} domain.SearchResult "ok"
// @Router /search [get]
func (h *handlers) search(r *stdhttp.Request) (any, error) {
	q := domain.SearchQuery{
		Query:     r.URL.Query().Get("q"),
		Character: r.URL.Query().Get("character"),
	}
	if raw := r.URL.Query().Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.Tags = append(q.Tags, t)
			}
		}
	}
	return h.svc.Search(r.Context(), q)
}

// swagger:route GET /home Home homeData
// @Summary Landing page data
// @Tags Home
// @Produce json
// @Success 200 {object} domain.HomeView "ok"
// @Router /home [get]
func (h *handlers) home(r *stdhttp.Request) (any, error) {
	return h.svc.Home(r.Context())
}

// swagger:route POST /cron/bot-review Cron postBotReview
// @Summary Post the hourly automated sample review
// @Tags Cron
// @Produce json
// @Security SchedulerAuth
// @Success 200 {object} domain.BotResult "ok"
// @Router /cron/bot-review [post]
func (h *handlers) botReview(r *stdhttp.Request) (any, error) {
	return h.svc.PostBotReview(r.Context())
}
