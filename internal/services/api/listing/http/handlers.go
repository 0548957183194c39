// Package http provides http transport for listing snapshots
package http

import (
	stdhttp "net/http"
	"strconv"

	"reviewnexus/internal/modkit/httpkit"
	"reviewnexus/internal/services/api/listing/domain"
	svc "reviewnexus/internal/services/api/listing/service"
)

// Register mounts the public read endpoint
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/recent", h.recent)
}

// RegisterSync mounts the scheduler-gated wholesale refresh endpoint
func RegisterSync(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PutJSON[domain.ReplaceInput](r, "/", h.replace)
}

type handlers struct{ svc svc.Service }

// swagger:route GET /listings/recent Listings recentListings
// @Summary Freshest cached external listings
// @Tags Listings
// @Produce json
// @Param limit query int false "Row cap, default 100"
// @Success 200 {array} domain.Snapshot "ok"
// @Router /listings/recent [get]
func (h *handlers) recent(r *stdhttp.Request) (any, error) {
	limit := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}
	return h.svc.Recent(r.Context(), limit)
}

// swagger:route PUT /listings Listings replaceListings
// @Summary Wholesale refresh of the listing snapshot cache
// @Tags Listings
// @Accept json
// @Produce json
// @Security SchedulerAuth
// @Param payload body domain.ReplaceInput true "Snapshots"
// @Success 200 {object} domain.ReplaceResult "ok"
// @Router /listings [put]
func (h *handlers) replace(r *stdhttp.Request, in domain.ReplaceInput) (any, error) {
	return h.svc.Replace(r.Context(), in.Items)
}
