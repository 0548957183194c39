// Package http provides http transport for the access recorder
package http

import (
	"net"
	stdhttp "net/http"
	"strconv"

	"reviewnexus/internal/modkit/httpkit"
	"reviewnexus/internal/services/api/access/domain"
	svc "reviewnexus/internal/services/api/access/service"
)

// Register mounts access endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.Hit](r, "/hit", h.hit)
	httpkit.Get(r, "/stats", h.stats)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /access/hit Access recordAccess
// @Summary Record one page hit
// @Tags Access
// @Accept json
// @Produce json
// @Param payload body domain.Hit true "Hit"
// @Success 200 {object} domain.RecordResult "ok"
// @Router /access/hit [post]
func (h *handlers) hit(r *stdhttp.Request, in domain.Hit) (any, error) {
	in.IP = clientIP(r)
	in.UserAgent = r.UserAgent()
	return h.svc.Record(r.Context(), in)
}

// swagger:route GET /access/stats Access accessStats
// @Summary Hourly and aggregate access stats
// @Tags Access
// @Produce json
// @Param hours query int false "Window in hours, 1..720"
// @Param recent query int false "Recent rows, 1..500"
// @Success 200 {object} domain.StatsView "ok"
// @Router /access/stats [get]
func (h *handlers) stats(r *stdhttp.Request) (any, error) {
	q := domain.StatsQuery{}
	if v, err := strconv.Atoi(r.URL.Query().Get("hours")); err == nil {
		q.Hours = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("recent")); err == nil {
		q.RecentLimit = v
	}
	return h.svc.Stats(r.Context(), q)
}

// clientIP trusts the RealIP middleware to have rewritten RemoteAddr
func clientIP(r *stdhttp.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
