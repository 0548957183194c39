// Package module wires listing snapshots into the API using modkit
package module

import (
	"net/http"

	modkit "reviewnexus/internal/modkit"
	"reviewnexus/internal/modkit/httpkit"
	"reviewnexus/internal/platform/net/middleware"
	str "reviewnexus/internal/platform/strings"
	"reviewnexus/internal/services/api/listing/domain"
	listinghttp "reviewnexus/internal/services/api/listing/http"
	listingrepo "reviewnexus/internal/services/api/listing/repo"
	listingsvc "reviewnexus/internal/services/api/listing/service"
)

// Ports exposed by the listing module
type Ports struct {
	Listing domain.ListingPort
}

// Module implements the listing module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc listingsvc.Service
}

// New constructs the listing module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("listing"), modkit.WithPrefix("/listings")}, opts...)...)

	binder := listingrepo.NewPG()
	svc := listingsvc.New(deps.PG, binder, deps.Log)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Listing: svc}

	gate := middleware.SchedulerAuth{
		Secret: deps.Cfg.MayString("CRON_SECRET", ""),
		Header: deps.Cfg.MayString("SCHEDULER_HEADER", "X-Trusted-Scheduler"),
	}
	external := b.Register
	m.register = func(r httpkit.Router) {
		listinghttp.Register(r, m.svc)
		httpkit.Protected(r, gate, func(rr httpkit.Router) {
			listinghttp.RegisterSync(rr, m.svc)
		})
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
