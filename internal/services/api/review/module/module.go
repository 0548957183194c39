// Package module wires the review service into the API using modkit
package module

import (
	"net/http"

	modkit "reviewnexus/internal/modkit"
	"reviewnexus/internal/modkit/httpkit"
	"reviewnexus/internal/core/scrape"
	"reviewnexus/internal/platform/net/middleware"
	str "reviewnexus/internal/platform/strings"
	"reviewnexus/internal/services/api/review/domain"
	reviewhttp "reviewnexus/internal/services/api/review/http"
	reviewrepo "reviewnexus/internal/services/api/review/repo"
	reviewsvc "reviewnexus/internal/services/api/review/service"
)

// Ports exposed by the review module
type Ports struct {
	Review domain.ReviewPort
}

// Injected are cross-module ports the review module consumes
type Injected struct {
	Listing domain.ListingReaderPort
}

// Module implements the review module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc reviewsvc.Service
}

// New constructs the review module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("review"), modkit.WithPrefix("")}, opts...)...)
	o := FromConfig(deps.Cfg)

	var listing domain.ListingReaderPort
	if inj, ok := b.Ports.(Injected); ok {
		listing = inj.Listing
	}

	scraper := scrape.New(deps.Log)
	binder := reviewrepo.NewPG()
	svc := reviewsvc.New(deps.PG, binder, scraper, listing, deps.Log, reviewsvc.Config{
		TagLimit:           o.TagLimit,
		SourceURLLimit:     o.SourceURLLimit,
		DatabaseConfigured: deps.Cfg.MayString("PG_URL", "") != "",
	})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Review: svc}

	gate := middleware.SchedulerAuth{Secret: o.CronSecret, Header: o.SchedulerHeader}
	external := b.Register
	m.register = func(r httpkit.Router) {
		reviewhttp.Register(r, m.svc)
		httpkit.Protected(r, gate, func(rr httpkit.Router) {
			reviewhttp.RegisterCron(rr, m.svc)
		})
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	mount := func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	}
	if m.prefix == "" {
		r.Group(mount)
		return
	}
	r.Route(m.prefix, mount)
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
