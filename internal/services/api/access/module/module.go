// Package module wires the access recorder into the API using modkit
package module

import (
	"net/http"

	modkit "reviewnexus/internal/modkit"
	"reviewnexus/internal/modkit/httpkit"
	str "reviewnexus/internal/platform/strings"
	"reviewnexus/internal/services/api/access/domain"
	accesshttp "reviewnexus/internal/services/api/access/http"
	accessrepo "reviewnexus/internal/services/api/access/repo"
	accesssvc "reviewnexus/internal/services/api/access/service"
)

// Ports exposed by the access module
type Ports struct {
	Access domain.AccessPort
}

// Module implements the access module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc accesssvc.Service
}

// New constructs the access module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("access"), modkit.WithPrefix("/access")}, opts...)...)

	binder := accessrepo.NewPG()
	svc := accesssvc.New(deps.PG, binder, deps.Log)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Access: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		accesshttp.Register(r, m.svc)
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
