// Package module wires listings into the API using modkit
package module

import (
	"net/http"

	modkit "micdrop/internal/modkit"
	"micdrop/internal/modkit/httpkit"
	"micdrop/internal/modkit/repokit"
	listingshttp "micdrop/internal/services/listings/http"
	listingsrepo "micdrop/internal/services/listings/repo"
	listingssvc "micdrop/internal/services/listings/service"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc listingssvc.Service
}

// New constructs a listings module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("listings"), modkit.WithPrefix("")}, opts...)...)

	cfg := FromConfig(deps.Cfg)

	var storage listingsrepo.Storage
	if deps.PG != nil {
		storage = repokit.MustBind(listingsrepo.NewPG(), deps.PG)
	} else {
		storage = listingsrepo.NewFile(deps.File)
	}
	svc := listingssvc.New(storage, listingssvc.Config{HardLimit: cfg.HardLimit})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Writer: svc, Query: svc, Review: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		listingshttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
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
		r.Group(func(rr httpkit.Router) { mount(rr) })
		return
	}
	r.Route(m.prefix, mount)
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Service exposes the wired service for sibling modules that skip ports
func (m *Module) Service() listingssvc.Service { return m.svc }
