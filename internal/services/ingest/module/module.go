// Package module wires ingestion into the process using modkit
package module

import (
	"net/http"

	"micdrop/internal/adapters/source"
	modkit "micdrop/internal/modkit"
	"micdrop/internal/modkit/httpkit"
	"micdrop/internal/modkit/module"
	"micdrop/internal/modkit/repokit"
	ingesthttp "micdrop/internal/services/ingest/http"
	ingestrepo "micdrop/internal/services/ingest/repo"
	ingestsvc "micdrop/internal/services/ingest/service"
	listingsmodule "micdrop/internal/services/listings/module"
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

	runner *ingestsvc.Runner
}

// New constructs an ingest module. The listings module must be registered
// first; its writer port is the only way listings reach storage
func New(deps modkit.Deps, adapters []source.Adapter, gate *ingestsvc.RobotsGate, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("ingest"), modkit.WithPrefix("")}, opts...)...)

	lp, ok := module.PortsAs[listingsmodule.Ports]("listings")
	if !ok {
		panic("ingest module requires the listings module to be registered")
	}

	var logs ingestrepo.Storage
	if deps.PG != nil {
		logs = repokit.MustBind(ingestrepo.NewPG(), deps.PG)
	} else {
		logs = ingestrepo.NewFile(deps.File)
	}

	cfg := FromConfig(deps.Cfg)
	runner := ingestsvc.NewRunner(adapters, gate, lp.Writer, logs, ingestsvc.Config{
		Interval:    cfg.Interval,
		Cities:      cfg.Cities,
		RadiusMiles: cfg.RadiusMiles,
		WindowDays:  cfg.WindowDays,
		MessageCap:  cfg.MessageCap,
	})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		runner:    runner,
	}
	m.ports = Ports{Runner: runner, Log: runner}

	external := b.Register
	m.register = func(r httpkit.Router) {
		ingesthttp.Register(r, m.runner, m.runner)
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

// Runner exposes the wired runner for worker mode
func (m *Module) Runner() *ingestsvc.Runner { return m.runner }
