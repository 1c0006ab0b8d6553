// Package app holds the bootstrap wiring shared by the api and ingest binaries
package app

import (
	"context"

	"micdrop/internal/adapters/source"
	"micdrop/internal/adapters/source/meetup"
	"micdrop/internal/adapters/source/stub"
	"micdrop/internal/adapters/source/websearch"
	"micdrop/internal/core/allowlist"
	modkit "micdrop/internal/modkit"
	"micdrop/internal/modkit/module"
	"micdrop/internal/platform/config"
	"micdrop/internal/platform/logger"
	"micdrop/internal/platform/store"
	ingestmod "micdrop/internal/services/ingest/module"
	ingestsvc "micdrop/internal/services/ingest/service"
	listingsmodule "micdrop/internal/services/listings/module"
	listingsrepo "micdrop/internal/services/listings/repo"
)

// OpenStore opens the storage backend selected by STORE_BACKEND.
// The flat-file backend is the zero-config default so a fresh checkout runs
// without a database
func OpenStore(ctx context.Context, root config.Conf, l *logger.Logger) (*store.Store, error) {
	stCfg := root.Prefix("STORE_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	cfg := store.Config{
		AppName: "micdrop",
		Backend: store.Backend(stCfg.MayEnum("BACKEND", string(store.BackendFile),
			string(store.BackendFile), string(store.BackendPostgres))),
		File: store.FileConfig{
			Path: stCfg.MayString("FILE_PATH", "data/micdrop.json"),
		},
	}
	if cfg.Backend == store.BackendPostgres {
		cfg.PG = store.PGConfig{
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		}
	}

	st, err := store.Open(ctx, cfg, store.WithLogger(*l))
	if err != nil {
		return nil, err
	}
	if cfg.Backend == store.BackendPostgres && stCfg.MayBool("INIT_DB", false) {
		if _, err := st.PG.Exec(ctx, listingsrepo.Schema); err != nil {
			_ = st.Close(ctx)
			return nil, err
		}
	}
	return st, nil
}

// BuildPolicy constructs the domain allowlist, extended from config
func BuildPolicy(root config.Conf, l *logger.Logger) *allowlist.Policy {
	extra := root.Prefix("ALLOWLIST_").MayList("EXTRA_DOMAINS", nil)
	return allowlist.New(extra, allowlist.WithLogger(*l))
}

// BuildAdapters wires every source adapter from config. Adapters missing
// credentials stay constructed but disabled
func BuildAdapters(root config.Conf, gate *ingestsvc.RobotsGate) []source.Adapter {
	mu := root.Prefix("MEETUP_")
	se := root.Prefix("SEARCH_")

	return []source.Adapter{
		meetup.New(meetup.Options{
			Token:   mu.MayString("TOKEN", ""),
			BaseURL: mu.MayString("BASE_URL", ""),
		}),
		websearch.New(websearch.Options{
			APIKey:      se.MayString("API_KEY", ""),
			EngineID:    se.MayString("ENGINE_ID", ""),
			BaseURL:     se.MayString("BASE_URL", ""),
			PageCap:     se.MayInt("PAGE_CAP", 3),
			Concurrency: se.MayInt("CONCURRENCY", 1),
			QPS:         se.MayFloat64("QPS", 1),
		}, gate),
		stub.New(root.Prefix("INGEST_").MayBool("STUB_ENABLED", false)),
	}
}

// Modules bundles the fully wired service modules
type Modules struct {
	Listings *listingsmodule.Module
	Ingest   *ingestmod.Module
}

// BuildModules wires listings and ingest with a shared allowlist gate.
// Registration order matters: ingest pulls the listings writer port from
// the registry
func BuildModules(deps modkit.Deps, root config.Conf, l *logger.Logger) Modules {
	policy := BuildPolicy(root, l)
	gate := ingestsvc.NewRobotsGate(policy)
	adapters := BuildAdapters(root, gate)

	lm := listingsmodule.New(deps).(*listingsmodule.Module)
	module.Register(lm.Name(), lm.Ports())

	im := ingestmod.New(deps, adapters, gate)
	module.Register(im.Name(), im.Ports())

	return Modules{Listings: lm, Ingest: im}
}
