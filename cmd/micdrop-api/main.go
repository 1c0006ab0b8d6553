// micdrop-api serves the read API: listings and lead queries, lead review,
// ingest audit log, and a manual ingest trigger
package main

import (
	"context"

	"micdrop/internal/app"
	modkit "micdrop/internal/modkit"
	"micdrop/internal/platform/config"
	"micdrop/internal/platform/logger"
	phttp "micdrop/internal/platform/net/http"
	"micdrop/internal/platform/net/middleware"
	"micdrop/internal/platform/store"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	l := logger.Get()

	st, err := app.OpenStore(context.Background(), root, l)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	srv := phttp.NewServer(apiCfg)
	r := srv.Router()
	for _, mw := range middleware.Defaults() {
		r.Use(mw)
	}
	r.Use(middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: apiCfg.MayList("CORS_ORIGINS", nil),
	}))
	r.Use(middleware.RecoverJSON)
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{}))
	r.Use(middleware.Heartbeat("/healthz"))

	mods := app.BuildModules(deps(root, st, l), root, l)
	mods.Listings.MountRoutes(r)
	mods.Ingest.MountRoutes(r)

	l.Info().Str("addr", srv.Addr()).Msg("micdrop api listening")
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

func deps(root config.Conf, st *store.Store, l *logger.Logger) modkit.Deps {
	return modkit.Deps{
		Cfg:  root,
		Log:  *l,
		PG:   st.PG,
		File: st.File,
	}
}
