// micdrop-ingest runs the ingestion pipeline: worker mode loops on a ticker,
// once mode does a single pass and exits
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"micdrop/internal/app"
	modkit "micdrop/internal/modkit"
	"micdrop/internal/platform/config"
	"micdrop/internal/platform/logger"
)

func main() {
	mode := flag.String("mode", "worker", "worker loops forever, once runs a single pass")
	flag.Parse()

	root := config.New()
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := app.OpenStore(ctx, root, l)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{
		Cfg:  root,
		Log:  *l,
		PG:   st.PG,
		File: st.File,
	}
	mods := app.BuildModules(deps, root, l)
	runner := mods.Ingest.Runner()

	switch *mode {
	case "once":
		rep, err := runner.RunNow(ctx)
		if err != nil {
			l.Panic().Err(err).Msg("ingest pass failed")
		}
		for _, sr := range rep.Sources {
			l.Info().
				Str("source", sr.Source).
				Bool("succeeded", sr.Succeeded).
				Int("created", sr.Created).
				Int("updated", sr.Updated).
				Int("leads", sr.Leads).
				Msg("source finished")
		}
	case "worker":
		l.Info().Msg("ingest worker starting")
		if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
			l.Panic().Err(err).Msg("ingest worker stopped")
		}
		l.Info().Msg("ingest worker shut down")
	default:
		l.Panic().Str("mode", *mode).Msg("unknown mode")
	}
}
