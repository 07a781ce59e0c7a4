// @title         HelloMama Intake API
// @version       0.1.0
// @description   Accepts registrations and subscription changes for the lifecycle worker

package main

import (
	"context"
	"os/signal"
	"syscall"

	"hellomama/internal/platform/config"
	"hellomama/internal/platform/logger"
	phttp "hellomama/internal/platform/net/http"
	"hellomama/internal/platform/store"

	"hellomama/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// postgres holds records and the job queue; clickhouse is not needed here
	storeCfg := store.FromConf(root, "api")
	storeCfg.CH.Enabled = false
	st, err := store.Open(ctx, storeCfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg)

	mods := api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Store:          st,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)
	for _, m := range mods {
		l.Debug().Str("module", m.Name()).Msg("mounted")
	}

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
