package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"hellomama/internal/adapters/seed"
	"hellomama/internal/adapters/seed/identitystore"
	"hellomama/internal/adapters/seed/messagesender"
	"hellomama/internal/adapters/seed/stagebased"
	"hellomama/internal/modkit"
	"hellomama/internal/modkit/module"
	"hellomama/internal/platform/config"
	"hellomama/internal/platform/logger"
	phttp "hellomama/internal/platform/net/http"
	"hellomama/internal/platform/store"
	"hellomama/internal/platform/store/migrate"

	metamod "hellomama/internal/services/api/meta/module"
	changesmod "hellomama/internal/services/changes/module"
	changesvc "hellomama/internal/services/changes/service"
	lifedom "hellomama/internal/services/lifecycle/domain"
	"hellomama/internal/services/lifecycle/metrics"
	lifecyclemod "hellomama/internal/services/lifecycle/module"
	"hellomama/internal/services/outcomes"
	regmod "hellomama/internal/services/registrations/module"
	regsvc "hellomama/internal/services/registrations/service"

	"golang.org/x/sync/errgroup"
)

func main() {
	root := config.New()
	workerCfg := root.Prefix("CORE_WORKER_")

	var (
		fMode    = flag.String("mode", workerCfg.MayEnum("MODE", "run", "run", "requeue-failed", "summary"), "run | requeue-failed | summary")
		fMigrate = flag.Bool("migrate", workerCfg.MayBool("MIGRATE", false), "apply embedded migrations before starting")
		fConc    = flag.Int("concurrency", 0, "worker concurrency (0 keeps LIFECYCLE_WORKER_CONCURRENCY)")
		fBatch   = flag.Int("batch", 0, "jobs leased per poll (0 keeps LIFECYCLE_QUEUE_TAKE_BATCH)")
		fSince   = flag.Duration("since", 24*time.Hour, "summary window")
	)
	flag.Parse()

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.FromConf(root, "worker"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if *fMigrate {
		if err := migrate.Apply(ctx, st.PG); err != nil {
			l.Panic().Err(err).Msg("migrate failed")
		}
	}

	deps := modkit.FromStore(st, root)

	ledger, err := outcomes.New(st.CH, outcomes.FromConfig(root))
	if err != nil {
		l.Panic().Err(err).Msg("outcome ledger config")
	}

	lifecycle := lifecyclemod.New(deps, lifecyclemod.Options{
		Concurrency:    *fConc,
		QueueTakeBatch: *fBatch,
	})
	ports := module.MustPortsOf[lifecyclemod.Ports](lifecycle)

	switch *fMode {
	case "requeue-failed":
		n, err := ports.Admin.RequeueFailed(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("requeue failed jobs")
		}
		l.Info().Int64("requeued", n).Msg("failed jobs requeued")
		return
	case "summary":
		counts, err := ledger.Summary(ctx, time.Now().Add(-*fSince))
		if err != nil {
			l.Fatal().Err(err).Msg("outcome summary")
		}
		for _, c := range counts {
			l.Info().
				Str("kind", c.Kind).
				Str("outcome", c.Outcome).
				Uint64("jobs", c.Jobs).
				Uint64("requests_created", c.Requests).
				Msg("outcomes")
		}
		return
	}

	// collaborators
	sbm := stagebased.New(seed.NewClient(seed.FromConfig("sbm", root.Prefix("SBM_"))))
	ids := identitystore.New(seed.NewClient(seed.FromConfig("identity_store", root.Prefix("IDENTITY_STORE_"))))
	msgs := messagesender.New(seed.NewClient(seed.FromConfig("message_sender", root.Prefix("MESSAGE_SENDER_"))))

	registrations := regmod.New(deps, modkit.WithPorts(regmod.Needs{
		Enqueuer: ports.Enqueuer,
		Collab:   regsvc.Collaborators{Catalog: sbm, Identities: ids, Messages: msgs},
	}))
	reader := module.MustPortsOf[regmod.Ports](registrations).Reader

	changes := changesmod.New(deps, modkit.WithPorts(changesmod.Needs{
		Enqueuer:      ports.Enqueuer,
		Registrations: reader,
		Collab:        changesvc.Collaborators{Catalog: sbm, Subscriptions: sbm, Identities: ids},
	}))

	ports.Registry.Handle(lifedom.KindRegistration, module.MustPortsOf[regmod.Ports](registrations).Handler)
	ports.Registry.Handle(lifedom.KindChange, module.MustPortsOf[changesmod.Ports](changes).Handler)

	if err := ledger.EnsureTable(ctx); err != nil {
		l.Error().Err(err).Msg("outcome ledger unavailable; outcomes are only logged")
	} else {
		ports.Registry.SetSink(ledger)
	}

	// health and metrics on CORE_WORKER_PORT
	srv := phttp.NewServer(workerCfg)
	metamod.New(deps, "hellomama-worker").MountRoutes(srv.Router())
	srv.Router().Handle("/metrics", metrics.Handler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		err := ports.Worker.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		l.Fatal().Err(err).Msg("lifecycle worker failed")
	}
	l.Info().Msg("lifecycle worker stopped")
}
