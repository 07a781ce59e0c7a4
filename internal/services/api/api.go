// Package api composes the intake HTTP API: meta at the root, records under /api/v1
package api

import (
	"time"

	"hellomama/internal/modkit"
	"hellomama/internal/modkit/httpkit"
	"hellomama/internal/modkit/module"
	"hellomama/internal/modkit/swaggerkit"
	"hellomama/internal/platform/config"
	phttp "hellomama/internal/platform/net/http"
	"hellomama/internal/platform/store"

	metamod "hellomama/internal/services/api/meta/module"
	changesmod "hellomama/internal/services/changes/module"
	lifecyclemod "hellomama/internal/services/lifecycle/module"
	regmod "hellomama/internal/services/registrations/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router and returns the record
// modules it built
func Mount(r phttp.Router, opt Options) []module.Module {
	deps := modkit.FromStore(opt.Store, opt.Config)
	return mount(r, deps, opt)
}

func mount(r phttp.Router, deps modkit.Deps, opt Options) []module.Module {
	// the lifecycle module owns the queue; the API only enqueues
	lifecycle := lifecyclemod.New(deps, lifecyclemod.Options{})
	enq := module.MustPortsOf[lifecyclemod.Ports](lifecycle).Enqueuer

	registrations := regmod.New(deps,
		modkit.WithPorts(regmod.Needs{Enqueuer: enq}),
		modkit.WithSwagger(opt.EnableSwagger),
	)
	reader := module.MustPortsOf[regmod.Ports](registrations).Reader

	changes := changesmod.New(deps,
		modkit.WithPorts(changesmod.Needs{Enqueuer: enq, Registrations: reader}),
		modkit.WithSwagger(opt.EnableSwagger),
	)

	metamod.New(deps, "hellomama-api").MountRoutes(r)
	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	mods := []module.Module{registrations, changes}
	stack := httpkit.CommonStack(httpkit.StackOptions{
		CORSOrigins: opt.Config.MayCSV("CORS_ORIGINS", nil),
		Timeout:     opt.Config.MayDuration("TIMEOUT", 15*time.Second),
		SlowLog:     opt.Config.MayDuration("SLOW_LOG", time.Second),
	})
	sources := httpkit.NewPortFunc(httpkit.StaticTokens(opt.Config.MayPairs("SOURCES")))

	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		httpkit.Protected(api, sources, func(p httpkit.Router) {
			for _, m := range mods {
				m.MountRoutes(p)
			}
		})
	})
	return mods
}
