// Package module wires changes into the API and the worker using modkit
package module

import (
	"hellomama/internal/core/engine"
	"hellomama/internal/modkit"
	"hellomama/internal/modkit/httpkit"
	ptime "hellomama/internal/platform/time"

	dom "hellomama/internal/services/changes/domain"
	changehttp "hellomama/internal/services/changes/http"
	"hellomama/internal/services/changes/service"
	lifedom "hellomama/internal/services/lifecycle/domain"
	regdom "hellomama/internal/services/registrations/domain"
)

// Needs are the ports this module consumes from others, passed with modkit.WithPorts
type Needs struct {
	Enqueuer      lifedom.EnqueuePort
	Registrations regdom.Reader
	Collab        service.Collaborators
	Clock         ptime.Clock
}

// Ports holds the ports exposed by the changes module
type Ports struct {
	Service dom.Service
	Handler lifedom.Handler
}

// Module implements modkit.Module
type Module struct {
	built modkit.Built
	ports Ports
}

// New constructs the changes module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("changes"),
		modkit.WithPrefix("/changes"),
	}, opts...)...)
	needs, _ := b.Ports.(Needs)

	svc := service.New(deps.PG, service.Config{
		Rules:         engine.FromConfig(deps.Cfg),
		Collab:        needs.Collab,
		Registrations: needs.Registrations,
		Enqueue:       needs.Enqueuer,
		Clock:         needs.Clock,
	})

	external := b.Register
	b.Register = func(r httpkit.Router) {
		changehttp.Register(r, svc)
		external(r)
	}
	if b.SwaggerOn {
		changehttp.Document("/api/v1" + b.Prefix)
	}
	return &Module{built: b, ports: Ports{Service: svc, Handler: svc}}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }
