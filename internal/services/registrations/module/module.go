// Package module wires registrations into the API and the worker using modkit
package module

import (
	"hellomama/internal/core/engine"
	"hellomama/internal/modkit"
	"hellomama/internal/modkit/httpkit"
	ptime "hellomama/internal/platform/time"

	lifedom "hellomama/internal/services/lifecycle/domain"
	dom "hellomama/internal/services/registrations/domain"
	reghttp "hellomama/internal/services/registrations/http"
	"hellomama/internal/services/registrations/service"
)

// Needs are the ports this module consumes from others, passed with
// modkit.WithPorts. The API only needs the enqueuer; the worker also needs
// the collaborators
type Needs struct {
	Enqueuer lifedom.EnqueuePort
	Collab   service.Collaborators
	Clock    ptime.Clock
}

// Ports holds the ports exposed by the registrations module
type Ports struct {
	Service dom.Service
	Reader  dom.Reader
	Handler lifedom.Handler
}

// Module implements modkit.Module
type Module struct {
	built modkit.Built
	ports Ports
}

// New constructs the registrations module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("registrations"),
		modkit.WithPrefix("/registrations"),
	}, opts...)...)
	needs, _ := b.Ports.(Needs)

	svc := service.New(deps.PG, service.Config{
		Rules:   engine.FromConfig(deps.Cfg),
		Collab:  needs.Collab,
		Enqueue: needs.Enqueuer,
		Clock:   needs.Clock,
	})

	external := b.Register
	b.Register = func(r httpkit.Router) {
		reghttp.Register(r, svc)
		external(r)
	}
	if b.SwaggerOn {
		reghttp.Document("/api/v1" + b.Prefix)
	}
	return &Module{
		built: b,
		ports: Ports{Service: svc, Reader: svc, Handler: svc},
	}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }
