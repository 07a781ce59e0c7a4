// Package module wires the lifecycle job queue and exposes its ports
package module

import (
	"hellomama/internal/modkit"
	"hellomama/internal/modkit/httpkit"

	dom "hellomama/internal/services/lifecycle/domain"
	"hellomama/internal/services/lifecycle/service"
)

// Registry lets record modules attach their handlers
type Registry interface {
	Handle(kind dom.Kind, h dom.Handler)
	SetSink(sink dom.OutcomeSink)
}

// Ports holds the ports exposed by the lifecycle module
type Ports struct {
	Worker   dom.WorkerPort
	Enqueuer dom.EnqueuePort
	Admin    dom.AdminPort
	Registry Registry
}

// Module is the lifecycle worker module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the module; zero fields in overrides keep the configured value
func New(deps modkit.Deps, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.WorkerID != "" {
		opts.WorkerID = overrides.WorkerID
	}
	if overrides.Concurrency != 0 {
		opts.Concurrency = overrides.Concurrency
	}
	if overrides.QueueTakeBatch != 0 {
		opts.QueueTakeBatch = overrides.QueueTakeBatch
	}
	if overrides.PollEvery != 0 {
		opts.PollEvery = overrides.PollEvery
	}
	if overrides.LeaseFor != 0 {
		opts.LeaseFor = overrides.LeaseFor
	}
	if overrides.RetryBase != 0 {
		opts.RetryBase = overrides.RetryBase
	}
	if overrides.MaxAttempts != 0 {
		opts.MaxAttempts = overrides.MaxAttempts
	}

	svc := service.New(deps, service.Config(opts))
	return &Module{
		deps: deps,
		ports: Ports{
			Worker:   svc,
			Enqueuer: svc,
			Admin:    svc,
			Registry: svc,
		},
	}
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "lifecycle" }

// MountRoutes mounts nothing; the worker has no HTTP surface of its own
func (m *Module) MountRoutes(_ httpkit.Router) {}
