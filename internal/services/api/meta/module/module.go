// Package module wires meta endpoints into a server using a tiny module
package module

import (
	"time"

	"hellomama/internal/modkit"
	"hellomama/internal/modkit/httpkit"
	str "hellomama/internal/platform/strings"

	metahttp "hellomama/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	built     modkit.Built
	startedAt time.Time
}

// New constructs a meta module reporting as service. It mounts at the root
// unless a prefix option says otherwise
func New(deps modkit.Deps, service string, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta")}, opts...)...)
	m := &Module{built: b, startedAt: time.Now()}

	external := b.Register
	m.built.Register = func(r httpkit.Router) {
		metahttp.Register(r, metahttp.Deps{
			ServiceName: str.MustString(service, "service name"),
			StartedAt:   m.startedAt,
			PG:          deps.PG,
			CH:          deps.CH,
		})
		external(r)
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.built.Name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
