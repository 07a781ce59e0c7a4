package module

import (
	"testing"
	"time"

	"hellomama/internal/modkit"
	"hellomama/internal/modkit/module"
	"hellomama/internal/platform/config"
	dom "hellomama/internal/services/lifecycle/domain"
)

func TestFromConfig(t *testing.T) {
	t.Setenv("LIFECYCLE_WORKER_CONCURRENCY", "9")
	t.Setenv("LIFECYCLE_LEASE_FOR", "45s")
	o := FromConfig(config.New())
	if o.Concurrency != 9 || o.LeaseFor != 45*time.Second || o.MaxAttempts != 8 {
		t.Fatalf("options %+v", o)
	}
}

func TestPortsAreExposed(t *testing.T) {
	m := New(modkit.Deps{Cfg: config.New()}, Options{MaxAttempts: 2})
	if _, ok := module.PortsOf[dom.EnqueuePort](m); !ok {
		t.Fatalf("enqueuer port missing")
	}
	p := module.MustPortsOf[Ports](m)
	if p.Worker == nil || p.Admin == nil || p.Registry == nil {
		t.Fatalf("ports %+v", p)
	}
}
