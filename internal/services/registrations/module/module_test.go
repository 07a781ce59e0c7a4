package module

import (
	"net/http/httptest"
	"testing"

	"hellomama/internal/modkit"
	"hellomama/internal/modkit/module"
	"hellomama/internal/platform/config"
	phttp "hellomama/internal/platform/net/http"
	lifedom "hellomama/internal/services/lifecycle/domain"
	dom "hellomama/internal/services/registrations/domain"

	"github.com/go-chi/chi/v5"
)

func TestPortsAndRoutes(t *testing.T) {
	m := New(modkit.Deps{Cfg: config.New()}, modkit.WithPorts(Needs{}))
	if m.Name() != "registrations" {
		t.Fatalf("name = %q", m.Name())
	}
	if _, ok := module.PortsOf[dom.Reader](m); !ok {
		t.Fatalf("reader port missing")
	}
	if _, ok := module.PortsOf[lifedom.Handler](m); !ok {
		t.Fatalf("handler port missing")
	}

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/registrations", nil))
	if rec.Code == 404 || rec.Code == 405 {
		t.Fatalf("route not mounted: %d", rec.Code)
	}
}
