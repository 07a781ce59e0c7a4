package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func tag(name string) func(stdhttp.Handler) stdhttp.Handler {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			w.Header().Add("X-Layer", name)
			next.ServeHTTP(w, r)
		})
	}
}

func reply(body string) Handler {
	return func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { _, _ = w.Write([]byte(body)) }
}

func TestAdaptChiScopesMiddleware(t *testing.T) {
	m := chi.NewRouter()
	r := AdaptChi(m)
	r.Use(tag("root"))
	r.Get("/health", reply("ok"))
	r.Route("/api/v1", func(api Router) {
		api.Use(tag("api"))
		api.Group(func(g Router) {
			g.Use(tag("auth"))
			g.Route("/registrations", func(sub Router) {
				sub.Post("/", reply("created"))
				sub.Get("/{id}", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
					_, _ = w.Write([]byte(chi.URLParam(req, "id")))
				})
			})
		})
		api.Get("/open", reply("open"))
	})

	cases := []struct {
		method, path string
		body         string
		layers       []string
	}{
		{stdhttp.MethodGet, "/health", "ok", []string{"root"}},
		{stdhttp.MethodPost, "/api/v1/registrations", "created", []string{"root", "api", "auth"}},
		{stdhttp.MethodGet, "/api/v1/registrations/r-1", "r-1", []string{"root", "api", "auth"}},
		{stdhttp.MethodGet, "/api/v1/open", "open", []string{"root", "api"}},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != stdhttp.StatusOK || rec.Body.String() != tc.body {
			t.Fatalf("%s %s = %d %q", tc.method, tc.path, rec.Code, rec.Body.String())
		}
		got := rec.Header().Values("X-Layer")
		if len(got) != len(tc.layers) {
			t.Fatalf("%s layers = %v want %v", tc.path, got, tc.layers)
		}
		for i := range got {
			if got[i] != tc.layers[i] {
				t.Fatalf("%s layers = %v want %v", tc.path, got, tc.layers)
			}
		}
	}
}

func TestAdaptChiMethods(t *testing.T) {
	m := chi.NewRouter()
	r := AdaptChi(m)
	r.Put("/x", reply("put"))
	r.Patch("/x", reply("patch"))
	r.Delete("/x", reply("delete"))
	r.Head("/x", reply(""))
	r.Options("/x", reply("options"))
	r.Handle("/raw", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(stdhttp.StatusTeapot) }))

	for _, method := range []string{stdhttp.MethodPut, stdhttp.MethodPatch, stdhttp.MethodDelete, stdhttp.MethodHead, stdhttp.MethodOptions} {
		rec := httptest.NewRecorder()
		m.ServeHTTP(rec, httptest.NewRequest(method, "/x", nil))
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("%s /x = %d", method, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/x", nil))
	if rec.Code != stdhttp.StatusMethodNotAllowed {
		t.Fatalf("GET /x = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/raw", nil))
	if rec.Code != stdhttp.StatusTeapot {
		t.Fatalf("GET /raw = %d", rec.Code)
	}
}

func TestMountProfiler(t *testing.T) {
	on := AdaptChi(chi.NewRouter())
	MountProfiler(on, "/debug", true)
	rec := httptest.NewRecorder()
	on.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/debug/pprof/cmdline", nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("enabled profiler = %d", rec.Code)
	}

	off := AdaptChi(chi.NewRouter())
	MountProfiler(off, "/debug", false)
	rec = httptest.NewRecorder()
	off.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/debug/pprof/", nil))
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("disabled profiler = %d", rec.Code)
	}
}
