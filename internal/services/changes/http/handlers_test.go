package http

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hellomama/internal/modkit/httpkit"
	perr "hellomama/internal/platform/errors"
	pnet "hellomama/internal/platform/net"
	phttp "hellomama/internal/platform/net/http"
	"hellomama/internal/services/changes/domain"

	"github.com/go-chi/chi/v5"
)

type fakeSvc struct{ got domain.CreateInput }

func (f *fakeSvc) Create(_ context.Context, in domain.CreateInput) (domain.Change, error) {
	f.got = in
	if _, err := domain.ParseAction(in.Action, in.Data); err != nil {
		return domain.Change{}, err
	}
	return domain.Change{ID: "c1", MotherID: in.MotherID, Action: in.Action}, nil
}

func (f *fakeSvc) Get(_ context.Context, id string) (domain.View, error) {
	if id != "c1" {
		return domain.View{}, perr.NotFoundf("change %s not found", id)
	}
	return domain.View{Change: domain.Change{ID: id}}, nil
}

func router(svc domain.Service) *chi.Mux {
	m := chi.NewRouter()
	m.Use(func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			next.ServeHTTP(w, r.WithContext(pnet.WithSource(r.Context(), "helpdesk", "advisor")))
		})
	})
	httpkit.MountUnder(phttp.AdaptChi(m), "/changes", nil, func(r httpkit.Router) { Register(r, svc) })
	return m
}

func TestCreateChange(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"mother_id":"0c9a4f2e-1b3d-4e5f-8a6b-7c8d9e0f1a01","action":"change_baby"}`, stdhttp.StatusCreated},
		{"unknown action", `{"mother_id":"0c9a4f2e-1b3d-4e5f-8a6b-7c8d9e0f1a01","action":"change_everything"}`, stdhttp.StatusBadRequest},
		{"bad mother", `{"mother_id":"nope","action":"change_baby"}`, stdhttp.StatusBadRequest},
		{"missing payload field", `{"mother_id":"0c9a4f2e-1b3d-4e5f-8a6b-7c8d9e0f1a01","action":"change_language","data":{}}`, stdhttp.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeSvc{}
			rec := httptest.NewRecorder()
			router(svc).ServeHTTP(rec, httptest.NewRequest("POST", "/changes", strings.NewReader(tc.body)))
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if tc.status == stdhttp.StatusCreated && svc.got.Source.Name != "helpdesk" {
				t.Fatalf("source = %+v", svc.got.Source)
			}
		})
	}
}

func TestGetChange(t *testing.T) {
	m := router(&fakeSvc{})
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/changes/c1", nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/changes/c2", nil))
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
