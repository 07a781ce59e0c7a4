package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "hellomama/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func serve(t *testing.T, d Deps, path string) (int, map[string]any) {
	t.Helper()
	m := chi.NewRouter()
	Register(phttp.AdaptChi(m), d)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	var env struct {
		Data map[string]any `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec.Code, env.Data
}

func TestHealth(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	code, data := serve(t, Deps{
		ServiceName: "hellomama-api",
		StartedAt:   start,
		Now:         func() time.Time { return start.Add(90 * time.Second) },
	}, "/health")
	if code != stdhttp.StatusOK || data["service"] != "hellomama-api" || data["uptime_seconds"] != float64(90) {
		t.Fatalf("health = %d %v", code, data)
	}
}

func TestReady(t *testing.T) {
	cases := []struct {
		name   string
		pg, ch any
		code   int
		status string
	}{
		{"all up", pinger{}, pinger{}, stdhttp.StatusOK, "ok"},
		{"no clickhouse", pinger{}, nil, stdhttp.StatusOK, "ok"},
		{"pg not pingable", struct{}{}, nil, stdhttp.StatusOK, "degraded"},
		{"pg down", pinger{err: errors.New("refused")}, nil, stdhttp.StatusServiceUnavailable, "fail"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, data := serve(t, Deps{ServiceName: "x", PG: tc.pg, CH: tc.ch}, "/ready")
			if code != tc.code || data["status"] != tc.status {
				t.Fatalf("ready = %d %v", code, data)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	code, data := serve(t, Deps{ServiceName: "hellomama-worker"}, "/version")
	if code != stdhttp.StatusOK || data["service"] != "hellomama-worker" {
		t.Fatalf("version = %d %v", code, data)
	}
}
