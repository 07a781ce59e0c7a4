package seed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	perr "hellomama/internal/platform/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Options{Name: "test", BaseURL: srv.URL + "/", Token: "tok", MaxRetries: 2, RetryBase: time.Millisecond})
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func TestGetSendsAuthAndDecodes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token tok" {
			t.Fatalf("authorization %q", got)
		}
		if r.URL.Path != "/messageset/" || r.URL.Query().Get("short_name") != "a.b" {
			t.Fatalf("unexpected url %s", r.URL)
		}
		_ = json.NewEncoder(w).Encode(Page[map[string]int]{Count: 1, Results: []map[string]int{{"id": 7}}})
	})

	var out Page[map[string]int]
	if err := c.Get(context.Background(), "/messageset/", url.Values{"short_name": {"a.b"}}, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Count != 1 || out.Results[0]["id"] != 7 {
		t.Fatalf("decoded %+v", out)
	}
}

func TestPatchSendsJSONBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("method %s ct %s", r.Method, r.Header.Get("Content-Type"))
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["active"] != false {
			t.Fatalf("body %+v", body)
		}
		w.WriteHeader(http.StatusOK)
	})
	if err := c.Patch(context.Background(), "/subscriptions/x/", map[string]any{"active": false}, nil); err != nil {
		t.Fatalf("patch: %v", err)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		code   perr.ErrorCode
	}{
		{http.StatusNotFound, perr.ErrorCodeNotFound},
		{http.StatusBadRequest, perr.ErrorCodeInvalidArgument},
		{http.StatusUnauthorized, perr.ErrorCodeUnauthorized},
		{http.StatusForbidden, perr.ErrorCodeForbidden},
		{http.StatusInternalServerError, perr.ErrorCodeUnavailable},
		{http.StatusTeapot, perr.ErrorCodeUnknown},
	}
	for _, tc := range cases {
		c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"detail":"nope"}`))
		})
		err := c.Get(context.Background(), "/x/", nil, nil)
		if perr.CodeOf(err) != tc.code {
			t.Fatalf("status %d got code %v err %v", tc.status, perr.CodeOf(err), err)
		}
	}
}

func TestRetriesGatewayThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	c, slept := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	var out struct{ ID int }
	if err := c.Get(context.Background(), "/x/", nil, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.ID != 1 || calls.Load() != 3 {
		t.Fatalf("id %d calls %d", out.ID, calls.Load())
	}
	if len(*slept) != 2 || (*slept)[1] != 2*time.Millisecond {
		t.Fatalf("backoff %v", *slept)
	}
}

func TestGatewayExhaustedIsUnavailable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	err := c.Get(context.Background(), "/x/", nil, nil)
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want unavailable got %v", err)
	}
}

func TestThrottleHonoursRetryAfter(t *testing.T) {
	c, slept := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	err := c.Get(context.Background(), "/x/", nil, nil)
	if !perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
		t.Fatalf("want too many requests got %v", err)
	}
	if len(*slept) != 2 || (*slept)[0] != 3*time.Second {
		t.Fatalf("sleeps %v", *slept)
	}
}

func TestCancelledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Get(ctx, "/x/", nil, nil); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want unavailable got %v", err)
	}
}

func TestBackoffCaps(t *testing.T) {
	c := NewClient(Options{RetryBase: time.Second})
	if got := c.backoff(10); got != maxBackoff {
		t.Fatalf("backoff %v", got)
	}
	if got := c.backoff(1); got != 2*time.Second {
		t.Fatalf("backoff %v", got)
	}
}
