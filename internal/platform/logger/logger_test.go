package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		" INFO ":   zerolog.InfoLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"panic":    zerolog.PanicLevel,
		"":         zerolog.DebugLevel,
		"chatty":   zerolog.DebugLevel,
		"disabled": zerolog.Disabled,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_SERVICE", "hellomama-worker")
	t.Setenv("LOG_CALLER", "1")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	o := FromEnv()
	if o.Level != "warn" || o.Format != "json" || o.Service != "hellomama-worker" {
		t.Fatalf("options = %+v", o)
	}
	if !o.WithCaller || o.SampleEvery != 5 {
		t.Fatalf("caller/sample = %+v", o)
	}
}

// Init runs once per process, so every assertion on the configured root
// logger lives in this one test
func TestContextFieldsReachJSONLines(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		Level:        "debug",
		Format:       "json",
		Service:      "hellomama-worker",
		Writer:       &buf,
		StaticFields: map[string]string{"env": "test"},
	})

	ctx := WithRequest(context.Background(), "req-7", "clinic")
	ctx = WithJob(ctx, "job-9", "registration")
	C(ctx).Info().Str("registration_id", "r-1").Msg("job done")
	Named("outcomes").Warn().Msg("ledger unavailable")
	C(WithRequest(context.Background(), "", "")).Debug().Msg("bare")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d\n%s", len(lines), buf.String())
	}
	var first, second, third map[string]any
	for i, dst := range []*map[string]any{&first, &second, &third} {
		if err := json.Unmarshal([]byte(lines[i]), dst); err != nil {
			t.Fatalf("line %d not json: %v", i, err)
		}
	}

	want := map[string]string{
		"service": "hellomama-worker", "env": "test", "request_id": "req-7",
		"source": "clinic", "job_id": "job-9", "job_kind": "registration",
		"registration_id": "r-1", "message": "job done",
	}
	for k, v := range want {
		if first[k] != v {
			t.Fatalf("%s = %v want %v", k, first[k], v)
		}
	}
	if second["component"] != "outcomes" || second["level"] != "warn" {
		t.Fatalf("named line = %v", second)
	}
	if _, ok := third["request_id"]; ok {
		t.Fatalf("empty request id should not be logged: %v", third)
	}
}
