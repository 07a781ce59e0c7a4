package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"hellomama/internal/platform/logger"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	in := `
		SELECT job_id::text
		  FROM engine_jobs
		 WHERE state = 'queued'`
	if got := compact(in); got != "SELECT job_id::text FROM engine_jobs WHERE state = 'queued'" {
		t.Fatalf("compact = %q", got)
	}
	if compact(" \n\t") != "" {
		t.Fatalf("blank should compact to empty")
	}
}

func TestTracerLevels(t *testing.T) {
	cases := []struct {
		name  string
		ev    QueryEvent
		level string
	}{
		{"fast", QueryEvent{SQL: "SELECT 1", ElapsedUS: 900}, "debug"},
		{"slow", QueryEvent{SQL: "SELECT 1", ElapsedUS: 750_000, Slow: true}, "warn"},
		{"failed", QueryEvent{SQL: "SELECT 1", Err: errors.New("conn reset"), Slow: true}, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := logger.WithJob(context.Background(), "job-3", "change")
			Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel)).OnQuery(ctx, tc.ev)

			var line map[string]any
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
				t.Fatalf("not json: %v %q", err, buf.String())
			}
			if line["level"] != tc.level || line["component"] != "pg" || line["job_id"] != "job-3" {
				t.Fatalf("line = %v", line)
			}
			if line["elapsed_ms"].(float64) != float64(tc.ev.ElapsedUS)/1000 {
				t.Fatalf("elapsed = %v", line["elapsed_ms"])
			}
		})
	}
}
