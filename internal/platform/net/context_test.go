package net

import (
	"context"
	"testing"
)

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	if RequestID(ctx) != "" {
		t.Fatalf("empty ctx should have no request id")
	}
	if WithRequestID(ctx, "") != ctx {
		t.Fatalf("empty id should leave ctx untouched")
	}
	if got := RequestID(WithRequestID(ctx, "req-1")); got != "req-1" {
		t.Fatalf("RequestID = %q", got)
	}
}

func TestSource(t *testing.T) {
	ctx := WithSource(context.Background(), "clinic-a", "hw_full")
	name, auth := Source(ctx)
	if name != "clinic-a" || auth != "hw_full" {
		t.Fatalf("Source = %q, %q", name, auth)
	}
	name, auth = Source(context.Background())
	if name != "" || auth != "" {
		t.Fatalf("expected empty source, got %q %q", name, auth)
	}
}
