package repo

import (
	"context"
	"testing"

	"hellomama/internal/core/subreq"
)

func TestMemoryInsertSkipsDuplicateKeys(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	a := subreq.New(subreq.Spec{Identity: "m1", Role: "mother", Origin: subreq.OriginChange, OriginID: "c1"})
	b := subreq.New(subreq.Spec{Identity: "h1", Role: "household", Origin: subreq.OriginChange, OriginID: "c1"})

	n, err := m.Bind(nil).Insert(ctx, []subreq.Request{a, b})
	if err != nil || n != 2 {
		t.Fatalf("first insert n=%d err=%v", n, err)
	}
	n, err = m.Bind(nil).Insert(ctx, []subreq.Request{a})
	if err != nil || n != 0 {
		t.Fatalf("redelivered insert n=%d err=%v", n, err)
	}

	got, _ := m.CountByOrigin(ctx, subreq.OriginChange, "c1")
	if got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}
	none, _ := m.ListByOrigin(ctx, subreq.OriginRegistration, "c1")
	if len(none) != 0 {
		t.Fatalf("origin filter leaked %d rows", len(none))
	}
	for _, rq := range m.All() {
		if rq.ID == "" || rq.CreatedAt.IsZero() {
			t.Fatalf("row not stamped: %+v", rq)
		}
	}
}
