// Package storetest opens a migrated throwaway Postgres for repo integration tests
package storetest

import (
	"context"
	"testing"
	"time"

	"hellomama/internal/platform/store"
	"hellomama/internal/platform/store/migrate"
	"hellomama/internal/platform/store/pg/pgtest"
)

// Open starts postgres, applies the embedded schema and returns the seam
func Open(t *testing.T) store.TxRunner {
	t.Helper()
	dsn := pgtest.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		AppName: "hellomama",
		Role:    "it",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4},
	})
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if err := migrate.Apply(ctx, st.PG); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st.PG
}
