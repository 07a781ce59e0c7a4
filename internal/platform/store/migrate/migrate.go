// Package migrate applies the embedded Postgres schema once per file
package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"hellomama/internal/platform/store"
)

//go:embed sql/*.sql
var files embed.FS

const table = "schema_migrations"

// Apply runs every embedded migration that has not been recorded yet, each in
// its own transaction
func Apply(ctx context.Context, db store.TxRunner) error {
	return ApplyFS(ctx, db, files, "sql")
}

// ApplyFS is Apply over any migration directory
func ApplyFS(ctx context.Context, db store.TxRunner, fsys fs.FS, root string) error {
	if db == nil {
		return fmt.Errorf("migrate: nil database")
	}
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("migrate: read dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if _, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+table+` (
		name       text PRIMARY KEY,
		applied_at timestamptz NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("migrate: ensure table: %w", err)
	}

	for _, name := range names {
		raw, err := fs.ReadFile(fsys, root+"/"+name)
		if err != nil {
			return fmt.Errorf("migrate: read %s: %w", name, err)
		}
		up := Up(string(raw))
		if strings.TrimSpace(up) == "" {
			continue
		}
		err = db.Tx(ctx, func(q store.RowQuerier) error {
			n, err := store.Scalar[int](ctx, q, `SELECT count(*)::int FROM `+table+` WHERE name = $1`, name)
			if err != nil || n > 0 {
				return err
			}
			if _, err := q.Exec(ctx, up); err != nil {
				return err
			}
			_, err = q.Exec(ctx, `INSERT INTO `+table+` (name) VALUES ($1)`, name)
			return err
		})
		if err != nil {
			return fmt.Errorf("migrate: %s: %w", name, err)
		}
	}
	return nil
}

// Up returns the part of a migration between "-- +migrate Up" and
// "-- +migrate Down"; files without markers are all up
func Up(content string) string {
	i := strings.Index(content, "-- +migrate Up")
	if i < 0 {
		return content
	}
	rest := content[i+len("-- +migrate Up"):]
	if j := strings.Index(rest, "-- +migrate Down"); j >= 0 {
		return rest[:j]
	}
	return rest
}
