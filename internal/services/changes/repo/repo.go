// Package repo persists change records in Postgres
package repo

import (
	"context"
	"encoding/json"
	"time"

	"hellomama/internal/modkit/repokit"
	perr "hellomama/internal/platform/errors"
	"hellomama/internal/platform/store"
	"hellomama/internal/services/changes/domain"
)

// Repo is the changes persistence surface
type Repo interface {
	Insert(ctx context.Context, c domain.Change) (domain.Change, error)
	Get(ctx context.Context, id string) (domain.Change, error)
	MarkValidated(ctx context.Context, id string) error
	// LatestBabyChange returns the newest applied change_baby for motherID
	// created strictly before the given time
	LatestBabyChange(ctx context.Context, motherID string, before time.Time) (domain.Change, bool, error)
}

type (
	// PG is a Postgres implementation of the repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const columns = `id::text, mother_id, action, data, validated, source_name, source_authority, created_at, updated_at`

func (r *queries) Insert(ctx context.Context, c domain.Change) (domain.Change, error) {
	data := c.Data
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return domain.Change{}, perr.Wrap(err, perr.ErrorCodeJSON, "encode change data")
	}
	sqlq := `
		INSERT INTO changes (id, mother_id, action, data, validated, source_name, source_authority)
		VALUES ($1, $2, $3, $4::jsonb, false, $5, $6)
		RETURNING ` + columns
	out, err := store.One(ctx, r.q, scan, sqlq,
		c.ID, c.MotherID, string(c.Action), string(raw), c.Source.Name, c.Source.Authority)
	if err != nil {
		return domain.Change{}, perr.FromPostgres(err, "insert change")
	}
	return out, nil
}

func (r *queries) Get(ctx context.Context, id string) (domain.Change, error) {
	out, err := store.One(ctx, r.q, scan, `SELECT `+columns+` FROM changes WHERE id = $1`, id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Change{}, perr.NotFoundf("change %s not found", id)
		}
		return domain.Change{}, perr.FromPostgres(err, "get change")
	}
	return out, nil
}

func (r *queries) MarkValidated(ctx context.Context, id string) error {
	const sqlq = `UPDATE changes SET validated = true, updated_at = now() WHERE id = $1`
	if err := store.ExecOne(ctx, r.q, sqlq, id); err != nil {
		return perr.FromPostgres(err, "mark change validated")
	}
	return nil
}

func (r *queries) LatestBabyChange(ctx context.Context, motherID string, before time.Time) (domain.Change, bool, error) {
	sqlq := `SELECT ` + columns + `
		  FROM changes
		 WHERE mother_id = $1 AND action = $2 AND validated AND created_at < $3
		 ORDER BY created_at DESC
		 LIMIT 1`
	out, err := store.One(ctx, r.q, scan, sqlq, motherID, string(domain.KindChangeBaby), before)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Change{}, false, nil
		}
		return domain.Change{}, false, perr.FromPostgres(err, "latest change_baby")
	}
	return out, true, nil
}

func scan(row store.Row) (domain.Change, error) {
	var c domain.Change
	var action string
	var data []byte
	if err := row.Scan(
		&c.ID, &c.MotherID, &action, &data, &c.Validated,
		&c.Source.Name, &c.Source.Authority, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return domain.Change{}, err
	}
	c.Action = domain.ActionKind(action)
	c.Data = map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c.Data); err != nil {
			return domain.Change{}, perr.Wrap(err, perr.ErrorCodeJSON, "decode change data")
		}
	}
	return c, nil
}
