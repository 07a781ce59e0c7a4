// Package repo persists registrations in Postgres
package repo

import (
	"context"
	"encoding/json"

	"hellomama/internal/modkit/repokit"
	perr "hellomama/internal/platform/errors"
	"hellomama/internal/platform/store"
	"hellomama/internal/services/registrations/domain"
)

// Repo is the registrations persistence surface
type Repo interface {
	Insert(ctx context.Context, r domain.Registration) (domain.Registration, error)
	Get(ctx context.Context, id string) (domain.Registration, error)
	SaveValidation(ctx context.Context, id string, data map[string]any, validated bool) error
	LatestValidated(ctx context.Context, motherID string) (domain.Registration, bool, error)
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

const columns = `id::text, mother_id, stage, data, validated, source_name, source_authority, created_at, updated_at`

func (r *queries) Insert(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	data, err := json.Marshal(orEmpty(reg.Data))
	if err != nil {
		return domain.Registration{}, perr.Wrap(err, perr.ErrorCodeJSON, "encode registration data")
	}
	sqlq := `
		INSERT INTO registrations (id, mother_id, stage, data, validated, source_name, source_authority)
		VALUES ($1, $2, $3, $4::jsonb, false, $5, $6)
		RETURNING ` + columns
	out, err := store.One(ctx, r.q, scan, sqlq,
		reg.ID, reg.MotherID, reg.Stage, string(data), reg.Source.Name, reg.Source.Authority)
	if err != nil {
		return domain.Registration{}, perr.FromPostgres(err, "insert registration")
	}
	return out, nil
}

func (r *queries) Get(ctx context.Context, id string) (domain.Registration, error) {
	out, err := store.One(ctx, r.q, scan, `SELECT `+columns+` FROM registrations WHERE id = $1`, id)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Registration{}, perr.NotFoundf("registration %s not found", id)
		}
		return domain.Registration{}, perr.FromPostgres(err, "get registration")
	}
	return out, nil
}

func (r *queries) SaveValidation(ctx context.Context, id string, data map[string]any, validated bool) error {
	raw, err := json.Marshal(orEmpty(data))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode registration data")
	}
	const sqlq = `
		UPDATE registrations
		   SET data = $2::jsonb, validated = $3, updated_at = now()
		 WHERE id = $1
	`
	if err := store.ExecOne(ctx, r.q, sqlq, id, string(raw), validated); err != nil {
		return perr.FromPostgres(err, "save registration validation")
	}
	return nil
}

func (r *queries) LatestValidated(ctx context.Context, motherID string) (domain.Registration, bool, error) {
	sqlq := `SELECT ` + columns + `
		  FROM registrations
		 WHERE mother_id = $1 AND validated
		 ORDER BY created_at DESC
		 LIMIT 1`
	out, err := store.One(ctx, r.q, scan, sqlq, motherID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Registration{}, false, nil
		}
		return domain.Registration{}, false, perr.FromPostgres(err, "latest registration")
	}
	return out, true, nil
}

func scan(row store.Row) (domain.Registration, error) {
	var reg domain.Registration
	var data []byte
	if err := row.Scan(
		&reg.ID, &reg.MotherID, &reg.Stage, &data, &reg.Validated,
		&reg.Source.Name, &reg.Source.Authority, &reg.CreatedAt, &reg.UpdatedAt,
	); err != nil {
		return domain.Registration{}, err
	}
	reg.Data = map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &reg.Data); err != nil {
			return domain.Registration{}, perr.Wrap(err, perr.ErrorCodeJSON, "decode registration data")
		}
	}
	return reg, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
