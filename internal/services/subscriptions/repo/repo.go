// Package repo persists the subscription requests the engine emits
package repo

import (
	"context"
	"encoding/json"

	"hellomama/internal/core/subreq"
	"hellomama/internal/modkit/repokit"
	perr "hellomama/internal/platform/errors"
	"hellomama/internal/platform/store"

	"github.com/google/uuid"
)

// Repo writes and reads subscription requests
type Repo interface {
	// Insert writes reqs, skipping any whose idempotency key already exists,
	// and returns how many rows were new
	Insert(ctx context.Context, reqs []subreq.Request) (int, error)
	CountByOrigin(ctx context.Context, origin subreq.Origin, originID string) (int, error)
	ListByOrigin(ctx context.Context, origin subreq.Origin, originID string) ([]subreq.Request, error)
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

func (r *queries) Insert(ctx context.Context, reqs []subreq.Request) (int, error) {
	const sqlq = `
		INSERT INTO subscription_requests (
			id, identity, role, messageset_id, next_sequence_number, lang, schedule_id,
			metadata, origin, origin_id, idempotency_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11)
		ON CONFLICT (idempotency_key) DO NOTHING
	`
	n := 0
	for _, rq := range reqs {
		id := rq.ID
		if id == "" {
			id = uuid.NewString()
		}
		meta, err := json.Marshal(orEmpty(rq.Metadata))
		if err != nil {
			return n, perr.Wrap(err, perr.ErrorCodeJSON, "encode request metadata")
		}
		tag, err := r.q.Exec(ctx, sqlq,
			id, rq.Identity, rq.Role, rq.MessageSetID, rq.NextSequenceNumber, rq.Language, rq.ScheduleID,
			string(meta), string(rq.Origin), rq.OriginID, rq.IdempotencyKey,
		)
		if err != nil {
			return n, perr.FromPostgres(err, "insert subscription request")
		}
		n += int(tag.RowsAffected())
	}
	return n, nil
}

func (r *queries) CountByOrigin(ctx context.Context, origin subreq.Origin, originID string) (int, error) {
	const sqlq = `SELECT count(*)::int FROM subscription_requests WHERE origin = $1 AND origin_id = $2`
	return store.Scalar[int](ctx, r.q, sqlq, string(origin), originID)
}

func (r *queries) ListByOrigin(ctx context.Context, origin subreq.Origin, originID string) ([]subreq.Request, error) {
	const sqlq = `
		SELECT id::text, identity, role, messageset_id, next_sequence_number, lang, schedule_id,
		       metadata, origin, origin_id::text, idempotency_key, created_at
		  FROM subscription_requests
		 WHERE origin = $1 AND origin_id = $2
		 ORDER BY created_at, role
	`
	return store.Many(ctx, r.q, scanRequest, sqlq, string(origin), originID)
}

func scanRequest(row store.Row) (subreq.Request, error) {
	var rq subreq.Request
	var meta []byte
	var origin string
	if err := row.Scan(
		&rq.ID, &rq.Identity, &rq.Role, &rq.MessageSetID, &rq.NextSequenceNumber, &rq.Language, &rq.ScheduleID,
		&meta, &origin, &rq.OriginID, &rq.IdempotencyKey, &rq.CreatedAt,
	); err != nil {
		return subreq.Request{}, err
	}
	rq.Origin = subreq.Origin(origin)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &rq.Metadata); err != nil {
			return subreq.Request{}, perr.Wrap(err, perr.ErrorCodeJSON, "decode request metadata")
		}
	}
	return rq, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
