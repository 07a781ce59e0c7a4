// Package repo is the Postgres job queue behind the lifecycle worker
package repo

import (
	"context"
	"time"

	"hellomama/internal/modkit/repokit"
	"hellomama/internal/platform/store"
	"hellomama/internal/services/lifecycle/domain"

	"github.com/google/uuid"
)

// Repo is the queue persistence surface used by the service layer
type Repo interface {
	Enqueue(ctx context.Context, kind domain.Kind, recordID string) (string, error)
	Lease(ctx context.Context, workerID string, limit int, leaseFor time.Duration) ([]domain.Job, error)
	Complete(ctx context.Context, jobID string) error
	Requeue(ctx context.Context, jobID, lastErr string, nextAttemptAt time.Time) error
	Park(ctx context.Context, jobID, lastErr string) error
	RequeueFailed(ctx context.Context) (int64, error)
}

type (
	// PG is a Postgres implementation of the queue repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// Enqueue creates a job for a record; a record has at most one job
func (r *queries) Enqueue(ctx context.Context, kind domain.Kind, recordID string) (string, error) {
	const sqlq = `
		INSERT INTO engine_jobs (kind, record_id)
		VALUES ($1, $2)
		ON CONFLICT (kind, record_id)
		DO UPDATE SET updated_at = now()
		RETURNING job_id::text
	`
	return store.Scalar[string](ctx, r.q, sqlq, string(kind), recordID)
}

// Lease claims up to limit ready jobs; jobs with an expired lease are ready again
func (r *queries) Lease(ctx context.Context, workerID string, limit int, leaseFor time.Duration) ([]domain.Job, error) {
	if workerID == "" {
		workerID = uuid.NewString()
	}
	const sqlq = `
		WITH ready AS (
			SELECT job_id
			  FROM engine_jobs
			 WHERE state = 'queued'
			   AND next_attempt_at <= now()
			   AND (leased_by IS NULL OR lease_expires_at < now())
			 ORDER BY next_attempt_at ASC
			 LIMIT $1
			 FOR UPDATE SKIP LOCKED
		), upd AS (
			UPDATE engine_jobs j
			   SET leased_by = $2,
			       lease_expires_at = now() + make_interval(secs => $3),
			       updated_at = now()
			 WHERE j.job_id IN (SELECT job_id FROM ready)
			RETURNING j.*
		)
		SELECT job_id::text, kind, record_id::text, state, attempts, COALESCE(last_error, ''),
		       next_attempt_at, COALESCE(leased_by, ''), COALESCE(lease_expires_at, now()),
		       created_at, updated_at
		  FROM upd
	`
	return store.Many(ctx, r.q, scanJob, sqlq, limit, workerID, leaseFor.Seconds())
}

func scanJob(row store.Row) (domain.Job, error) {
	var j domain.Job
	var kind string
	err := row.Scan(
		&j.ID, &kind, &j.RecordID, &j.State, &j.Attempts, &j.LastError,
		&j.NextAttemptAt, &j.LeasedBy, &j.LeaseExpiresAt,
		&j.CreatedAt, &j.UpdatedAt,
	)
	j.Kind = domain.Kind(kind)
	return j, err
}

// Complete removes a finished job
func (r *queries) Complete(ctx context.Context, jobID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM engine_jobs WHERE job_id = $1`, jobID)
	return err
}

// Requeue schedules another attempt and clears the lease
func (r *queries) Requeue(ctx context.Context, jobID, lastErr string, nextAttemptAt time.Time) error {
	const sqlq = `
		UPDATE engine_jobs
		   SET attempts         = attempts + 1,
		       last_error       = NULLIF($2, ''),
		       next_attempt_at  = $3,
		       leased_by        = NULL,
		       lease_expires_at = NULL,
		       updated_at       = now()
		 WHERE job_id = $1
	`
	_, err := r.q.Exec(ctx, sqlq, jobID, lastErr, nextAttemptAt)
	return err
}

// Park stops retrying a job and keeps it for inspection
func (r *queries) Park(ctx context.Context, jobID, lastErr string) error {
	const sqlq = `
		UPDATE engine_jobs
		   SET state            = 'failed',
		       attempts         = attempts + 1,
		       last_error       = NULLIF($2, ''),
		       leased_by        = NULL,
		       lease_expires_at = NULL,
		       updated_at       = now()
		 WHERE job_id = $1
	`
	_, err := r.q.Exec(ctx, sqlq, jobID, lastErr)
	return err
}

// RequeueFailed puts every parked job back on the queue with a fresh attempt budget
func (r *queries) RequeueFailed(ctx context.Context) (int64, error) {
	const sqlq = `
		UPDATE engine_jobs
		   SET state           = 'queued',
		       attempts        = 0,
		       next_attempt_at = now(),
		       updated_at      = now()
		 WHERE state = 'failed'
	`
	tag, err := r.q.Exec(ctx, sqlq)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
