// Package domain defines the lifecycle job queue types and ports
package domain

import (
	"context"
	"time"

	"hellomama/internal/modkit/repokit"
)

// Kind is the record type a job processes
type Kind string

// Job kinds
const (
	KindRegistration Kind = "registration"
	KindChange       Kind = "change"
)

// Job states
const (
	StateQueued = "queued"
	StateFailed = "failed"
)

// Job is one leased unit of work: process one record
type Job struct {
	ID             string
	Kind           Kind
	RecordID       string
	State          string
	Attempts       int
	LastError      string
	NextAttemptAt  time.Time
	LeasedBy       string
	LeaseExpiresAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Outcome values
const (
	OutcomeValidated = "validated"
	OutcomeInvalid   = "invalid"
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeRetry     = "retry"
	OutcomeFailed    = "failed"
)

// Outcome is what a handler reports for a record it finished
type Outcome struct {
	Outcome         string
	Detail          string
	MotherID        string
	RequestsCreated int
}

// Handler processes one record of a kind
type Handler interface {
	Process(ctx context.Context, recordID string) (Outcome, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, recordID string) (Outcome, error)

// Process calls f
func (f HandlerFunc) Process(ctx context.Context, recordID string) (Outcome, error) {
	return f(ctx, recordID)
}

// EnqueuePort queues a job inside the caller's transaction so a record and
// its job commit together
type EnqueuePort interface {
	Enqueue(ctx context.Context, q repokit.Queryer, kind Kind, recordID string) (string, error)
}

// WorkerPort runs the lease loop
type WorkerPort interface {
	Run(ctx context.Context) error
}

// AdminPort covers one-shot maintenance
type AdminPort interface {
	RequeueFailed(ctx context.Context) (int64, error)
}

// OutcomeRecord is one row for the outcome ledger
type OutcomeRecord struct {
	JobID           string
	Kind            Kind
	RecordID        string
	MotherID        string
	Outcome         string
	Detail          string
	RequestsCreated int
	Attempts        int
	ProcessedAt     time.Time
}

// OutcomeSink receives an OutcomeRecord for every job that finished or gave up
type OutcomeSink interface {
	Record(ctx context.Context, rec OutcomeRecord) error
}
