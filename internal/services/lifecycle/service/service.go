// Package service implements the lifecycle job queue: enqueue, lease, dispatch
// to the record handlers, then complete, requeue with backoff, or park
package service

import (
	"context"
	"sync"
	"time"

	"hellomama/internal/modkit"
	"hellomama/internal/modkit/repokit"
	perr "hellomama/internal/platform/errors"

	dom "hellomama/internal/services/lifecycle/domain"
	lrepo "hellomama/internal/services/lifecycle/repo"
)

// Config controls the worker
type Config struct {
	WorkerID       string
	Concurrency    int
	QueueTakeBatch int
	PollEvery      time.Duration
	LeaseFor       time.Duration
	RetryBase      time.Duration
	MaxAttempts    int
}

// Svc implements the enqueue, worker and admin ports
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[lrepo.Repo]
	repo   lrepo.Repo

	mu       sync.RWMutex
	handlers map[dom.Kind]dom.Handler
	sink     dom.OutcomeSink

	cfg  Config
	now  func() time.Time
	deps modkit.Deps
}

var (
	_ dom.EnqueuePort = (*Svc)(nil)
	_ dom.WorkerPort  = (*Svc)(nil)
	_ dom.AdminPort   = (*Svc)(nil)
)

// New constructs the service over the Postgres queue
func New(deps modkit.Deps, cfg Config) *Svc {
	return NewWithBinder(deps, lrepo.NewPG(), cfg)
}

// NewWithBinder constructs the service over any queue repo
func NewWithBinder(deps modkit.Deps, b repokit.Binder[lrepo.Repo], cfg Config) *Svc {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.QueueTakeBatch <= 0 {
		cfg.QueueTakeBatch = 16
	}
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 500 * time.Millisecond
	}
	if cfg.LeaseFor <= 0 {
		cfg.LeaseFor = 2 * time.Minute
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 8
	}
	s := &Svc{
		db:       deps.PG,
		binder:   b,
		handlers: map[dom.Kind]dom.Handler{},
		cfg:      cfg,
		now:      time.Now,
		deps:     deps,
	}
	if deps.PG != nil {
		s.repo = b.Bind(deps.PG)
	}
	return s
}

// Handle registers the handler for a record kind
func (s *Svc) Handle(kind dom.Kind, h dom.Handler) {
	s.mu.Lock()
	s.handlers[kind] = h
	s.mu.Unlock()
}

// SetSink sets where finished job outcomes are recorded
func (s *Svc) SetSink(sink dom.OutcomeSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// Enqueue queues a job for recordID using q, which may be an open transaction
func (s *Svc) Enqueue(ctx context.Context, q repokit.Queryer, kind dom.Kind, recordID string) (string, error) {
	if q == nil {
		q = s.db
	}
	if q == nil {
		return "", perr.Unavailablef("lifecycle: no database")
	}
	id, err := s.binder.Bind(q).Enqueue(ctx, kind, recordID)
	if err != nil {
		return "", perr.FromPostgres(err, "enqueue job")
	}
	return id, nil
}

// RequeueFailed moves every parked job back to the queue
func (s *Svc) RequeueFailed(ctx context.Context) (int64, error) {
	if s.repo == nil {
		return 0, perr.Unavailablef("lifecycle: no database")
	}
	return s.repo.RequeueFailed(ctx)
}

func (s *Svc) handler(kind dom.Kind) dom.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handlers[kind]
}

func (s *Svc) outcomeSink() dom.OutcomeSink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sink
}
