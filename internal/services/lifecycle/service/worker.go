package service

import (
	"context"
	"errors"
	"sync"
	"time"

	perr "hellomama/internal/platform/errors"
	"hellomama/internal/platform/logger"

	dom "hellomama/internal/services/lifecycle/domain"
	"hellomama/internal/services/lifecycle/metrics"
)

// Run leases batches and processes them under a semaphore until ctx ends
func (s *Svc) Run(ctx context.Context) error {
	if s.repo == nil {
		return perr.Unavailablef("lifecycle: no database")
	}
	log := logger.Named("lifecycle-worker")
	log.Info().
		Str("worker_id", s.cfg.WorkerID).
		Int("concurrency", s.cfg.Concurrency).
		Int("max_attempts", s.cfg.MaxAttempts).
		Msg("worker started")

	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup
	defer wg.Wait()

	ticker := time.NewTicker(s.cfg.PollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker stopping")
			return ctx.Err()
		case <-ticker.C:
			jobs, err := s.repo.Lease(ctx, s.cfg.WorkerID, s.cfg.QueueTakeBatch, s.cfg.LeaseFor)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("lease jobs failed")
				}
				continue
			}
			for i := range jobs {
				j := jobs[i]
				sem <- struct{}{}
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer func() { <-sem }()
					if err := s.handleJob(ctx, j); err != nil {
						log.Warn().Err(err).Str("job_id", j.ID).Msg("job bookkeeping failed")
					}
				}()
			}
		}
	}
}

// handleJob runs one job and records what happened to it. The returned error
// is only about queue bookkeeping; handler failures are absorbed into a
// requeue or a park
func (s *Svc) handleJob(ctx context.Context, j dom.Job) error {
	ctx = logger.WithJob(ctx, j.ID, string(j.Kind))
	log := logger.C(ctx)

	metrics.InFlight.Inc()
	defer metrics.InFlight.Dec()
	start := s.now()

	h := s.handler(j.Kind)
	if h == nil {
		log.Error().Msg("no handler for job kind")
		s.record(ctx, j, dom.Outcome{Outcome: dom.OutcomeFailed, Detail: "no handler"}, j.Attempts+1)
		return s.repo.Park(ctx, j.ID, "no handler for kind "+string(j.Kind))
	}

	out, procErr := s.process(ctx, h, j)
	metrics.ObserveDuration(string(j.Kind), procErr == nil, start)

	if procErr == nil {
		metrics.JobsTotal.WithLabelValues(string(j.Kind), out.Outcome).Inc()
		if out.RequestsCreated > 0 {
			metrics.RequestsCreated.WithLabelValues(string(j.Kind)).Add(float64(out.RequestsCreated))
		}
		log.Info().
			Str("record_id", j.RecordID).
			Str("outcome", out.Outcome).
			Int("requests_created", out.RequestsCreated).
			Msg("job done")
		s.record(ctx, j, out, j.Attempts+1)
		return s.repo.Complete(ctx, j.ID)
	}

	attempt := j.Attempts + 1
	if !perr.Retryable(procErr) || attempt >= s.cfg.MaxAttempts {
		metrics.JobsTotal.WithLabelValues(string(j.Kind), dom.OutcomeFailed).Inc()
		log.Error().Err(procErr).Int("attempt", attempt).Str("record_id", j.RecordID).Msg("job parked")
		s.record(ctx, j, dom.Outcome{Outcome: dom.OutcomeFailed, Detail: procErr.Error(), MotherID: out.MotherID}, attempt)
		return s.repo.Park(ctx, j.ID, procErr.Error())
	}

	next := s.now().UTC().Add(s.backoff(j.Attempts))
	metrics.JobsTotal.WithLabelValues(string(j.Kind), dom.OutcomeRetry).Inc()
	log.Warn().Err(procErr).Int("attempt", attempt).Time("next_attempt_at", next).Msg("job requeued")
	return s.repo.Requeue(ctx, j.ID, procErr.Error(), next)
}

// process shields the loop from handler panics
func (s *Svc) process(ctx context.Context, h dom.Handler, j dom.Job) (out dom.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perr.PanicErrf("handler panic: %v", r)
		}
	}()
	return h.Process(ctx, j.RecordID)
}

func (s *Svc) backoff(attempt int) time.Duration {
	d := s.cfg.RetryBase << uint(attempt)
	if d <= 0 || d > 10*time.Minute {
		return 10 * time.Minute
	}
	return d
}

func (s *Svc) record(ctx context.Context, j dom.Job, out dom.Outcome, attempts int) {
	sink := s.outcomeSink()
	if sink == nil {
		return
	}
	rec := dom.OutcomeRecord{
		JobID:           j.ID,
		Kind:            j.Kind,
		RecordID:        j.RecordID,
		MotherID:        out.MotherID,
		Outcome:         out.Outcome,
		Detail:          out.Detail,
		RequestsCreated: out.RequestsCreated,
		Attempts:        attempts,
		ProcessedAt:     s.now().UTC(),
	}
	if err := sink.Record(ctx, rec); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("outcome ledger write failed")
	}
}
