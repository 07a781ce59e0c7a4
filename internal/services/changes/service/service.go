// Package service records change requests and applies them to live subscriptions
package service

import (
	"context"

	"hellomama/internal/core/engine"
	"hellomama/internal/core/messageset"
	"hellomama/internal/core/subreq"
	"hellomama/internal/core/subscriber"
	"hellomama/internal/modkit/repokit"
	perr "hellomama/internal/platform/errors"
	"hellomama/internal/platform/logger"
	ptime "hellomama/internal/platform/time"

	dom "hellomama/internal/services/changes/domain"
	crepo "hellomama/internal/services/changes/repo"
	lifedom "hellomama/internal/services/lifecycle/domain"
	regdom "hellomama/internal/services/registrations/domain"
	srepo "hellomama/internal/services/subscriptions/repo"

	"github.com/google/uuid"
)

// Collaborators are the external systems a change touches
type Collaborators struct {
	Catalog       messageset.Catalog
	Subscriptions subscriber.Subscriptions
	Identities    subscriber.Identities
}

// Config is everything New needs beyond the database
type Config struct {
	Rules         engine.Rules
	Collab        Collaborators
	Registrations regdom.Reader
	Enqueue       lifedom.EnqueuePort
	Clock         ptime.Clock

	// Binders default to the Postgres repos
	Changes  repokit.Binder[crepo.Repo]
	Requests repokit.Binder[srepo.Repo]
}

// Svc implements domain.Service and the lifecycle handler for changes
type Svc struct {
	db      repokit.TxRunner
	changes repokit.Binder[crepo.Repo]
	reqs    repokit.Binder[srepo.Repo]
	regs    regdom.Reader
	enq     lifedom.EnqueuePort
	rules   engine.Rules
	collab  Collaborators
	clock   ptime.Clock
}

var (
	_ dom.Service     = (*Svc)(nil)
	_ lifedom.Handler = (*Svc)(nil)
)

// New constructs the service
func New(db repokit.TxRunner, cfg Config) *Svc {
	if cfg.Changes == nil {
		cfg.Changes = crepo.NewPG()
	}
	if cfg.Requests == nil {
		cfg.Requests = srepo.NewPG()
	}
	return &Svc{
		db:      db,
		changes: cfg.Changes,
		reqs:    cfg.Requests,
		regs:    cfg.Registrations,
		enq:     cfg.Enqueue,
		rules:   cfg.Rules,
		collab:  cfg.Collab,
		clock:   cfg.Clock,
	}
}

// Create checks the action payload, stores the change and queues it in one transaction
func (s *Svc) Create(ctx context.Context, in dom.CreateInput) (dom.Change, error) {
	act, err := dom.ParseAction(in.Action, in.Data)
	if err != nil {
		return dom.Change{}, err
	}
	if _, err := canonical(s.rules, act); err != nil {
		return dom.Change{}, err
	}

	c := dom.Change{
		ID:       uuid.NewString(),
		MotherID: in.MotherID,
		Action:   in.Action,
		Data:     in.Data,
		Source:   in.Source,
	}
	var out dom.Change
	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		saved, err := s.changes.Bind(q).Insert(ctx, c)
		if err != nil {
			return err
		}
		if _, err := s.enq.Enqueue(ctx, q, lifedom.KindChange, saved.ID); err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return dom.Change{}, perr.WrapKeep(err, perr.ErrorCodeDB, "create change")
	}
	logger.C(ctx).Info().
		Str("change_id", out.ID).
		Str("action", string(out.Action)).
		Msg("change queued")
	return out, nil
}

// Get returns a change with the requests it produced
func (s *Svc) Get(ctx context.Context, id string) (dom.View, error) {
	c, err := s.changes.Bind(s.db).Get(ctx, id)
	if err != nil {
		return dom.View{}, err
	}
	reqs, err := s.reqs.Bind(s.db).ListByOrigin(ctx, subreq.OriginChange, id)
	if err != nil {
		return dom.View{}, err
	}
	if reqs == nil {
		reqs = []subreq.Request{}
	}
	return dom.View{Change: c, SubscriptionRequests: reqs}, nil
}

// Process applies one change. Replacement tracks are resolved before any
// subscription is touched, so a catalog failure leaves the mother subscribed
func (s *Svc) Process(ctx context.Context, id string) (lifedom.Outcome, error) {
	c, err := s.changes.Bind(s.db).Get(ctx, id)
	if err != nil {
		return lifedom.Outcome{}, err
	}
	log := logger.C(ctx).With().Str("change_id", id).Str("action", string(c.Action)).Logger()
	out := lifedom.Outcome{MotherID: c.MotherID, Detail: string(c.Action)}

	if c.Validated {
		log.Info().Msg("change already applied")
		out.Outcome = lifedom.OutcomeSkipped
		return out, nil
	}

	act, err := c.Parse()
	if err == nil {
		act, err = canonical(s.rules, act)
	}
	if err != nil {
		log.Warn().Err(err).Msg("change payload rejected")
		out.Outcome = lifedom.OutcomeInvalid
		out.Detail = err.Error()
		return out, nil
	}

	r := &run{
		svc:    s,
		change: c,
		cache:  messageset.NewCache(s.collab.Catalog),
		now:    s.clock.Now(),
		log:    log,
	}
	r.res = messageset.NewResolver(r.cache, s.rules.PrebirthMinWeeks)

	var reqs []subreq.Request
	switch a := act.(type) {
	case dom.ChangeMessaging:
		reqs, err = r.changeMessaging(ctx, a)
	case dom.ChangeBaby:
		reqs, err = r.replaceAll(ctx, messageset.StagePostbirth)
	case dom.ChangeLoss:
		reqs, err = r.replaceAll(ctx, messageset.StageMiscarriage)
	case dom.ChangeLanguage:
		err = r.changeLanguage(ctx, a)
	case dom.UnsubscribeMother:
		err = r.deactivate(ctx, c.MotherID)
	case dom.UnsubscribeHousehold:
		err = r.deactivate(ctx, a.HouseholdID)
	default:
		err = perr.Internalf("unhandled action %T", act)
	}
	if err != nil {
		return out, err
	}

	created := 0
	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		if len(reqs) > 0 {
			n, err := s.reqs.Bind(q).Insert(ctx, reqs)
			if err != nil {
				return err
			}
			created = n
		}
		return s.changes.Bind(q).MarkValidated(ctx, id)
	})
	if err != nil {
		return out, err
	}
	log.Info().Int("requests", created).Int("catalog_reads", r.cache.Misses()).Msg("change applied")
	out.Outcome = lifedom.OutcomeProcessed
	out.RequestsCreated = created
	return out, nil
}
