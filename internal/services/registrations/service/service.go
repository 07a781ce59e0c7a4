// Package service validates registrations and turns valid ones into
// subscription requests
package service

import (
	"context"
	"strings"

	"hellomama/internal/core/engine"
	"hellomama/internal/core/messageset"
	"hellomama/internal/core/subreq"
	"hellomama/internal/core/subscriber"
	"hellomama/internal/modkit/repokit"
	perr "hellomama/internal/platform/errors"
	"hellomama/internal/platform/logger"
	ptime "hellomama/internal/platform/time"

	lifedom "hellomama/internal/services/lifecycle/domain"
	dom "hellomama/internal/services/registrations/domain"
	rrepo "hellomama/internal/services/registrations/repo"
	srepo "hellomama/internal/services/subscriptions/repo"

	"github.com/google/uuid"
)

// Collaborators are the external systems the service talks to
type Collaborators struct {
	Catalog    messageset.Catalog
	Identities subscriber.Identities
	Messages   subscriber.Messages
}

// Svc implements domain.Service and the lifecycle handler for registrations
type Svc struct {
	db    repokit.TxRunner
	regs  repokit.Binder[rrepo.Repo]
	subs  repokit.Binder[srepo.Repo]
	enq   lifedom.EnqueuePort
	cat   messageset.Catalog
	clock ptime.Clock

	validator Validator
	factory   Factory
}

var (
	_ dom.Service     = (*Svc)(nil)
	_ lifedom.Handler = (*Svc)(nil)
)

// Config is everything New needs beyond the database
type Config struct {
	Rules   engine.Rules
	Collab  Collaborators
	Enqueue lifedom.EnqueuePort
	Clock   ptime.Clock

	// Binders default to the Postgres repos
	Registrations repokit.Binder[rrepo.Repo]
	Requests      repokit.Binder[srepo.Repo]
}

// New constructs the service
func New(db repokit.TxRunner, cfg Config) *Svc {
	if cfg.Registrations == nil {
		cfg.Registrations = rrepo.NewPG()
	}
	if cfg.Requests == nil {
		cfg.Requests = srepo.NewPG()
	}
	return &Svc{
		db:        db,
		regs:      cfg.Registrations,
		subs:      cfg.Requests,
		enq:       cfg.Enqueue,
		cat:       cfg.Collab.Catalog,
		clock:     cfg.Clock,
		validator: Validator{Rules: cfg.Rules, Clock: cfg.Clock},
		factory: Factory{
			Rules:      cfg.Rules,
			Identities: cfg.Collab.Identities,
			Messages:   cfg.Collab.Messages,
		},
	}
}

// Create stores a registration and queues it for processing in one transaction
func (s *Svc) Create(ctx context.Context, in dom.CreateInput) (dom.Registration, error) {
	reg := dom.Registration{
		ID:       uuid.NewString(),
		MotherID: in.MotherID,
		Stage:    in.Stage,
		Data:     in.Data,
		Source:   in.Source,
	}
	var out dom.Registration
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		saved, err := s.regs.Bind(q).Insert(ctx, reg)
		if err != nil {
			return err
		}
		if _, err := s.enq.Enqueue(ctx, q, lifedom.KindRegistration, saved.ID); err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return dom.Registration{}, perr.WrapKeep(err, perr.ErrorCodeDB, "create registration")
	}
	logger.C(ctx).Info().
		Str("registration_id", out.ID).
		Str("stage", out.Stage).
		Msg("registration queued")
	return out, nil
}

// Get returns a registration with the requests built for it
func (s *Svc) Get(ctx context.Context, id string) (dom.View, error) {
	reg, err := s.regs.Bind(s.db).Get(ctx, id)
	if err != nil {
		return dom.View{}, err
	}
	reqs, err := s.subs.Bind(s.db).ListByOrigin(ctx, subreq.OriginRegistration, id)
	if err != nil {
		return dom.View{}, err
	}
	if reqs == nil {
		reqs = []subreq.Request{}
	}
	return dom.View{Registration: reg, SubscriptionRequests: reqs}, nil
}

// LatestValidated implements domain.Reader
func (s *Svc) LatestValidated(ctx context.Context, motherID string) (dom.Registration, bool, error) {
	return s.regs.Bind(s.db).LatestValidated(ctx, motherID)
}

// Process validates a registration and, when valid, writes its subscription
// requests together with the validation result. A redelivered job for a
// registration that already has requests does nothing, which also keeps the
// welcome text from going out twice
func (s *Svc) Process(ctx context.Context, id string) (lifedom.Outcome, error) {
	log := logger.C(ctx).With().Str("registration_id", id).Logger()

	reg, err := s.regs.Bind(s.db).Get(ctx, id)
	if err != nil {
		return lifedom.Outcome{}, err
	}
	out := lifedom.Outcome{MotherID: reg.MotherID}

	if reg.Validated {
		n, err := s.subs.Bind(s.db).CountByOrigin(ctx, subreq.OriginRegistration, id)
		if err != nil {
			return out, err
		}
		if n > 0 {
			log.Info().Int("requests", n).Msg("registration already processed")
			out.Outcome = lifedom.OutcomeSkipped
			out.Detail = "already processed"
			return out, nil
		}
	}

	v := s.validator.Validate(reg)
	if !v.Valid {
		if err := s.regs.Bind(s.db).SaveValidation(ctx, id, v.Data, false); err != nil {
			return out, err
		}
		log.Info().Str("reason", v.Reason).Strs("fields", v.Fields).Msg("registration invalid")
		out.Outcome = lifedom.OutcomeInvalid
		out.Detail = v.Reason
		if len(v.Fields) > 0 {
			out.Detail = v.Reason + ": " + strings.Join(v.Fields, ",")
		}
		return out, nil
	}

	reg.Data = v.Data
	reg.Validated = true
	reqs, err := s.factory.Build(ctx, messageset.NewCache(s.cat), reg)
	if err != nil {
		return out, err
	}

	created := 0
	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		if err := s.regs.Bind(q).SaveValidation(ctx, id, v.Data, true); err != nil {
			return err
		}
		n, err := s.subs.Bind(q).Insert(ctx, reqs)
		created = n
		return err
	})
	if err != nil {
		return out, err
	}
	log.Info().Str("reg_type", v.RegType).Int("weeks", v.Weeks).Int("requests", created).Msg("registration validated")
	out.Outcome = lifedom.OutcomeValidated
	out.Detail = v.RegType
	out.RequestsCreated = created
	return out, nil
}
