package service

import (
	"context"
	"time"

	"hellomama/internal/core/engine"
	"hellomama/internal/core/messageset"
	"hellomama/internal/core/normalize"
	"hellomama/internal/core/subreq"
	"hellomama/internal/core/subscriber"
	perr "hellomama/internal/platform/errors"
	"hellomama/internal/platform/logger"
	ptime "hellomama/internal/platform/time"

	dom "hellomama/internal/services/changes/domain"
	regdom "hellomama/internal/services/registrations/domain"
)

// run is the state for applying one change. The cache lives as long as the run
type run struct {
	svc    *Svc
	change dom.Change
	cache  *messageset.Cache
	res    messageset.Resolver
	now    time.Time
	log    logger.Logger
}

// target is one identity whose track is being replaced
type target struct {
	identity string
	role     string
	sub      *subscriber.Subscription
	req      subreq.Request
}

func (r *run) changeMessaging(ctx context.Context, a dom.ChangeMessaging) ([]subreq.Request, error) {
	mother := r.change.MotherID
	sub, err := r.active(ctx, mother)
	if err != nil {
		return nil, err
	}

	cur := messageset.NameInput{}
	lang := ""
	if sub != nil {
		ms, err := r.cache.GetMessageSet(ctx, sub.MessageSet)
		if err != nil {
			return nil, perr.WrapKeep(err, perr.ErrorCodeUnavailable, "current message set")
		}
		if in, ok := messageset.ParseName(ms.ShortName); ok {
			cur = in
		}
		lang = sub.Lang
	}

	baby, hasBaby, err := r.svc.changes.Bind(r.svc.db).LatestBabyChange(ctx, mother, r.change.CreatedAt)
	if err != nil {
		return nil, err
	}
	var reg regdom.Registration
	hasReg := false
	if !hasBaby || sub == nil {
		reg, hasReg, err = r.svc.regs.LatestValidated(ctx, mother)
		if err != nil {
			return nil, err
		}
		if !hasReg && !hasBaby {
			return nil, perr.WithOp(perr.NotFoundf("no validated registration for mother %s", mother), "change_messaging")
		}
	}
	if sub == nil && hasReg {
		cur.MsgType = reg.Str(regdom.FieldMsgType)
		cur.VoiceDays = reg.Str(regdom.FieldVoiceDays)
		cur.VoiceTimes = reg.Str(regdom.FieldVoiceTimes)
		lang = reg.Str(regdom.FieldLanguage)
	}

	in := messageset.NameInput{
		Role:       messageset.RoleMother,
		MsgType:    pick(a.MsgType, cur.MsgType, messageset.MsgText),
		VoiceDays:  pick(a.VoiceDays, cur.VoiceDays),
		VoiceTimes: pick(a.VoiceTimes, cur.VoiceTimes),
	}
	if hasBaby {
		in.Stage = messageset.StagePostbirth
		in.Weeks = ptime.WeeksBetween(birthOf(baby), r.now)
	} else {
		in.Stage, in.Weeks = reg.TrackAt(r.now)
	}
	if in.MsgType == messageset.MsgAudio && (in.VoiceDays == "" || in.VoiceTimes == "") {
		return nil, perr.WithField(perr.InvalidArgf("audio needs voice_days and voice_times"), dom.FieldVoiceDays)
	}

	name := a.NewShortName
	if name == "" {
		name = messageset.ResolveName(in)
	}
	pos, err := r.res.Resolve(ctx, name, in.Weeks)
	if err != nil {
		return nil, err
	}
	if pos.NextSequenceNumber < 1 {
		err := perr.InvalidArgf("%s has no message for week %d", name, in.Weeks)
		if a.NewShortName != "" {
			err = perr.WithField(err, dom.FieldNewShortName)
		}
		return nil, err
	}
	r.log.Info().Str("short_name", name).Int("weeks", in.Weeks).Int("next_sequence_number", pos.NextSequenceNumber).Msg("replacement resolved")

	if sub != nil {
		if err := r.svc.collab.Subscriptions.Deactivate(ctx, sub.ID); err != nil {
			return nil, perr.WrapKeep(err, perr.ErrorCodeUnavailable, "deactivate subscription")
		}
	}
	return []subreq.Request{subreq.New(subreq.Spec{
		Identity: mother,
		Role:     messageset.RoleMother,
		Language: pick(a.NewLanguage, lang),
		Position: pos,
		Metadata: map[string]any{},
		Origin:   subreq.OriginChange,
		OriginID: r.change.ID,
	})}, nil
}

// birthOf is the baby's date of birth as recorded by a change_baby, falling
// back to when the change was made
func birthOf(baby dom.Change) time.Time {
	if a, err := baby.Parse(); err == nil {
		if b, ok := a.(dom.ChangeBaby); ok && b.BabyDOB != "" {
			if dob, err := ptime.ParseDate(b.BabyDOB); err == nil {
				return dob
			}
		}
	}
	return baby.CreatedAt
}

// replaceAll moves the mother and every linked household contact onto stage
// at its first message
func (r *run) replaceAll(ctx context.Context, stage string) ([]subreq.Request, error) {
	mother, err := r.identity(ctx, r.change.MotherID)
	if err != nil {
		return nil, err
	}
	people := []subscriber.Identity{mother}
	for _, hid := range mother.HouseholdIDs {
		if hid == "" || hid == mother.ID {
			continue
		}
		h, err := r.identity(ctx, hid)
		if err != nil {
			return nil, err
		}
		people = append(people, h)
	}

	motherLang := ""
	targets := make([]target, 0, len(people))
	for i, p := range people {
		role := messageset.RoleHousehold
		if i == 0 {
			role = messageset.RoleMother
		}
		t, err := r.plan(ctx, stage, role, p, motherLang)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			motherLang = t.req.Language
		}
		targets = append(targets, t)
	}

	out := make([]subreq.Request, 0, len(targets))
	for _, t := range targets {
		if t.sub != nil {
			if err := r.svc.collab.Subscriptions.Deactivate(ctx, t.sub.ID); err != nil {
				return nil, perr.WrapKeep(err, perr.ErrorCodeUnavailable, "deactivate subscription")
			}
		} else {
			r.log.Info().Str("identity", t.identity).Msg("no active subscription to retire")
		}
		out = append(out, t.req)
	}
	return out, nil
}

// plan resolves the replacement for one person from their preferences
func (r *run) plan(ctx context.Context, stage, role string, p subscriber.Identity, fallbackLang string) (target, error) {
	sub, err := r.active(ctx, p.ID)
	if err != nil {
		return target{}, err
	}

	in := messageset.NameInput{
		Stage:      stage,
		Role:       role,
		MsgType:    p.PreferredMsgType,
		VoiceDays:  p.PreferredMsgDays,
		VoiceTimes: p.PreferredMsgTimes,
	}
	if role == messageset.RoleHousehold {
		in.VoiceDays = pick(in.VoiceDays, messageset.HouseholdVoiceDays)
		in.VoiceTimes = pick(in.VoiceTimes, messageset.HouseholdVoiceTimes)
	} else {
		if in.MsgType == "" && sub != nil {
			if ms, err := r.cache.GetMessageSet(ctx, sub.MessageSet); err == nil {
				if cur, ok := messageset.ParseName(ms.ShortName); ok {
					in.MsgType, in.VoiceDays, in.VoiceTimes = cur.MsgType, cur.VoiceDays, cur.VoiceTimes
				}
			}
		}
		if in.MsgType != messageset.MsgAudio || in.VoiceDays == "" || in.VoiceTimes == "" {
			in.MsgType = messageset.MsgText
		}
	}

	name := messageset.ResolveName(in)
	pos, err := r.res.Resolve(ctx, name, 0)
	if err != nil {
		return target{}, err
	}
	lang := p.PreferredLanguage
	if lang == "" && sub != nil {
		lang = sub.Lang
	}
	lang = pick(lang, fallbackLang)

	return target{
		identity: p.ID,
		role:     role,
		sub:      sub,
		req: subreq.New(subreq.Spec{
			Identity: p.ID,
			Role:     role,
			Language: lang,
			Position: pos,
			Metadata: map[string]any{},
			Origin:   subreq.OriginChange,
			OriginID: r.change.ID,
		}),
	}, nil
}

func (r *run) changeLanguage(ctx context.Context, a dom.ChangeLanguage) error {
	ids := []string{r.change.MotherID}
	if a.HouseholdID != "" {
		ids = append(ids, a.HouseholdID)
	}
	for _, id := range ids {
		sub, err := r.active(ctx, id)
		if err != nil {
			return err
		}
		if sub == nil {
			r.log.Warn().Str("identity", id).Msg("no active subscription to patch")
			continue
		}
		if err := r.svc.collab.Subscriptions.PatchLanguage(ctx, sub.ID, a.NewLanguage); err != nil {
			return perr.WrapKeep(err, perr.ErrorCodeUnavailable, "patch subscription language")
		}
	}
	return nil
}

func (r *run) deactivate(ctx context.Context, identity string) error {
	sub, err := r.active(ctx, identity)
	if err != nil {
		return err
	}
	if sub == nil {
		r.log.Warn().Str("identity", identity).Msg("no active subscription to retire")
		return nil
	}
	if err := r.svc.collab.Subscriptions.Deactivate(ctx, sub.ID); err != nil {
		return perr.WrapKeep(err, perr.ErrorCodeUnavailable, "deactivate subscription")
	}
	return nil
}

func (r *run) active(ctx context.Context, identity string) (*subscriber.Subscription, error) {
	sub, err := r.svc.collab.Subscriptions.ActiveSubscription(ctx, identity)
	if err != nil {
		return nil, perr.WrapKeep(err, perr.ErrorCodeUnavailable, "active subscription")
	}
	return sub, nil
}

func (r *run) identity(ctx context.Context, id string) (subscriber.Identity, error) {
	p, err := r.svc.collab.Identities.GetIdentity(ctx, id)
	if err != nil {
		return subscriber.Identity{}, perr.WrapKeep(err, perr.ErrorCodeUnavailable, "identity "+id)
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

// canonical returns a with its enum values folded to the configured spelling
func canonical(rules engine.Rules, a dom.Action) (dom.Action, error) {
	check := func(field, v string, allowed []string) (string, error) {
		if v == "" {
			return "", nil
		}
		c, ok := normalize.Canonical(v, allowed)
		if !ok {
			return "", perr.WithField(perr.InvalidArgf("%s %q is not allowed", field, v), field)
		}
		return c, nil
	}
	var err error
	switch v := a.(type) {
	case dom.ChangeMessaging:
		if v.MsgType, err = check(dom.FieldMsgType, v.MsgType, rules.MsgTypes); err != nil {
			return nil, err
		}
		if v.VoiceDays, err = check(dom.FieldVoiceDays, v.VoiceDays, rules.VoiceDays); err != nil {
			return nil, err
		}
		if v.VoiceTimes, err = check(dom.FieldVoiceTimes, v.VoiceTimes, rules.VoiceTimes); err != nil {
			return nil, err
		}
		if v.NewLanguage, err = check(dom.FieldNewLanguage, v.NewLanguage, rules.Languages); err != nil {
			return nil, err
		}
		return v, nil
	case dom.ChangeLanguage:
		if v.NewLanguage, err = check(dom.FieldNewLanguage, v.NewLanguage, rules.Languages); err != nil {
			return nil, err
		}
		return v, nil
	}
	return a, nil
}

// pick returns the first non-empty value
func pick(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
