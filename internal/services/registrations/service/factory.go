package service

import (
	"context"

	"hellomama/internal/core/engine"
	"hellomama/internal/core/messageset"
	"hellomama/internal/core/subreq"
	"hellomama/internal/core/subscriber"
	perr "hellomama/internal/platform/errors"
	"hellomama/internal/platform/logger"
	dom "hellomama/internal/services/registrations/domain"
)

// Factory builds the subscription requests for a validated registration
type Factory struct {
	Rules      engine.Rules
	Identities subscriber.Identities
	Messages   subscriber.Messages
}

// Build returns the mother's request and, unless the registration addresses
// the mother only, a household request for the receiver. Every catalog lookup
// happens before the welcome text goes out, so a lookup failure sends nothing
func (f Factory) Build(ctx context.Context, cat messageset.Catalog, reg dom.Registration) ([]subreq.Request, error) {
	res := messageset.NewResolver(cat, f.Rules.PrebirthMinWeeks)

	stage, weeks := trackStage(reg)
	lang := reg.Str(dom.FieldLanguage)
	voiceDays := reg.Str(dom.FieldVoiceDays)
	receiver := reg.Str(dom.FieldMsgReceiver)

	name := messageset.ResolveName(messageset.NameInput{
		Stage:      stage,
		Role:       messageset.RoleMother,
		MsgType:    reg.Str(dom.FieldMsgType),
		Weeks:      weeks,
		VoiceDays:  voiceDays,
		VoiceTimes: reg.Str(dom.FieldVoiceTimes),
	})
	pos, err := res.Resolve(ctx, name, weeks)
	if err != nil {
		return nil, err
	}
	mother := subreq.Spec{
		Identity: reg.MotherID,
		Role:     messageset.RoleMother,
		Language: lang,
		Position: pos,
		Metadata: map[string]any{},
		Origin:   subreq.OriginRegistration,
		OriginID: reg.ID,
	}

	var household *subreq.Spec
	if receiver != "" && receiver != engine.ReceiverMotherOnly {
		hname := messageset.ResolveName(messageset.NameInput{
			Stage:      stage,
			Role:       messageset.RoleHousehold,
			MsgType:    messageset.MsgAudio,
			Weeks:      weeks,
			VoiceDays:  messageset.HouseholdVoiceDays,
			VoiceTimes: messageset.HouseholdVoiceTimes,
		})
		hpos, err := res.Resolve(ctx, hname, weeks)
		if err != nil {
			return nil, err
		}
		household = &subreq.Spec{
			Identity: reg.Str(dom.FieldReceiverID),
			Role:     messageset.RoleHousehold,
			Language: lang,
			Position: hpos,
			Metadata: map[string]any{
				subreq.MetaPrependNextDelivery: f.Rules.WelcomeAudio(messageset.RoleHousehold, lang),
			},
			Origin:   subreq.OriginRegistration,
			OriginID: reg.ID,
		}
	}

	if voiceDays == "" {
		if err := f.sendWelcome(ctx, reg, receiver, lang); err != nil {
			return nil, err
		}
		mother.Metadata[subreq.MetaPrependNextDelivery] = f.Rules.WelcomeAudio(reg.Stage, lang)
	}

	out := []subreq.Request{subreq.New(mother)}
	if household != nil {
		out = append(out, subreq.New(*household))
	}
	return out, nil
}

func (f Factory) sendWelcome(ctx context.Context, reg dom.Registration, receiver, lang string) error {
	to := reg.MotherID
	if engine.ThirdParty(receiver) {
		to = reg.Str(dom.FieldReceiverID)
	}
	addr, err := f.Identities.PrimaryAddress(ctx, to)
	if err != nil {
		return perr.WrapKeep(err, perr.ErrorCodeUnavailable, "welcome address")
	}
	if addr == "" {
		logger.C(ctx).Warn().Str("identity", to).Msg("no address for welcome text")
		return nil
	}
	meta := map[string]any{"registration_id": reg.ID}
	if err := f.Messages.Send(ctx, addr, f.Rules.Welcome(lang), meta); err != nil {
		return perr.WrapKeep(err, perr.ErrorCodeUnavailable, "send welcome text")
	}
	return nil
}

// trackStage maps a registration to its track stage and week count; loss
// registrations go to the miscarriage track at week zero
func trackStage(reg dom.Registration) (string, int) {
	switch reg.Stage {
	case dom.StagePrebirth:
		w, _ := reg.Int(dom.FieldPregWeek)
		return messageset.StagePrebirth, w
	case dom.StagePostbirth:
		w, _ := reg.Int(dom.FieldBabyAge)
		return messageset.StagePostbirth, w
	}
	return messageset.StageMiscarriage, 0
}
