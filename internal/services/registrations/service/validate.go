package service

import (
	"sort"
	"time"

	"hellomama/internal/core/engine"
	"hellomama/internal/core/normalize"
	ptime "hellomama/internal/platform/time"
	dom "hellomama/internal/services/registrations/domain"

	"github.com/google/uuid"
)

// Rejection reasons
const (
	ReasonInvalidMotherID  = "Invalid UUID mother_id"
	ReasonMotherOwnID      = "mother requires own id"
	ReasonMotherMismatch   = "mother_id should be the same as receiver_id"
	ReasonBadCombination   = "Invalid combination of fields"
	ReasonInvalidFieldList = "invalid fields"
)

// Verdict is the outcome of validating one registration
type Verdict struct {
	Valid bool
	// Reason is set for the short-circuit rejections
	Reason string
	// Fields lists every field that failed a value check
	Fields  []string
	RegType string
	// Weeks is the derived gestational week or baby age
	Weeks int
	// Data is the registration payload with derived or invalid_fields keys applied
	Data map[string]any
}

type shape struct {
	stage       string
	authorities []string
	required    []string
	regType     string
}

var shapes = []shape{
	{
		stage:       dom.StagePrebirth,
		authorities: []string{dom.AuthorityHWLimited, dom.AuthorityHWFull},
		required: []string{dom.FieldReceiverID, dom.FieldOperatorID, dom.FieldLanguage,
			dom.FieldMsgType, dom.FieldLastPeriodDate, dom.FieldMsgReceiver},
		regType: dom.RegTypeHWPre,
	},
	{
		stage:       dom.StagePostbirth,
		authorities: []string{dom.AuthorityHWLimited, dom.AuthorityHWFull},
		required: []string{dom.FieldReceiverID, dom.FieldOperatorID, dom.FieldLanguage,
			dom.FieldMsgType, dom.FieldBabyDOB, dom.FieldMsgReceiver},
		regType: dom.RegTypeHWPost,
	},
	{
		stage:       dom.StageLoss,
		authorities: []string{dom.AuthorityPatient, dom.AuthorityAdvisor},
		required: []string{dom.FieldReceiverID, dom.FieldOperatorID, dom.FieldLanguage,
			dom.FieldMsgType, dom.FieldLossReason},
		regType: dom.RegTypePBLLoss,
	},
}

// Validator applies the ordered registration rules
type Validator struct {
	Rules engine.Rules
	Clock ptime.Clock
}

// Validate runs the rules in order. It never touches reg; Verdict.Data is a copy
func (v Validator) Validate(reg dom.Registration) Verdict {
	data := dom.Clone(reg.Data)
	reject := func(reason string) Verdict {
		data[dom.FieldInvalidFields] = reason
		return Verdict{Reason: reason, Data: data}
	}

	if !IsUUID4(reg.MotherID) {
		return reject(ReasonInvalidMotherID)
	}

	// compared folded; checkValues later accepts any case of a receiver role
	receiver := normalize.Fold(dom.Str(data, dom.FieldMsgReceiver))
	receiverID := dom.Str(data, dom.FieldReceiverID)
	if engine.ThirdParty(receiver) && reg.MotherID == receiverID {
		return reject(ReasonMotherOwnID)
	}
	if receiver == engine.ReceiverMotherOnly && reg.MotherID != receiverID {
		return reject(ReasonMotherMismatch)
	}

	sh, ok := match(reg.Stage, reg.Source.Authority, data)
	if !ok {
		return reject(ReasonBadCombination)
	}

	bad, weeks := v.checkValues(sh, data)
	if len(bad) > 0 {
		data[dom.FieldInvalidFields] = bad
		return Verdict{Reason: ReasonInvalidFieldList, Fields: bad, Data: data}
	}

	delete(data, dom.FieldInvalidFields)
	data[dom.FieldRegType] = sh.regType
	switch sh.stage {
	case dom.StagePrebirth:
		data[dom.FieldPregWeek] = weeks
	case dom.StagePostbirth:
		data[dom.FieldBabyAge] = weeks
	}
	return Verdict{Valid: true, RegType: sh.regType, Weeks: weeks, Data: data}
}

func match(stage, authority string, data map[string]any) (shape, bool) {
	for _, sh := range shapes {
		if sh.stage != stage || !contains(sh.authorities, authority) {
			continue
		}
		complete := true
		for _, f := range sh.required {
			if !dom.Has(data, f) {
				complete = false
				break
			}
		}
		if complete {
			return sh, true
		}
	}
	return shape{}, false
}

// checkValues collects every failing field and normalises the enum values in
// place to their configured spelling
func (v Validator) checkValues(sh shape, data map[string]any) ([]string, int) {
	var bad []string
	fail := func(f string) { bad = append(bad, f) }
	r := v.Rules

	for _, f := range []string{dom.FieldReceiverID, dom.FieldOperatorID} {
		if !IsUUID4(dom.Str(data, f)) {
			fail(f)
		}
	}

	enum := func(field string, allowed []string, required bool) {
		raw := dom.Str(data, field)
		if raw == "" && !required {
			return
		}
		canon, ok := normalize.Canonical(raw, allowed)
		if !ok {
			fail(field)
			return
		}
		data[field] = canon
	}
	enum(dom.FieldLanguage, r.Languages, true)
	enum(dom.FieldMsgType, r.MsgTypes, true)
	enum(dom.FieldMsgReceiver, r.ReceiverTypes, sh.stage != dom.StageLoss)
	if sh.stage == dom.StageLoss {
		enum(dom.FieldLossReason, r.LossReasons, true)
	}
	if dom.Str(data, dom.FieldMsgType) == "audio" {
		enum(dom.FieldVoiceDays, r.VoiceDays, true)
		enum(dom.FieldVoiceTimes, r.VoiceTimes, true)
	}

	weeks := 0
	now := v.Clock.Now()
	switch sh.stage {
	case dom.StagePrebirth:
		weeks = v.weeksIn(data, dom.FieldLastPeriodDate, now, r.PrebirthMinWeeks, r.PrebirthMaxWeeks, fail)
	case dom.StagePostbirth:
		weeks = v.weeksIn(data, dom.FieldBabyDOB, now, r.PostbirthMinWeeks, r.PostbirthMaxWeeks, fail)
	}

	sort.Strings(bad)
	return bad, weeks
}

func (v Validator) weeksIn(data map[string]any, field string, now time.Time, lo, hi int, fail func(string)) int {
	w, err := ptime.WeeksSinceDate(dom.Str(data, field), now)
	if err != nil || w < lo || w > hi {
		fail(field)
		return 0
	}
	return w
}

// IsUUID4 reports whether s is a canonical random (version 4) UUID
func IsUUID4(s string) bool {
	if len(s) != 36 {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
