package domain

import (
	perr "hellomama/internal/platform/errors"
	ptime "hellomama/internal/platform/time"
	regdom "hellomama/internal/services/registrations/domain"
)

// ActionKind names a change action on the wire
type ActionKind string

// Action kinds
const (
	KindChangeMessaging      ActionKind = "change_messaging"
	KindChangeBaby           ActionKind = "change_baby"
	KindChangeLoss           ActionKind = "change_loss"
	KindChangeLanguage       ActionKind = "change_language"
	KindUnsubscribeMother    ActionKind = "unsubscribe_mother_only"
	KindUnsubscribeHousehold ActionKind = "unsubscribe_household_only"
)

// Kinds lists every action kind
var Kinds = []ActionKind{
	KindChangeMessaging, KindChangeBaby, KindChangeLoss,
	KindChangeLanguage, KindUnsubscribeMother, KindUnsubscribeHousehold,
}

// Payload keys
const (
	FieldNewShortName = "new_short_name"
	FieldMsgType      = "msg_type"
	FieldVoiceDays    = "voice_days"
	FieldVoiceTimes   = "voice_times"
	FieldNewLanguage  = "new_language"
	FieldHouseholdID  = "household_id"
	FieldReason       = "reason"
	FieldBabyDOB      = "baby_dob"
)

// Action is one of the six change actions. The set is closed; switch on the
// concrete type
type Action interface {
	Kind() ActionKind
	action()
}

// ChangeMessaging moves the mother to another track of her current stage
type ChangeMessaging struct {
	NewShortName string
	MsgType      string
	VoiceDays    string
	VoiceTimes   string
	NewLanguage  string
}

// ChangeBaby moves the mother and her household onto postbirth tracks.
// BabyDOB is an optional YYYYMMDD birth date; without it the change's own
// timestamp stands in for the birth
type ChangeBaby struct {
	BabyDOB string
}

// ChangeLoss moves the mother and her household onto the loss track
type ChangeLoss struct {
	Reason string
}

// ChangeLanguage patches the language of live subscriptions in place
type ChangeLanguage struct {
	NewLanguage string
	HouseholdID string
}

// UnsubscribeMother stops the mother's subscription
type UnsubscribeMother struct {
	Reason string
}

// UnsubscribeHousehold stops one household contact's subscription
type UnsubscribeHousehold struct {
	HouseholdID string
	Reason      string
}

func (ChangeMessaging) Kind() ActionKind      { return KindChangeMessaging }
func (ChangeBaby) Kind() ActionKind           { return KindChangeBaby }
func (ChangeLoss) Kind() ActionKind           { return KindChangeLoss }
func (ChangeLanguage) Kind() ActionKind       { return KindChangeLanguage }
func (UnsubscribeMother) Kind() ActionKind    { return KindUnsubscribeMother }
func (UnsubscribeHousehold) Kind() ActionKind { return KindUnsubscribeHousehold }

func (ChangeMessaging) action()      {}
func (ChangeBaby) action()           {}
func (ChangeLoss) action()           {}
func (ChangeLanguage) action()       {}
func (UnsubscribeMother) action()    {}
func (UnsubscribeHousehold) action() {}

// ParseAction builds the action for kind from its payload
func ParseAction(kind ActionKind, data map[string]any) (Action, error) {
	str := func(k string) string { return regdom.Str(data, k) }
	switch kind {
	case KindChangeMessaging:
		a := ChangeMessaging{
			NewShortName: str(FieldNewShortName),
			MsgType:      str(FieldMsgType),
			VoiceDays:    str(FieldVoiceDays),
			VoiceTimes:   str(FieldVoiceTimes),
			NewLanguage:  str(FieldNewLanguage),
		}
		if a.NewShortName == "" && a.MsgType == "" && a.VoiceDays == "" && a.VoiceTimes == "" {
			return nil, missing(kind, FieldMsgType)
		}
		return a, nil
	case KindChangeBaby:
		a := ChangeBaby{BabyDOB: str(FieldBabyDOB)}
		if a.BabyDOB != "" {
			if _, err := ptime.ParseDate(a.BabyDOB); err != nil {
				return nil, perr.WithField(perr.InvalidArgf("%s must be YYYYMMDD", FieldBabyDOB), FieldBabyDOB)
			}
		}
		return a, nil
	case KindChangeLoss:
		return ChangeLoss{Reason: str(FieldReason)}, nil
	case KindChangeLanguage:
		a := ChangeLanguage{NewLanguage: str(FieldNewLanguage), HouseholdID: str(FieldHouseholdID)}
		if a.NewLanguage == "" {
			return nil, missing(kind, FieldNewLanguage)
		}
		return a, nil
	case KindUnsubscribeMother:
		return UnsubscribeMother{Reason: str(FieldReason)}, nil
	case KindUnsubscribeHousehold:
		a := UnsubscribeHousehold{HouseholdID: str(FieldHouseholdID), Reason: str(FieldReason)}
		if a.HouseholdID == "" {
			return nil, missing(kind, FieldHouseholdID)
		}
		return a, nil
	}
	return nil, perr.WithField(perr.InvalidArgf("unknown action %q", kind), "action")
}

func missing(kind ActionKind, field string) error {
	return perr.WithField(perr.InvalidArgf("%s requires %s", kind, field), field)
}
