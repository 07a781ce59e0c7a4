// Package domain defines registrations and the ports around them
package domain

import (
	"context"
	"time"

	"hellomama/internal/core/messageset"
	"hellomama/internal/core/subreq"
	ptime "hellomama/internal/platform/time"
)

// Stages a registration can be submitted for
const (
	StagePrebirth  = "prebirth"
	StagePostbirth = "postbirth"
	StageLoss      = "loss"
)

// Source authorities
const (
	AuthorityPatient   = "patient"
	AuthorityAdvisor   = "advisor"
	AuthorityHWLimited = "hw_limited"
	AuthorityHWFull    = "hw_full"
)

// Data keys
const (
	FieldReceiverID     = "receiver_id"
	FieldOperatorID     = "operator_id"
	FieldLanguage       = "language"
	FieldMsgType        = "msg_type"
	FieldMsgReceiver    = "msg_receiver"
	FieldLastPeriodDate = "last_period_date"
	FieldBabyDOB        = "baby_dob"
	FieldLossReason     = "loss_reason"
	FieldVoiceDays      = "voice_days"
	FieldVoiceTimes     = "voice_times"

	FieldRegType       = "reg_type"
	FieldPregWeek      = "preg_week"
	FieldBabyAge       = "baby_age"
	FieldInvalidFields = "invalid_fields"
)

// Registration types set on a validated registration
const (
	RegTypeHWPre   = "hw_pre"
	RegTypeHWPost  = "hw_post"
	RegTypePBLLoss = "pbl_loss"
)

// Source is who submitted a record
type Source struct {
	Name      string `json:"name"`
	Authority string `json:"authority"`
}

// Registration enrols a mother in a campaign stage
type Registration struct {
	ID        string         `json:"id"`
	MotherID  string         `json:"mother_id"`
	Stage     string         `json:"stage"`
	Data      map[string]any `json:"data"`
	Validated bool           `json:"validated"`
	Source    Source         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Str returns Data[key] as a trimmed string
func (r Registration) Str(key string) string { return Str(r.Data, key) }

// Int returns Data[key] as an int
func (r Registration) Int(key string) (int, bool) { return Int(r.Data, key) }

// CreateInput is a new registration submitted through the API
type CreateInput struct {
	MotherID string
	Stage    string
	Data     map[string]any
	Source   Source
}

// View is a registration with the subscription requests built for it
type View struct {
	Registration
	SubscriptionRequests []subreq.Request `json:"subscription_requests"`
}

// Reader is the read port other modules use
type Reader interface {
	// LatestValidated returns the newest validated registration for a mother
	LatestValidated(ctx context.Context, motherID string) (Registration, bool, error)
}

// Service is the registrations module surface
type Service interface {
	Reader
	Create(ctx context.Context, in CreateInput) (Registration, error)
	Get(ctx context.Context, id string) (View, error)
}

// TrackAt returns the track stage and the week count as of now, recomputed
// from the registration's dates. Loss registrations map to the miscarriage
// track at week zero
func (r Registration) TrackAt(now time.Time) (string, int) {
	switch r.Stage {
	case StagePrebirth:
		if w, err := ptime.WeeksSinceDate(r.Str(FieldLastPeriodDate), now); err == nil {
			return messageset.StagePrebirth, w
		}
		w, _ := r.Int(FieldPregWeek)
		return messageset.StagePrebirth, w
	case StagePostbirth:
		if w, err := ptime.WeeksSinceDate(r.Str(FieldBabyDOB), now); err == nil {
			return messageset.StagePostbirth, w
		}
		w, _ := r.Int(FieldBabyAge)
		return messageset.StagePostbirth, w
	}
	return messageset.StageMiscarriage, 0
}
