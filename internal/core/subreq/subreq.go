// Package subreq defines the subscription request artifact the engine emits
package subreq

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"hellomama/internal/core/messageset"
)

// Origin names the kind of record a request was built for
type Origin string

// Origins
const (
	OriginRegistration Origin = "registration"
	OriginChange       Origin = "change"
)

// MetaPrependNextDelivery is the metadata key for the audio clip played before the first message
const MetaPrependNextDelivery = "prepend_next_delivery"

// Request asks the subscription system to start delivering a track to an identity.
// Requests are created once and never mutated
type Request struct {
	ID                 string         `json:"id"`
	Identity           string         `json:"identity"`
	Role               string         `json:"role"`
	MessageSetID       int            `json:"messageset"`
	NextSequenceNumber int            `json:"next_sequence_number"`
	Language           string         `json:"lang"`
	ScheduleID         int            `json:"schedule"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	Origin             Origin         `json:"origin"`
	OriginID           string         `json:"origin_id"`
	IdempotencyKey     string         `json:"idempotency_key"`
	CreatedAt          time.Time      `json:"created_at"`
}

// Key derives the idempotency key for one replacement of one role on one record
func Key(identity string, origin Origin, originID, role string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{identity, string(origin), originID, role}, "|")))
	return hex.EncodeToString(sum[:])
}

// Spec is what a builder knows when it emits a request
type Spec struct {
	Identity string
	Role     string
	Language string
	Position messageset.Position
	Metadata map[string]any
	Origin   Origin
	OriginID string
}

// New builds a request from spec and stamps its idempotency key
func New(s Spec) Request {
	return Request{
		Identity:           s.Identity,
		Role:               s.Role,
		MessageSetID:       s.Position.MessageSetID,
		NextSequenceNumber: s.Position.NextSequenceNumber,
		Language:           s.Language,
		ScheduleID:         s.Position.ScheduleID,
		Metadata:           s.Metadata,
		Origin:             s.Origin,
		OriginID:           s.OriginID,
		IdempotencyKey:     Key(s.Identity, s.Origin, s.OriginID, s.Role),
	}
}
