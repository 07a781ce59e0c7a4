// Package domain defines change records, their actions and the ports around them
package domain

import (
	"context"
	"time"

	"hellomama/internal/core/subreq"
	regdom "hellomama/internal/services/registrations/domain"
)

// Source is who submitted a change
type Source = regdom.Source

// Change asks the engine to move, patch or stop a mother's subscriptions
type Change struct {
	ID        string         `json:"id"`
	MotherID  string         `json:"mother_id"`
	Action    ActionKind     `json:"action"`
	Data      map[string]any `json:"data"`
	Validated bool           `json:"validated"`
	Source    Source         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Parse decodes the change's action with its payload
func (c Change) Parse() (Action, error) { return ParseAction(c.Action, c.Data) }

// CreateInput is a new change submitted through the API
type CreateInput struct {
	MotherID string
	Action   ActionKind
	Data     map[string]any
	Source   Source
}

// View is a change with the subscription requests it produced
type View struct {
	Change
	SubscriptionRequests []subreq.Request `json:"subscription_requests"`
}

// Service is the changes module surface
type Service interface {
	Create(ctx context.Context, in CreateInput) (Change, error)
	Get(ctx context.Context, id string) (View, error)
}
