// Package subscriber describes the live state the engine reads and changes in
// external systems: subscriptions, identities and outbound messages
package subscriber

import "context"

// Subscription is a live subscription held by the messaging service
type Subscription struct {
	ID                 string         `json:"id"`
	Identity           string         `json:"identity"`
	MessageSet         int            `json:"messageset"`
	NextSequenceNumber int            `json:"next_sequence_number"`
	Lang               string         `json:"lang"`
	Active             bool           `json:"active"`
	Completed          bool           `json:"completed"`
	Schedule           int            `json:"schedule"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// Identity is a subscriber or linked household contact with its preferences
// lifted out of the raw details
type Identity struct {
	ID      string
	Details map[string]any

	LinkedTo          string
	HouseholdIDs      []string
	PreferredLanguage string
	PreferredMsgType  string
	PreferredMsgDays  string
	PreferredMsgTimes string
	ReceiverRole      string
}

// Subscriptions reads and retires live subscriptions
type Subscriptions interface {
	// ActiveSubscription returns the first active subscription, nil when none
	ActiveSubscription(ctx context.Context, identity string) (*Subscription, error)
	Deactivate(ctx context.Context, subscriptionID string) error
	PatchLanguage(ctx context.Context, subscriptionID, lang string) error
}

// Identities reads identities and their default address
type Identities interface {
	GetIdentity(ctx context.Context, id string) (Identity, error)
	// PrimaryAddress returns "" when the identity has no default address
	PrimaryAddress(ctx context.Context, id string) (string, error)
}

// Messages sends one-off messages
type Messages interface {
	Send(ctx context.Context, toAddr, content string, metadata map[string]any) error
}
