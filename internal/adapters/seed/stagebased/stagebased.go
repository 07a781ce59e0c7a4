// Package stagebased talks to the stage-based messaging service: the track
// catalog (message sets and schedules) and live subscriptions
package stagebased

import (
	"context"
	"fmt"
	"net/url"

	"hellomama/internal/adapters/seed"
	"hellomama/internal/core/messageset"
	"hellomama/internal/core/subscriber"
	perr "hellomama/internal/platform/errors"
)

// Client is the stage-based messaging adapter
type Client struct {
	c *seed.Client
}

// New wraps a seed client pointed at the messaging service
func New(c *seed.Client) *Client { return &Client{c: c} }

var (
	_ messageset.Catalog       = (*Client)(nil)
	_ subscriber.Subscriptions = (*Client)(nil)
)

// FindMessageSets returns every message set with the given short name
func (s *Client) FindMessageSets(ctx context.Context, shortName string) ([]messageset.MessageSet, error) {
	var page seed.Page[messageset.MessageSet]
	if err := s.c.Get(ctx, "/messageset/", url.Values{"short_name": {shortName}}, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// GetMessageSet fetches one message set
func (s *Client) GetMessageSet(ctx context.Context, id int) (messageset.MessageSet, error) {
	var ms messageset.MessageSet
	if err := s.c.Get(ctx, fmt.Sprintf("/messageset/%d/", id), nil, &ms); err != nil {
		return messageset.MessageSet{}, err
	}
	return ms, nil
}

// GetSchedule fetches one schedule
func (s *Client) GetSchedule(ctx context.Context, id int) (messageset.Schedule, error) {
	var sc messageset.Schedule
	if err := s.c.Get(ctx, fmt.Sprintf("/schedule/%d/", id), nil, &sc); err != nil {
		return messageset.Schedule{}, err
	}
	return sc, nil
}

// ActiveSubscription returns the first active subscription for identity, or nil
// when there is none. Multiple active matches are not disambiguated
func (s *Client) ActiveSubscription(ctx context.Context, identity string) (*subscriber.Subscription, error) {
	var page seed.Page[subscriber.Subscription]
	q := url.Values{"identity": {identity}, "active": {"True"}}
	if err := s.c.Get(ctx, "/subscriptions/", q, &page); err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, nil
	}
	sub := page.Results[0]
	return &sub, nil
}

// Deactivate marks a subscription inactive
func (s *Client) Deactivate(ctx context.Context, subscriptionID string) error {
	if subscriptionID == "" {
		return perr.InvalidArgf("deactivate: empty subscription id")
	}
	return s.c.Patch(ctx, "/subscriptions/"+url.PathEscape(subscriptionID)+"/", map[string]any{"active": false}, nil)
}

// PatchLanguage changes a subscription's language in place
func (s *Client) PatchLanguage(ctx context.Context, subscriptionID, lang string) error {
	if subscriptionID == "" {
		return perr.InvalidArgf("patch language: empty subscription id")
	}
	return s.c.Patch(ctx, "/subscriptions/"+url.PathEscape(subscriptionID)+"/", map[string]any{"lang": lang}, nil)
}
