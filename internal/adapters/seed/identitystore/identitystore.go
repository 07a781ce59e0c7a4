// Package identitystore reads subscriber identities and their addresses
package identitystore

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"hellomama/internal/adapters/seed"
	"hellomama/internal/core/subscriber"
	perr "hellomama/internal/platform/errors"
)

type rawIdentity struct {
	ID      string         `json:"id"`
	Details map[string]any `json:"details"`
}

// Client is the identity store adapter
type Client struct {
	c *seed.Client
}

// New wraps a seed client pointed at the identity store
func New(c *seed.Client) *Client { return &Client{c: c} }

var _ subscriber.Identities = (*Client)(nil)

// GetIdentity fetches an identity and lifts the known detail keys onto it
func (s *Client) GetIdentity(ctx context.Context, id string) (subscriber.Identity, error) {
	if id == "" {
		return subscriber.Identity{}, perr.InvalidArgf("identity: empty id")
	}
	var raw rawIdentity
	if err := s.c.Get(ctx, "/identities/"+url.PathEscape(id)+"/", nil, &raw); err != nil {
		return subscriber.Identity{}, err
	}
	return parse(raw), nil
}

// PrimaryAddress returns the default msisdn for id, or "" when it has none
func (s *Client) PrimaryAddress(ctx context.Context, id string) (string, error) {
	var page seed.Page[struct {
		Address string `json:"address"`
	}]
	q := url.Values{"default": {"True"}}
	if err := s.c.Get(ctx, "/identities/"+url.PathEscape(id)+"/addresses/msisdn", q, &page); err != nil {
		return "", err
	}
	for _, a := range page.Results {
		if a.Address != "" {
			return a.Address, nil
		}
	}
	return "", nil
}

func parse(raw rawIdentity) subscriber.Identity {
	d := raw.Details
	id := subscriber.Identity{ID: raw.ID, Details: d}
	id.LinkedTo = str(d["linked_to"])
	id.PreferredLanguage = str(d["preferred_language"])
	id.PreferredMsgType = str(d["preferred_msg_type"])
	id.PreferredMsgDays = str(d["preferred_msg_days"])
	id.PreferredMsgTimes = str(d["preferred_msg_times"])
	id.ReceiverRole = str(d["receiver_role"])
	id.HouseholdIDs = strs(d["household_ids"])
	return id
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	}
	return ""
}

// strs accepts a JSON list or a comma separated string
func strs(v any) []string {
	var out []string
	switch x := v.(type) {
	case []any:
		for _, e := range x {
			if s := str(e); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(x, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
