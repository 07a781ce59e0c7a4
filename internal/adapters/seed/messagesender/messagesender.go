// Package messagesender sends one-off outbound messages
package messagesender

import (
	"context"

	"hellomama/internal/adapters/seed"
	"hellomama/internal/core/subscriber"
	perr "hellomama/internal/platform/errors"
)

// Outbound is the message sender's POST /outbound/ payload
type Outbound struct {
	ToAddr   string         `json:"to_addr"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Client is the message sender adapter
type Client struct {
	c *seed.Client
}

// New wraps a seed client pointed at the message sender
func New(c *seed.Client) *Client { return &Client{c: c} }

var _ subscriber.Messages = (*Client)(nil)

// Send queues a message for delivery and does not wait for it
func (s *Client) Send(ctx context.Context, toAddr, content string, metadata map[string]any) error {
	if toAddr == "" {
		return perr.InvalidArgf("outbound: empty address")
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return s.c.Post(ctx, "/outbound/", Outbound{ToAddr: toAddr, Content: content, Metadata: metadata}, nil)
}
