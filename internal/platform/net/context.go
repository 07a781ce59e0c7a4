// Package net carries request scoped values shared by transports
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const (
	keySourceName      ctxKey = "source_name"
	keySourceAuthority ctxKey = "source_authority"
)

// WithRequestID sets the chi request id so chimw.GetReqID can read it back
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// WithSource annotates ctx with the authenticated submitting source
func WithSource(ctx context.Context, name, authority string) context.Context {
	if name != "" {
		ctx = context.WithValue(ctx, keySourceName, name)
	}
	if authority != "" {
		ctx = context.WithValue(ctx, keySourceAuthority, authority)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// Source returns the source name and authority on the context, empty when unauthenticated
func Source(ctx context.Context) (name, authority string) {
	name, _ = ctx.Value(keySourceName).(string)
	authority, _ = ctx.Value(keySourceAuthority).(string)
	return name, authority
}
