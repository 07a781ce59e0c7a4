package middleware

import (
	"net/http"

	"hellomama/internal/platform/logger"
	pnet "hellomama/internal/platform/net"
)

// AuthPort resolves the submitting source of a request
type AuthPort interface {
	// Parse returns the source name and its authority or an error
	Parse(r *http.Request) (source string, authority string, err error)
}

// Auth rejects requests the port cannot resolve and stores the source on the context.
// A nil port lets every request through unauthenticated
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			src, authority, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithSource(r.Context(), src, authority)
			ctx = logger.WithRequest(ctx, pnet.RequestID(ctx), src)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
