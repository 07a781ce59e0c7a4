package httpkit

import (
	"net/http"
	"strings"

	perr "hellomama/internal/platform/errors"
)

// TokenFunc resolves a presented token to a source name and authority
type TokenFunc func(token string) (source string, authority string, err error)

// Port implements middleware.AuthPort by reading Authorization and delegating to a TokenFunc.
// Both "Token <t>" and "Bearer <t>" schemes are accepted
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a simple parser function
func NewPortFunc(fn TokenFunc) *Port { return &Port{parse: fn} }

var schemes = []string{"token", "bearer"}

// Parse extracts the source from the Authorization header
func (p *Port) Parse(r *http.Request) (string, string, error) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	if s == "" {
		return "", "", perr.Unauthorizedf("missing token")
	}
	raw := ""
	ls := strings.ToLower(s)
	for _, sc := range schemes {
		if strings.HasPrefix(ls, sc+" ") {
			raw = strings.TrimSpace(s[len(sc):])
			break
		}
	}
	if raw == "" {
		return "", "", perr.Unauthorizedf("missing token")
	}
	if p.parse == nil {
		return "", "", perr.Unauthorizedf("invalid token")
	}
	src, authority, err := p.parse(raw)
	if err != nil {
		return "", "", perr.Unauthorizedf("invalid token")
	}
	return src, authority, nil
}

// StaticTokens builds a TokenFunc from token=name:authority pairs
func StaticTokens(pairs map[string]string) TokenFunc {
	type entry struct{ name, authority string }
	table := make(map[string]entry, len(pairs))
	for tok, v := range pairs {
		name, authority, _ := strings.Cut(v, ":")
		table[tok] = entry{name: strings.TrimSpace(name), authority: strings.TrimSpace(authority)}
	}
	return func(token string) (string, string, error) {
		e, ok := table[token]
		if !ok {
			return "", "", perr.Unauthorizedf("unknown token")
		}
		return e.name, e.authority, nil
	}
}
