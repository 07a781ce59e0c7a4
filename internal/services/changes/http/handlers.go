// Package http provides http transport for changes
package http

import (
	stdhttp "net/http"

	"hellomama/internal/modkit/httpkit"
	"hellomama/internal/modkit/swaggerkit"
	perr "hellomama/internal/platform/errors"
	pnet "hellomama/internal/platform/net"
	"hellomama/internal/platform/net/http/bind"
	"hellomama/internal/services/changes/domain"

	"github.com/go-chi/chi/v5"
)

// CreateRequest is the intake payload for a change
type CreateRequest struct {
	MotherID string         `json:"mother_id" validate:"required,uuid4"`
	Action   string         `json:"action" validate:"required,action"`
	Data     map[string]any `json:"data"`
}

// Register mounts change endpoints on the given router
func Register(r httpkit.Router, s domain.Service) {
	kinds := make([]string, len(domain.Kinds))
	for i, k := range domain.Kinds {
		kinds[i] = string(k)
	}
	_ = bind.RegisterEnum("action", kinds...)

	h := &handlers{svc: s}
	httpkit.PostJSON[CreateRequest](r, "/", h.create)
	httpkit.Get(r, "/{id}", h.get)
}

// Document adds the change routes to the API docs
func Document(prefix string) {
	kinds := make([]any, len(domain.Kinds))
	for i, k := range domain.Kinds {
		kinds[i] = string(k)
	}
	swaggerkit.RegisterOperation(swaggerkit.Operation{
		Method:  "POST",
		Path:    prefix,
		Summary: "Submit a change to a mother's subscriptions",
		Tag:     "Changes",
		Secured: true,
		Body: map[string]any{
			"type":     "object",
			"required": []any{"mother_id", "action"},
			"properties": map[string]any{
				"mother_id": map[string]any{"type": "string", "format": "uuid"},
				"action":    map[string]any{"type": "string", "enum": kinds},
				"data":      map[string]any{"type": "object"},
			},
		},
	})
	swaggerkit.RegisterOperation(swaggerkit.Operation{
		Method:  "GET",
		Path:    prefix + "/{id}",
		Summary: "Change with the subscription requests it produced",
		Tag:     "Changes",
		Secured: true,
	})
}

type handlers struct{ svc domain.Service }

func (h *handlers) create(r *stdhttp.Request, in CreateRequest) (any, error) {
	name, authority := pnet.Source(r.Context())
	if name == "" {
		return nil, perr.Unauthorizedf("unknown source")
	}
	c, err := h.svc.Create(r.Context(), domain.CreateInput{
		MotherID: in.MotherID,
		Action:   domain.ActionKind(in.Action),
		Data:     in.Data,
		Source:   domain.Source{Name: name, Authority: authority},
	})
	if err != nil {
		return nil, err
	}
	return httpkit.Created(c), nil
}

func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), chi.URLParam(r, "id"))
}
