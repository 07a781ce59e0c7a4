// Package http provides http transport for registrations
package http

import (
	stdhttp "net/http"

	"hellomama/internal/modkit/httpkit"
	"hellomama/internal/modkit/swaggerkit"
	perr "hellomama/internal/platform/errors"
	pnet "hellomama/internal/platform/net"
	"hellomama/internal/platform/net/http/bind"
	"hellomama/internal/services/registrations/domain"

	"github.com/go-chi/chi/v5"
)

// CreateRequest is the intake payload. Field values are checked by the
// worker so a bad payload is stored with its invalid fields rather than refused
type CreateRequest struct {
	MotherID string         `json:"mother_id" validate:"required"`
	Stage    string         `json:"stage" validate:"required,stage"`
	Data     map[string]any `json:"data" validate:"required"`
}

// Register mounts registration endpoints on the given router
func Register(r httpkit.Router, s domain.Service) {
	_ = bind.RegisterEnum("stage", domain.StagePrebirth, domain.StagePostbirth, domain.StageLoss)

	h := &handlers{svc: s}
	httpkit.PostJSON[CreateRequest](r, "/", h.create)
	httpkit.Get(r, "/{id}", h.get)
}

// Document adds the registration routes to the API docs
func Document(prefix string) {
	swaggerkit.RegisterOperation(swaggerkit.Operation{
		Method:  "POST",
		Path:    prefix,
		Summary: "Submit a registration",
		Tag:     "Registrations",
		Secured: true,
		Body: map[string]any{
			"type":     "object",
			"required": []any{"mother_id", "stage", "data"},
			"properties": map[string]any{
				"mother_id": map[string]any{"type": "string", "format": "uuid"},
				"stage":     map[string]any{"type": "string", "enum": []any{"prebirth", "postbirth", "loss"}},
				"data":      map[string]any{"type": "object"},
			},
		},
	})
	swaggerkit.RegisterOperation(swaggerkit.Operation{
		Method:  "GET",
		Path:    prefix + "/{id}",
		Summary: "Registration with its subscription requests",
		Tag:     "Registrations",
		Secured: true,
	})
}

type handlers struct{ svc domain.Service }

func (h *handlers) create(r *stdhttp.Request, in CreateRequest) (any, error) {
	name, authority := pnet.Source(r.Context())
	if name == "" {
		return nil, perr.Unauthorizedf("unknown source")
	}
	reg, err := h.svc.Create(r.Context(), domain.CreateInput{
		MotherID: in.MotherID,
		Stage:    in.Stage,
		Data:     in.Data,
		Source:   domain.Source{Name: name, Authority: authority},
	})
	if err != nil {
		return nil, err
	}
	return httpkit.Created(reg), nil
}

func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), chi.URLParam(r, "id"))
}
