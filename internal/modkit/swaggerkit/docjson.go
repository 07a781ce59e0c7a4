package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
)

// SpecMutator lets modules tweak the parsed swagger spec before it is served
type SpecMutator func(map[string]any)

var (
	mu       sync.Mutex
	mutators []SpecMutator
)

// docReader is a seam so tests can inject invalid JSON
var docReader = func() string {
	return `{"openapi":"3.0.3","info":{"title":"hellomama intake API","version":"1.0.0"},` +
		`"servers":[{"url":"/api/v1"}],"paths":{},` +
		`"components":{"securitySchemes":{"token":{"type":"apiKey","in":"header","name":"Authorization"}}}}`
}

// Register adds a spec mutator, usually from a module's route registration
func Register(m SpecMutator) {
	if m == nil {
		return
	}
	mu.Lock()
	mutators = append(mutators, m)
	mu.Unlock()
}

// Operation describes one documented route
type Operation struct {
	Method  string
	Path    string
	Summary string
	Tag     string
	Body    map[string]any
	Secured bool
}

// RegisterOperation documents a route under /api/v1. POST routes answer 201
// with the record id, everything else 200 or 404
func RegisterOperation(op Operation) {
	Register(func(spec map[string]any) {
		node := child(child(spec, "paths"), op.Path)

		responses := map[string]any{}
		if strings.EqualFold(op.Method, http.MethodPost) {
			responses["201"] = map[string]any{"description": "Accepted for processing"}
		} else {
			responses["200"] = map[string]any{"description": "OK"}
			responses["404"] = errorResponse("Not Found")
		}

		entry := map[string]any{
			"summary":   op.Summary,
			"tags":      []any{op.Tag},
			"responses": responses,
		}
		if op.Body != nil {
			entry["requestBody"] = map[string]any{
				"required": true,
				"content":  map[string]any{"application/json": map[string]any{"schema": op.Body}},
			}
		}
		if op.Secured {
			entry["security"] = []any{map[string]any{"token": []any{}}}
			responses["401"] = errorResponse("Unauthorized")
		}
		node[strings.ToLower(op.Method)] = entry
	})
}

// serveDocJSON parses the base document, applies module mutators and fills in
// the shared error responses
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}

		mu.Lock()
		for _, m := range mutators {
			m(spec)
		}
		mu.Unlock()

		child(child(spec, "components"), "schemas")["ErrorResponse"] = errorSchema
		eachOperation(spec, func(op map[string]any) {
			resps := child(op, "responses")
			for code, desc := range sharedErrors {
				if _, ok := resps[code]; !ok {
					resps[code] = errorResponse(desc)
				}
			}
		})

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// sharedErrors are added to every operation; 400 mirrors the binder output
var sharedErrors = map[string]string{
	"400": "Bad Request",
	"500": "Internal Server Error",
}

// errorSchema matches the error envelope written by phttp
var errorSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"status_code": map[string]any{"type": "integer", "format": "int32"},
		"status":      map[string]any{"type": "string"},
		"code":        map[string]any{"type": "integer", "format": "int32"},
		"error":       map[string]any{"type": "string"},
		"field":       map[string]any{"type": "string"},
		"request_id":  map[string]any{"type": "string"},
	},
	"required": []any{"status_code", "status"},
}

func errorResponse(desc string) map[string]any {
	return map[string]any{
		"description": desc,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
			},
		},
	}
}

// child returns m[key] as an object, creating it when absent
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

func eachOperation(spec map[string]any, fn func(map[string]any)) {
	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			if op, ok := opAny.(map[string]any); ok {
				fn(op)
			}
		}
	}
}
