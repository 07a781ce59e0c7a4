package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "hellomama/internal/platform/net/http"
	"hellomama/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

func fetchSpec(t *testing.T, m http.Handler) map[string]any {
	t.Helper()
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/api/docs/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json = %d", rec.Code)
	}
	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return spec
}

func TestMount_ServesSpecWithOperations(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &mutators, nil)

	RegisterOperation(Operation{
		Method: "POST", Path: "/registrations", Summary: "Create registration", Tag: "registrations",
		Body: map[string]any{"type": "object"}, Secured: true,
	})

	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), true)
	spec := fetchSpec(t, m)

	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
	if _, ok := spec["components"].(map[string]any)["schemas"].(map[string]any)["ErrorResponse"]; !ok {
		t.Fatalf("error schema missing")
	}
	op := spec["paths"].(map[string]any)["/registrations"].(map[string]any)["post"].(map[string]any)
	resps := op["responses"].(map[string]any)
	for _, code := range []string{"201", "400", "401", "500"} {
		if _, ok := resps[code]; !ok {
			t.Fatalf("missing %s response", code)
		}
	}
	if _, ok := op["security"]; !ok {
		t.Fatalf("secured op should carry security")
	}
	if _, ok := op["requestBody"]; !ok {
		t.Fatalf("body should be documented")
	}
}

func TestRegisterOperation_ReadRoute(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &mutators, nil)

	RegisterOperation(Operation{Method: "GET", Path: "/changes/{id}", Summary: "Change", Tag: "changes"})

	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), true)
	op := fetchSpec(t, m)["paths"].(map[string]any)["/changes/{id}"].(map[string]any)["get"].(map[string]any)
	resps := op["responses"].(map[string]any)
	for _, code := range []string{"200", "404", "400", "500"} {
		if _, ok := resps[code]; !ok {
			t.Fatalf("missing %s response", code)
		}
	}
	if _, ok := resps["401"]; ok {
		t.Fatalf("public op should not document 401")
	}
	if _, ok := op["security"]; ok {
		t.Fatalf("public op should not carry security")
	}
}

func TestMount_Disabled(t *testing.T) {
	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), false)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/api/docs/doc.json", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("disabled docs = %d", rec.Code)
	}
}

func TestServeDocJSON_BadBase(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &docReader, func() string { return "{" })
	rec := httptest.NewRecorder()
	serveDocJSON()(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMount_RedirectsRoot(t *testing.T) {
	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), true)
	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/api/docs", nil))
	if rec.Code != http.StatusPermanentRedirect {
		t.Fatalf("status = %d", rec.Code)
	}
}
