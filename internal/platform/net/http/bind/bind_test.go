package bind

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "hellomama/internal/platform/errors"
)

type payload struct {
	MotherID string         `json:"mother_id" validate:"required,uuid4"`
	Stage    string         `json:"stage" validate:"required,test_stage"`
	Data     map[string]any `json:"data"`
}

const motherID = "4038a518-2940-4b15-9c5c-2b7b123b8735"

func init() {
	if err := RegisterEnum("test_stage", "prebirth", "postbirth", "loss"); err != nil {
		panic(err)
	}
}

func post(body string) *http.Request {
	return httptest.NewRequest("POST", "/", strings.NewReader(body))
}

func TestParseJSON_Success(t *testing.T) {
	got, err := ParseJSON[payload](post(`{"mother_id":"` + motherID + `","stage":"prebirth","data":{"preg_week":12}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MotherID != motherID || got.Stage != "prebirth" {
		t.Fatalf("got %+v", got)
	}
	// numbers stay json.Number so integer payloads survive untouched
	if n, ok := got.Data["preg_week"].(json.Number); !ok || n.String() != "12" {
		t.Fatalf("preg_week = %#v", got.Data["preg_week"])
	}
}

func TestParseJSON_Errors(t *testing.T) {
	cases := []struct {
		name  string
		req   *http.Request
		opts  []JSONOptions
		code  perr.ErrorCode
		field string
		msg   string
	}{
		{name: "empty body", req: httptest.NewRequest("POST", "/", http.NoBody), code: perr.ErrorCodeJSON},
		{name: "invalid json", req: post(`{`), code: perr.ErrorCodeJSON},
		{name: "unknown field", req: post(`{"mother_id":"` + motherID + `","stage":"loss","boom":1}`), code: perr.ErrorCodeJSON},
		{name: "size limit", req: post(`{"mother_id":"` + motherID + `"}`), opts: []JSONOptions{{MaxBytes: 5, DisallowUnknown: true}}, code: perr.ErrorCodeJSON},
		{name: "bad uuid", req: post(`{"mother_id":"nope","stage":"loss"}`), code: perr.ErrorCodeValidation, field: "mother_id", msg: "Invalid UUID mother_id"},
		{name: "bad enum", req: post(`{"mother_id":"` + motherID + `","stage":"later"}`), code: perr.ErrorCodeValidation, field: "stage", msg: "stage must be one of [prebirth postbirth loss]"},
		{name: "required", req: post(`{"stage":"loss"}`), code: perr.ErrorCodeValidation, field: "mother_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON[payload](tc.req, tc.opts...)
			if perr.CodeOf(err) != tc.code {
				t.Fatalf("code = %v, want %v (%v)", perr.CodeOf(err), tc.code, err)
			}
			e, _ := perr.As(err)
			if tc.field != "" && e.Field() != tc.field {
				t.Fatalf("field = %q, want %q", e.Field(), tc.field)
			}
			if tc.msg != "" && err.Error() != tc.msg {
				t.Fatalf("msg = %q, want %q", err.Error(), tc.msg)
			}
		})
	}
}

func TestParseJSON_AllowEmptyBody(t *testing.T) {
	type note struct {
		Note string `json:"note"`
	}
	got, err := ParseJSON[note](httptest.NewRequest("POST", "/", http.NoBody), JSONOptions{AllowEmptyBody: true})
	if err != nil || got != (note{}) {
		t.Fatalf("got %+v %v", got, err)
	}
}

func TestParseJSON_DisallowUnknownFalse(t *testing.T) {
	got, err := ParseJSON[payload](post(`{"mother_id":"`+motherID+`","stage":"loss","extra":1}`), JSONOptions{})
	if err != nil || got.Stage != "loss" {
		t.Fatalf("got %+v %v", got, err)
	}
}

func TestParseJSON_TrailingData_Seam(t *testing.T) {
	orig := jsonMore
	jsonMore = func(*json.Decoder) bool { return true }
	defer func() { jsonMore = orig }()

	_, err := ParseJSON[payload](post(`{"mother_id":"` + motherID + `","stage":"loss"}`))
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error for trailing data, got %v", err)
	}
}

func TestParseJSON_NonStruct(t *testing.T) {
	_, err := ParseJSON[int](post(`5`))
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON-coded error, got %v", err)
	}
}

func TestTagNameFunc(t *testing.T) {
	type s struct {
		Weeks  int `json:"weeks,omitempty" validate:"min=1"`
		Secret int `json:"-" validate:"max=0"`
		Plain  int `validate:"max=0"`
	}
	cases := []struct {
		in    s
		field string
		msg   string
	}{
		{s{Weeks: 0}, "weeks", "weeks must be at least 1"},
		{s{Weeks: 1, Secret: 1}, "Secret", "Secret must be at most 0"},
		{s{Weeks: 1, Plain: 1}, "Plain", "Plain must be at most 0"},
	}
	for _, tc := range cases {
		field, msg := ValidationFieldAndMessage(Get().Validator.Struct(tc.in))
		if field != tc.field || msg != tc.msg {
			t.Fatalf("got (%q, %q), want (%q, %q)", field, msg, tc.field, tc.msg)
		}
	}
}

func TestValidationFieldAndMessage_Generic(t *testing.T) {
	if f, m := ValidationFieldAndMessage(nil); f != "" || m != "" {
		t.Fatalf("nil = %q %q", f, m)
	}
	field, msg := ValidationFieldAndMessage(errors.New("boom"))
	if field != "" || msg != "boom" {
		t.Fatalf("expected passthrough, got field=%q msg=%q", field, msg)
	}
}

func TestRegisterValidation_Overwrites(t *testing.T) {
	if err := RegisterValidation("dupe_tag", func(FieldLevel) bool { return false }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := RegisterValidation("dupe_tag", func(FieldLevel) bool { return true }); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	type S struct {
		N int `json:"n" validate:"dupe_tag"`
	}
	if err := Get().Validator.Struct(S{}); err != nil {
		t.Fatalf("expected pass after overwrite, got %v", err)
	}
}
