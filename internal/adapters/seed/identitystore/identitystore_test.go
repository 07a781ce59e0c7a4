package identitystore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"hellomama/internal/adapters/seed"
	perr "hellomama/internal/platform/errors"
)

func newClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(seed.NewClient(seed.Options{Name: "identity", BaseURL: srv.URL}))
}

func TestGetIdentityParsesDetails(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/identities/m1/" {
			t.Fatalf("path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"m1","details":{
			"linked_to":"h0","household_ids":["h1","h2"],
			"preferred_language":"eng_NG","preferred_msg_type":"audio",
			"preferred_msg_days":"tue_thu","preferred_msg_times":"9_11",
			"receiver_role":"mother"}}`))
	}))

	id, err := c.GetIdentity(context.Background(), "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if id.LinkedTo != "h0" || id.PreferredMsgType != "audio" || id.PreferredMsgDays != "tue_thu" || id.ReceiverRole != "mother" {
		t.Fatalf("parsed %+v", id)
	}
	if !reflect.DeepEqual(id.HouseholdIDs, []string{"h1", "h2"}) {
		t.Fatalf("households %v", id.HouseholdIDs)
	}
}

func TestStrsAcceptsCSV(t *testing.T) {
	if got := strs(" a, ,b "); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("got %v", got)
	}
	if got := strs(nil); got != nil {
		t.Fatalf("got %v", got)
	}
}

func TestGetIdentityNotFound(t *testing.T) {
	c := newClient(t, http.NotFoundHandler())
	if _, err := c.GetIdentity(context.Background(), "x"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found got %v", err)
	}
}

func TestPrimaryAddress(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("default") != "True" {
			t.Fatalf("query %s", r.URL.RawQuery)
		}
		if r.URL.Path == "/identities/none/addresses/msisdn" {
			_, _ = w.Write([]byte(`{"count":0,"results":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"count":1,"results":[{"address":"+2347031234567"}]}`))
	}))

	addr, err := c.PrimaryAddress(context.Background(), "m1")
	if err != nil || addr != "+2347031234567" {
		t.Fatalf("addr %q err %v", addr, err)
	}
	addr, err = c.PrimaryAddress(context.Background(), "none")
	if err != nil || addr != "" {
		t.Fatalf("addr %q err %v", addr, err)
	}
}
