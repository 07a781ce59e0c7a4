package module

import (
	"context"
	"strings"
	"testing"

	phttp "hellomama/internal/platform/net/http"
)

// enqueuer mirrors the kind of port the lifecycle module exposes
type enqueuer interface {
	Enqueue(ctx context.Context, kind, recordID string) (string, error)
}

type fakeEnqueuer struct{ id string }

func (f fakeEnqueuer) Enqueue(context.Context, string, string) (string, error) { return f.id, nil }

type fakeModule struct {
	name    string
	ports   any
	mounted bool
}

func (m *fakeModule) Name() string             { return m.name }
func (m *fakeModule) Ports() any               { return m.ports }
func (m *fakeModule) MountRoutes(phttp.Router) { m.mounted = true }

var _ Module = (*fakeModule)(nil)

func TestPortsOf(t *testing.T) {
	type bundle struct {
		Enqueuer enqueuer
		Other    int
	}
	type hidden struct {
		enq enqueuer
	}
	cases := []struct {
		name   string
		ports  any
		wantOK bool
		wantID string
	}{
		{name: "nil ports", ports: nil},
		{name: "direct", ports: enqueuer(fakeEnqueuer{id: "j1"}), wantOK: true, wantID: "j1"},
		{name: "exported field", ports: bundle{Enqueuer: fakeEnqueuer{id: "j2"}}, wantOK: true, wantID: "j2"},
		{name: "unexported field ignored", ports: hidden{enq: fakeEnqueuer{id: "j3"}}},
		{name: "no match", ports: 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PortsOf[enqueuer](&fakeModule{name: "lifecycle", ports: tc.ports})
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok {
				id, _ := got.Enqueue(context.Background(), "registration", "r1")
				if id != tc.wantID {
					t.Fatalf("id = %q, want %q", id, tc.wantID)
				}
			}
		})
	}
}

func TestMustPortsOf(t *testing.T) {
	m := &fakeModule{name: "lifecycle", ports: fakeEnqueuer{id: "j9"}}
	if id, _ := MustPortsOf[enqueuer](m).Enqueue(context.Background(), "", ""); id != "j9" {
		t.Fatalf("id = %q", id)
	}

	defer func() {
		msg, _ := recover().(string)
		if !strings.Contains(msg, "lifecycle") || !strings.Contains(msg, "requested port not found") {
			t.Fatalf("panic = %q", msg)
		}
	}()
	_ = MustPortsOf[enqueuer](&fakeModule{name: "lifecycle"})
}

func TestMountRoutes(t *testing.T) {
	m := &fakeModule{}
	m.MountRoutes(nil)
	if !m.mounted {
		t.Fatalf("expected mount")
	}
}
