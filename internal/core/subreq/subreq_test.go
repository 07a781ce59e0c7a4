package subreq

import (
	"testing"

	"hellomama/internal/core/messageset"
)

func TestKey(t *testing.T) {
	a := Key("mother-1", OriginChange, "change-1", "mother")
	if len(a) != 64 {
		t.Fatalf("key length = %d", len(a))
	}
	if a != Key("mother-1", OriginChange, "change-1", "mother") {
		t.Fatalf("key is not deterministic")
	}
	others := []string{
		Key("mother-2", OriginChange, "change-1", "mother"),
		Key("mother-1", OriginRegistration, "change-1", "mother"),
		Key("mother-1", OriginChange, "change-2", "mother"),
		Key("mother-1", OriginChange, "change-1", "household"),
	}
	for i, o := range others {
		if o == a {
			t.Fatalf("variant %d collided", i)
		}
	}
}

func TestNew(t *testing.T) {
	r := New(Spec{
		Identity: "mother-1",
		Role:     "mother",
		Language: "eng_NG",
		Position: messageset.Position{MessageSetID: 4, ScheduleID: 6, NextSequenceNumber: 36},
		Metadata: map[string]any{MetaPrependNextDelivery: "http://x/welcome.mp3"},
		Origin:   OriginRegistration,
		OriginID: "reg-1",
	})
	if r.MessageSetID != 4 || r.ScheduleID != 6 || r.NextSequenceNumber != 36 || r.Language != "eng_NG" {
		t.Fatalf("request = %+v", r)
	}
	if r.IdempotencyKey != Key("mother-1", OriginRegistration, "reg-1", "mother") {
		t.Fatalf("key not stamped")
	}
	if r.Metadata[MetaPrependNextDelivery] != "http://x/welcome.mp3" {
		t.Fatalf("metadata lost")
	}
}
