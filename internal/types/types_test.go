package types

import (
	"testing"
	"time"
)

func TestActivity(t *testing.T) {
	tests := []struct {
		activity Activity
		valid    bool
		word     string
	}{
		{ActivityCreated, true, "action created"},
		{ActivityTaken, true, "action taken"},
		{Activity("action_shared"), false, "action_shared"},
		{Activity(""), false, ""},
	}

	for _, tt := range tests {
		if got := tt.activity.Valid(); got != tt.valid {
			t.Errorf("%q.Valid() = %v, want %v", tt.activity, got, tt.valid)
		}
		if got := tt.activity.DisplayWord(); got != tt.word {
			t.Errorf("%q.DisplayWord() = %q, want %q", tt.activity, got, tt.word)
		}
	}

	if len(Activities()) != 2 {
		t.Errorf("Activities() = %v, want two kinds", Activities())
	}
}

func TestEventID(t *testing.T) {
	id := NewEventID()

	parsed, err := ParseEventID(string(id))
	if err != nil {
		t.Fatalf("ParseEventID(%q) error = %v", id, err)
	}
	if parsed != id {
		t.Errorf("ParseEventID() = %q, want %q", parsed, id)
	}

	if _, err := ParseEventID("not-a-uuid"); err == nil {
		t.Error("ParseEventID() accepted malformed input")
	}

	// UUIDv7 embeds its creation time
	ts := EventIDTime(id)
	if ts.IsZero() {
		t.Fatal("EventIDTime() = zero for fresh ID")
	}
	if d := time.Since(ts); d < -time.Minute || d > time.Minute {
		t.Errorf("EventIDTime() drifted by %v", d)
	}

	if !EventIDTime(EventID("garbage")).IsZero() {
		t.Error("EventIDTime() on invalid ID should be zero")
	}
}
