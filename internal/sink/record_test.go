package sink

import (
	"testing"
	"time"
)

func TestEventIDStable(t *testing.T) {
	ev := testEvent("a", false)

	id1, err := EventID(trackInfo, "rec", ev)
	if err != nil {
		t.Fatalf("EventID() error = %v", err)
	}
	id2, _ := EventID(trackInfo, "rec", ev)
	if id1 != id2 {
		t.Errorf("EventID() not stable: %q vs %q", id1, id2)
	}
	if len(id1) != 16 {
		t.Errorf("EventID() = %q, want 16 hex chars", id1)
	}

	other, _ := EventID(trackInfo, "other", ev)
	if other == id1 {
		t.Error("EventID() ignores the recording name")
	}
	ev.Paused = true
	paused, _ := EventID(trackInfo, "rec", ev)
	if paused == id1 {
		t.Error("EventID() ignores the pause state")
	}
}

func TestNewRecord(t *testing.T) {
	ev := testEvent("a", true)
	delivered := ev.CapturedAt.Add(time.Second)

	rec, err := NewRecord(heartRate, "rec", ev, delivered)
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	if rec.SourceID != "polar" || rec.DataType != "hr" {
		t.Errorf("source = %s/%s", rec.SourceID, rec.DataType)
	}
	if rec.DeliveredAt-rec.CapturedAt != 1000 {
		t.Errorf("DeliveredAt-CapturedAt = %d ms, want 1000", rec.DeliveredAt-rec.CapturedAt)
	}
	if !rec.Paused || rec.Title != "Song a" || rec.PlaybackRate != 1 {
		t.Errorf("unexpected record %+v", rec)
	}
}
