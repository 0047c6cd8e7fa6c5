package core

import (
	"testing"
	"time"
)

func TestNewTrackEvent(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := RawState{
		TrackID:      "spotify:track:abc",
		Title:        "Song",
		Artist:       "Artist",
		Album:        "Album",
		Duration:     3 * time.Minute,
		Paused:       true,
		Position:     -time.Second,
		PlaybackRate: 1.0,
	}

	ev := NewTrackEvent(raw, now)

	if ev.TrackID != raw.TrackID {
		t.Errorf("TrackID = %q, want %q", ev.TrackID, raw.TrackID)
	}
	if ev.Position != 0 {
		t.Errorf("Position = %v, want 0 for negative input", ev.Position)
	}
	if ev.Duration != 3*time.Minute {
		t.Errorf("Duration = %v, want %v", ev.Duration, 3*time.Minute)
	}
	if !ev.CapturedAt.Equal(now) {
		t.Errorf("CapturedAt = %v, want %v", ev.CapturedAt, now)
	}
	if ev.Status() != "Paused" {
		t.Errorf("Status() = %q, want %q", ev.Status(), "Paused")
	}
}

func TestTrackEventHasTrack(t *testing.T) {
	if (TrackEvent{}).HasTrack() {
		t.Error("HasTrack() = true for empty track id")
	}
	if !(TrackEvent{TrackID: "x"}).HasTrack() {
		t.Error("HasTrack() = false for non-empty track id")
	}
}

func TestSourceIdentityString(t *testing.T) {
	if got := SpotifyTrackInfo.String(); got != "spotify/track_info" {
		t.Errorf("String() = %q, want %q", got, "spotify/track_info")
	}
}

func TestRawStateProgressPercent(t *testing.T) {
	var nilState *RawState
	if nilState.ProgressPercent() != 0 {
		t.Error("nil state should report 0%")
	}
	s := &RawState{Duration: 200 * time.Second, Position: 50 * time.Second}
	if got := s.ProgressPercent(); got != 25 {
		t.Errorf("ProgressPercent() = %v, want 25", got)
	}
}
