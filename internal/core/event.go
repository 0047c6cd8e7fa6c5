package core

import "time"

// NoRecording labels events raised while no recording session is active.
const NoRecording = "no_recording"

// SourceIdentity names a logical event stream for downstream sinks.
type SourceIdentity struct {
	SourceID string `json:"source_id"`
	DataType string `json:"data_type"`
}

// SpotifyTrackInfo is the stream that carries Spotify track state.
var SpotifyTrackInfo = SourceIdentity{SourceID: "spotify", DataType: "track_info"}

// String returns the identity as "source/type".
func (s SourceIdentity) String() string {
	return s.SourceID + "/" + s.DataType
}

// SourceInfo describes a known source to a sink preparing a recording.
type SourceInfo struct {
	Name      string   `json:"name"`
	DataTypes []string `json:"data_types"`
}

// TrackEvent is a snapshot of a player's state at the moment it changed.
// Events are passed by value and never modified after construction.
type TrackEvent struct {
	TrackID      string        `json:"track_id"`
	Title        string        `json:"title"`
	Artist       string        `json:"artist"`
	Album        string        `json:"album"`
	Duration     time.Duration `json:"duration"`
	Paused       bool          `json:"paused"`
	Position     time.Duration `json:"position"`
	PlaybackRate float64       `json:"playback_rate"`
	CapturedAt   time.Time     `json:"captured_at"`
}

// NewTrackEvent builds an event from a raw player state.
func NewTrackEvent(raw RawState, capturedAt time.Time) TrackEvent {
	duration := raw.Duration
	if duration < 0 {
		duration = 0
	}
	position := raw.Position
	if position < 0 {
		position = 0
	}
	return TrackEvent{
		TrackID:      raw.TrackID,
		Title:        raw.Title,
		Artist:       raw.Artist,
		Album:        raw.Album,
		Duration:     duration,
		Paused:       raw.Paused,
		Position:     position,
		PlaybackRate: raw.PlaybackRate,
		CapturedAt:   capturedAt,
	}
}

// HasTrack returns true if the event refers to a track.
func (e TrackEvent) HasTrack() bool {
	return e.TrackID != ""
}

// Status returns "Paused" or "Playing".
func (e TrackEvent) Status() string {
	if e.Paused {
		return "Paused"
	}
	return "Playing"
}
