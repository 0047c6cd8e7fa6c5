package core

import "time"

// RawState is a single, undeduplicated notification from a player.
type RawState struct {
	TrackID      string        `json:"track_id"`
	Title        string        `json:"title"`
	Artist       string        `json:"artist"`
	Album        string        `json:"album"`
	Duration     time.Duration `json:"duration"`
	Paused       bool          `json:"paused"`
	Position     time.Duration `json:"position"`
	PlaybackRate float64       `json:"playback_rate"`
}

// HasTrack returns true if there is an active track.
func (s *RawState) HasTrack() bool {
	return s != nil && s.TrackID != ""
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *RawState) ProgressPercent() float64 {
	if s == nil || s.Duration == 0 {
		return 0
	}
	return float64(s.Position) / float64(s.Duration) * 100
}
