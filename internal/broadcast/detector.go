package broadcast

import "github.com/tessro/tracklog/internal/core"

// StateKey is the part of a player state that decides whether it is news.
// Position, rate and metadata are deliberately left out, so progress updates
// on the same track never produce an event.
type StateKey struct {
	TrackID string
	Paused  bool
}

// KeyOf extracts the dedup key from a raw state.
func KeyOf(s core.RawState) StateKey {
	return StateKey{TrackID: s.TrackID, Paused: s.Paused}
}

// ShouldEmit reports whether cur is a change relative to prev. A nil prev
// means nothing has been seen yet in this session.
func ShouldEmit(prev *StateKey, cur StateKey) bool {
	if prev == nil {
		return true
	}
	return prev.TrackID != cur.TrackID || prev.Paused != cur.Paused
}
