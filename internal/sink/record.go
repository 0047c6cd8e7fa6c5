package sink

import (
	"fmt"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/tessro/tracklog/internal/core"
)

// Record is the persisted form of a delivered event, shared by the file,
// database and network sinks.
type Record struct {
	EventID      string  `json:"event_id"`
	SourceID     string  `json:"source_id"`
	DataType     string  `json:"data_type"`
	Recording    string  `json:"recording"`
	DeliveredAt  int64   `json:"delivered_at"`
	CapturedAt   int64   `json:"captured_at"`
	TrackID      string  `json:"track_id"`
	Title        string  `json:"title"`
	Artist       string  `json:"artist"`
	Album        string  `json:"album"`
	DurationMs   int64   `json:"duration_ms"`
	Paused       bool    `json:"paused"`
	PositionMs   int64   `json:"position_ms"`
	PlaybackRate float64 `json:"playback_rate"`
}

// eventKey is the part of a delivery that identifies it.
type eventKey struct {
	Source     core.SourceIdentity
	Recording  string
	TrackID    string
	Paused     bool
	CapturedAt int64
}

// EventID returns a stable identifier for an event delivered on src under
// recording. Redelivering the same event yields the same id.
func EventID(src core.SourceIdentity, recording string, ev core.TrackEvent) (string, error) {
	h, err := hashstructure.Hash(eventKey{
		Source:     src,
		Recording:  recording,
		TrackID:    ev.TrackID,
		Paused:     ev.Paused,
		CapturedAt: ev.CapturedAt.UnixNano(),
	}, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("hash event: %w", err)
	}
	return fmt.Sprintf("%016x", h), nil
}

// NewRecord converts an event into its persisted form.
func NewRecord(src core.SourceIdentity, recording string, ev core.TrackEvent, deliveredAt time.Time) (Record, error) {
	id, err := EventID(src, recording, ev)
	if err != nil {
		return Record{}, err
	}
	return Record{
		EventID:      id,
		SourceID:     src.SourceID,
		DataType:     src.DataType,
		Recording:    recording,
		DeliveredAt:  deliveredAt.UnixMilli(),
		CapturedAt:   ev.CapturedAt.UnixMilli(),
		TrackID:      ev.TrackID,
		Title:        ev.Title,
		Artist:       ev.Artist,
		Album:        ev.Album,
		DurationMs:   ev.Duration.Milliseconds(),
		Paused:       ev.Paused,
		PositionMs:   ev.Position.Milliseconds(),
		PlaybackRate: ev.PlaybackRate,
	}, nil
}
