package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zmb3/spotify/v2"
)

func fullTrack() *spotify.FullTrack {
	track := &spotify.FullTrack{}
	track.URI = "spotify:track:track123"
	track.Name = "Test Song"
	track.Duration = 180000
	track.Artists = []spotify.SimpleArtist{{Name: "Artist One"}, {Name: "Artist Two"}}
	track.Album.Name = "Test Album"
	return track
}

func TestConvertState(t *testing.T) {
	state := &spotify.PlayerState{}
	state.Playing = true
	state.Progress = 42000
	state.Item = fullTrack()

	raw := convertState(state)
	if raw == nil {
		t.Fatal("convertState() = nil")
	}

	if raw.TrackID != "spotify:track:track123" {
		t.Errorf("TrackID = %q", raw.TrackID)
	}
	if raw.Title != "Test Song" {
		t.Errorf("Title = %q, want %q", raw.Title, "Test Song")
	}
	if raw.Artist != "Artist One, Artist Two" {
		t.Errorf("Artist = %q", raw.Artist)
	}
	if raw.Album != "Test Album" {
		t.Errorf("Album = %q, want %q", raw.Album, "Test Album")
	}
	if raw.Duration != 180*time.Second {
		t.Errorf("Duration = %v, want %v", raw.Duration, 180*time.Second)
	}
	if raw.Position != 42*time.Second {
		t.Errorf("Position = %v, want %v", raw.Position, 42*time.Second)
	}
	if raw.Paused {
		t.Error("Paused = true for a playing track")
	}
	if raw.PlaybackRate != 1 {
		t.Errorf("PlaybackRate = %v, want 1", raw.PlaybackRate)
	}
}

func TestConvertStatePaused(t *testing.T) {
	state := &spotify.PlayerState{}
	state.Item = fullTrack()

	raw := convertState(state)
	if !raw.Paused {
		t.Error("Paused = false for a stopped player")
	}
	if raw.PlaybackRate != 0 {
		t.Errorf("PlaybackRate = %v, want 0", raw.PlaybackRate)
	}
}

func TestConvertStateNothingLoaded(t *testing.T) {
	if convertState(nil) != nil {
		t.Error("convertState(nil) != nil")
	}
	if convertState(&spotify.PlayerState{}) != nil {
		t.Error("convertState() without an item != nil")
	}
}

type fakeClient struct {
	state *spotify.PlayerState
	err   error
}

func (f *fakeClient) PlayerState(ctx context.Context, opts ...spotify.RequestOption) (*spotify.PlayerState, error) {
	return f.state, f.err
}

func TestGetState(t *testing.T) {
	state := &spotify.PlayerState{}
	state.Playing = true
	state.Item = fullTrack()

	p := New(&fakeClient{state: state})
	raw, err := p.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if raw == nil || raw.Title != "Test Song" {
		t.Errorf("GetState() = %+v", raw)
	}

	boom := errors.New("503")
	p = New(&fakeClient{err: boom})
	if _, err := p.GetState(context.Background()); !errors.Is(err, boom) {
		t.Errorf("GetState() error = %v, want wrapped %v", err, boom)
	}
}
