// Package player reads Spotify playback state through the Web API.
package player

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/tessro/tracklog/internal/core"
)

// Client is the part of the Spotify API client the player needs.
type Client interface {
	PlayerState(ctx context.Context, opts ...spotify.RequestOption) (*spotify.PlayerState, error)
}

// Player implements core.StateSource for Spotify.
type Player struct {
	client Client
}

// New creates a Spotify player over an authorized client.
func New(c Client) *Player {
	return &Player{client: c}
}

// GetState returns the current playback state, or nil when nothing is loaded.
func (p *Player) GetState(ctx context.Context) (*core.RawState, error) {
	state, err := p.client.PlayerState(ctx)
	if err != nil {
		return nil, fmt.Errorf("get player state: %w", err)
	}
	return convertState(state), nil
}

func convertState(state *spotify.PlayerState) *core.RawState {
	if state == nil || state.Item == nil {
		return nil
	}
	track := state.Item

	raw := &core.RawState{
		TrackID:  string(track.URI),
		Title:    track.Name,
		Artist:   joinArtists(track.Artists),
		Album:    track.Album.Name,
		Duration: time.Duration(track.Duration) * time.Millisecond,
		Paused:   !state.Playing,
		Position: time.Duration(state.Progress) * time.Millisecond,
	}
	// The Web API reports no rate; a playing track advances at normal speed.
	if state.Playing {
		raw.PlaybackRate = 1
	}
	return raw
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}
