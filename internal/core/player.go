package core

import "context"

// StateSource reports the current state of an external player.
type StateSource interface {
	// GetState returns the player's state, or nil when nothing is loaded.
	GetState(ctx context.Context) (*RawState, error)
}
