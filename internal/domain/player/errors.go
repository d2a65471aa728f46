package player

import "errors"

var (
	// ErrPlayerNotFound indicates the player doesn't exist.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrInvalidInput indicates invalid player input.
	ErrInvalidInput = errors.New("invalid player input")
)
