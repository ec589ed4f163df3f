package domain

import "errors"

// Sentinel errors shared between usecases and adapters. Command channels map
// these to user-facing chat text; anything else becomes a generic failure line.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrEmptyPlaylist   = errors.New("playlist is empty")
	ErrNoTrackSelected = errors.New("no track selected")
	ErrNoResults       = errors.New("no results")
	ErrNoCredential    = errors.New("bot credential not found")
)
