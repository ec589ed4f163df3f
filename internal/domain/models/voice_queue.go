package models

import "time"

// Platform identifies which chat platform a voice queue entry came from.
type Platform string

const (
	PlatformDiscord Platform = "discord"
	PlatformTwitch  Platform = "twitch"
)

// VoiceQueueEntry is one waiting participant. At most one entry exists per
// (room, user); re-joining refreshes AddedAt and moves the user to the back.
type VoiceQueueEntry struct {
	UserID   string    `json:"user_id" db:"user_id"`
	Username string    `json:"username" db:"username"`
	Platform Platform  `json:"platform" db:"platform"`
	AddedAt  time.Time `json:"added_at" db:"added_at"`
}
