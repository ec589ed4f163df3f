package models

import "time"

// TwitchBotCredential is the process-wide bot identity, created once by a
// manual authorization flow and rotated in place by the refresh path.
type TwitchBotCredential struct {
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	Username     string    `db:"bot_username"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// ChannelBinding associates a room member's Twitch channel with a room.
// The membership synchronizer derives the desired join-set from these.
type ChannelBinding struct {
	RoomID        string `db:"room_id"`
	UserID        string `db:"user_id"`
	TwitchChannel string `db:"twitch_channel"`
}
