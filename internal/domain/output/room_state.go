package output

import "github.com/auxroom/auxroom/internal/domain/models"

// NoDJ is interpolated directly into chat output when a room has no DJ.
const NoDJ = "No DJ"

// RoomState is the read-only playback projection served to status commands.
type RoomState struct {
	RoomID         string        `json:"room_id"`
	Name           string        `json:"name"`
	IsPlaying      bool          `json:"is_playing"`
	CurrentTrack   *models.Track `json:"current_track"`
	PlaylistLength int           `json:"playlist_length"`
	DJDisplayName  string        `json:"dj_display_name"`
}
