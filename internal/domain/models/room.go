package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Source tags where a track request came from.
type Source string

const (
	SourceWeb     Source = "web"
	SourceDiscord Source = "discord"
	SourceTwitch  Source = "twitch"
)

// Track is one playable item. Immutable once added, except the play counter.
type Track struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Duration  float64   `json:"duration"` // seconds
	Thumbnail string    `json:"thumbnail"`
	AddedBy   string    `json:"added_by"`
	AddedAt   time.Time `json:"added_at"`
	Plays     int       `json:"plays"`
	Source    Source    `json:"source"`
}

// Playlist is stored as a single JSONB column so playlist mutations stay
// inside one row-level transaction.
type Playlist []Track

func (p Playlist) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

func (p *Playlist) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = Playlist{}
		return nil
	default:
		return fmt.Errorf("unsupported playlist source type %T", src)
	}
}

// Room represents one listening session.
type Room struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	OwnerID        string    `json:"owner_id" db:"owner_id"`
	DJID           string    `json:"dj_id" db:"dj_id"`
	DJName         string    `json:"dj_name" db:"dj_name"`
	Playlist       Playlist  `json:"playlist" db:"playlist"`
	CurrentTrackID string    `json:"current_track_id" db:"current_track_id"`
	IsPlaying      bool      `json:"is_playing" db:"is_playing"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TrackIndex returns the playlist index of the track with the given id,
// or -1 when it is absent.
func (r *Room) TrackIndex(trackID string) int {
	if trackID == "" {
		return -1
	}
	for i, t := range r.Playlist {
		if t.ID == trackID {
			return i
		}
	}
	return -1
}

// CurrentTrack resolves CurrentTrackID against the playlist.
func (r *Room) CurrentTrack() *Track {
	if i := r.TrackIndex(r.CurrentTrackID); i >= 0 {
		return &r.Playlist[i]
	}
	return nil
}

// HasTrack reports whether a track id is already in the playlist.
func (r *Room) HasTrack(trackID string) bool {
	return r.TrackIndex(trackID) >= 0
}
