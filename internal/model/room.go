package model

import "github.com/google/uuid"

type RoomStatus = string

const (
	// StatusWaiting: only the host is present, the PIN is shareable.
	StatusWaiting RoomStatus = "waiting"
	// StatusReady: both seats are taken. Terminal.
	StatusReady RoomStatus = "ready"
)

type Room struct {
	ID            uuid.UUID
	PIN           string
	HostUserID    uuid.UUID
	Player2UserID *uuid.UUID
	MovieList     []Movie
	Status        RoomStatus
}

func (r Room) HasPlayer2() bool {
	return r.Player2UserID != nil && *r.Player2UserID != uuid.Nil
}

// IsPlaying is the derived state both observer triggers reduce to.
func (r Room) IsPlaying() bool {
	return r.HasPlayer2() || r.Status == StatusReady
}
