package model

import "github.com/google/uuid"

// Swipe is one participant's decision on one movie within a room.
// At most one survives per (room, user, movie); re-swipes overwrite.
type Swipe struct {
	RoomID  uuid.UUID
	UserID  uuid.UUID
	MovieID string
	Liked   bool
}
