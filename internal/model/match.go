package model

import "github.com/google/uuid"

// Match exists exactly once per (room, movie) both participants liked.
type Match struct {
	RoomID  uuid.UUID
	MovieID string
}
