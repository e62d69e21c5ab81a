package usecase_room

import (
	"context"
	"errors"
	"math/rand"
	"strconv"

	"github.com/google/uuid"
	"github.com/mavrushkin/swipematch/internal/model"
)

var (
	ErrPINConflict      = errors.New("pin conflict")
	ErrRoomsUnavailable = errors.New("no available rooms")
	ErrRoomNotJoinable  = errors.New("room not joinable")
	ErrInternal         = errors.New("internal error")
	ErrResourceNotFound = errors.New("no such resource")
)

//go:generate mockery --name=RoomRepository --output=./mocks/repository --filename=repository.go
type RoomRepository interface {
	// Create must report ErrPINConflict when the room's PIN collides with
	// an existing one, so the caller can redraw.
	Create(ctx context.Context, room model.Room) error
	// FindJoinable resolves a PIN to a room still in the waiting state.
	FindJoinable(ctx context.Context, pin string) (model.Room, error)
	// ClaimSeat is a guarded update: it only succeeds while the room is
	// still waiting and the second seat is empty.
	ClaimSeat(ctx context.Context, roomID uuid.UUID, userID uuid.UUID) (model.Room, error)
	ByID(ctx context.Context, roomID uuid.UUID) (model.Room, error)
}

//go:generate mockery --name=Catalog --output=./mocks/catalog --filename=catalog.go
type Catalog interface {
	PopularMovies(ctx context.Context) ([]model.Movie, error)
}

type Usecase struct {
	roomRepository RoomRepository
	catalog        Catalog
}

func New(
	roomRepository RoomRepository,
	catalog Catalog,
) *Usecase {
	return &Usecase{
		roomRepository: roomRepository,
		catalog:        catalog,
	}
}

// Create fixes the movie list at creation time and persists the room in the
// waiting state. PINs are drawn at random; the store's unique index is the
// last line of defense against concurrent creators picking the same PIN.
func (u *Usecase) Create(ctx context.Context, hostID uuid.UUID) (model.Room, error) {
	movies, err := u.catalog.PopularMovies(ctx)
	if err != nil {
		return model.Room{}, errors.Join(ErrInternal, err)
	}

	var retries = 3
	for retries > 0 {
		room := model.Room{
			ID:         uuid.New(),
			PIN:        u.buildPIN(),
			HostUserID: hostID,
			MovieList:  movies,
			Status:     model.StatusWaiting,
		}
		if err := u.roomRepository.Create(ctx, room); err != nil {
			if errors.Is(err, ErrPINConflict) {
				retries--
				continue
			}
			return model.Room{}, errors.Join(ErrInternal, err)
		}
		return room, nil
	}
	return model.Room{}, ErrRoomsUnavailable
}

// 4 decimal digits, never a leading zero.
func (u *Usecase) buildPIN() string {
	return strconv.Itoa(1000 + rand.Intn(9000))
}

// Join moves a waiting room to ready. An unknown PIN and an already started
// room both come back as ErrRoomNotJoinable: the two cases are deliberately
// not distinguished so probing a PIN leaks nothing. The host joining their
// own room is a no-op (page reload support).
func (u *Usecase) Join(ctx context.Context, pin string, userID uuid.UUID) (model.Room, error) {
	room, err := u.roomRepository.FindJoinable(ctx, pin)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return model.Room{}, ErrRoomNotJoinable
		}
		return model.Room{}, errors.Join(ErrInternal, err)
	}

	if room.HostUserID == userID {
		return room, nil
	}

	claimed, err := u.roomRepository.ClaimSeat(ctx, room.ID, userID)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			// Someone else's guarded update landed first.
			return model.Room{}, ErrRoomNotJoinable
		}
		return model.Room{}, errors.Join(ErrInternal, err)
	}

	return claimed, nil
}

func (u *Usecase) ByID(ctx context.Context, roomID uuid.UUID) (model.Room, error) {
	room, err := u.roomRepository.ByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return model.Room{}, ErrResourceNotFound
		}
		return model.Room{}, errors.Join(ErrInternal, err)
	}
	return room, nil
}

// IsParticipant is used by delivery to gate room-scoped reads and writes.
func (u *Usecase) IsParticipant(ctx context.Context, roomID uuid.UUID, userID uuid.UUID) (bool, error) {
	room, err := u.ByID(ctx, roomID)
	if err != nil {
		return false, err
	}
	if room.HostUserID == userID {
		return true, nil
	}
	return room.HasPlayer2() && *room.Player2UserID == userID, nil
}
