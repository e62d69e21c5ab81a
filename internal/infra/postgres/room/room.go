package infra_postgres_room

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mavrushkin/swipematch/internal/model"
	usecase_room "github.com/mavrushkin/swipematch/internal/usecase/room"
)

const pinUniqueConstraint = "rooms_pin_key"

type Driver struct {
	db *sqlx.DB
}

func New(
	db *sqlx.DB,
) *Driver {
	return &Driver{db: db}
}

type roomDTO struct {
	ID            uuid.UUID     `db:"id"`
	PIN           string        `db:"pin"`
	HostUserID    uuid.UUID     `db:"host_user_id"`
	Player2UserID uuid.NullUUID `db:"player2_user_id"`
	MovieList     []byte        `db:"movie_list"`
	Status        string        `db:"status"`
}

func (dto roomDTO) toModel() (model.Room, error) {
	var movies []model.Movie
	if len(dto.MovieList) > 0 {
		if err := json.Unmarshal(dto.MovieList, &movies); err != nil {
			return model.Room{}, err
		}
	}

	room := model.Room{
		ID:         dto.ID,
		PIN:        dto.PIN,
		HostUserID: dto.HostUserID,
		MovieList:  movies,
		Status:     dto.Status,
	}
	if dto.Player2UserID.Valid {
		p2 := dto.Player2UserID.UUID
		room.Player2UserID = &p2
	}
	return room, nil
}

func (d *Driver) Create(ctx context.Context, room model.Room) error {
	movieList, err := json.Marshal(room.MovieList)
	if err != nil {
		return err
	}

	dto := roomDTO{
		ID:         room.ID,
		PIN:        room.PIN,
		HostUserID: room.HostUserID,
		MovieList:  movieList,
		Status:     room.Status,
	}

	query := `
		INSERT INTO rooms (id, pin, host_user_id, movie_list, status)
		VALUES (:id, :pin, :host_user_id, :movie_list, :status)
	`

	_, err = d.db.NamedExecContext(ctx, query, dto)
	if err != nil {
		// Only a collision on the PIN index is worth a redraw; any other
		// unique violation is a genuine failure.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) &&
			pqErr.Code == "23505" && pqErr.Constraint == pinUniqueConstraint {
			return usecase_room.ErrPINConflict
		}
		return err
	}
	return nil
}

func (d *Driver) FindJoinable(ctx context.Context, pin string) (model.Room, error) {
	var dto roomDTO

	query := `
		SELECT id, pin, host_user_id, player2_user_id, movie_list, status
		FROM rooms
		WHERE pin = $1 AND status = $2
	`

	err := d.db.GetContext(ctx, &dto, query, pin, model.StatusWaiting)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Room{}, usecase_room.ErrResourceNotFound
		}
		return model.Room{}, err
	}

	return dto.toModel()
}

// ClaimSeat only flips the room while it is still waiting with an empty
// second seat. Zero rows back means another joiner won the race (or the room
// is gone); either way the caller sees not-found, never a corrupted room.
func (d *Driver) ClaimSeat(ctx context.Context, roomID uuid.UUID, userID uuid.UUID) (model.Room, error) {
	var dto roomDTO

	query := `
		UPDATE rooms
		SET player2_user_id = $2, status = $3
		WHERE id = $1 AND status = $4 AND player2_user_id IS NULL
		RETURNING id, pin, host_user_id, player2_user_id, movie_list, status
	`

	err := d.db.GetContext(ctx, &dto, query, roomID, userID, model.StatusReady, model.StatusWaiting)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Room{}, usecase_room.ErrResourceNotFound
		}
		return model.Room{}, err
	}

	return dto.toModel()
}

func (d *Driver) ByID(ctx context.Context, roomID uuid.UUID) (model.Room, error) {
	var dto roomDTO

	query := `
		SELECT id, pin, host_user_id, player2_user_id, movie_list, status
		FROM rooms
		WHERE id = $1
	`

	err := d.db.GetContext(ctx, &dto, query, roomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Room{}, usecase_room.ErrResourceNotFound
		}
		return model.Room{}, err
	}

	return dto.toModel()
}
