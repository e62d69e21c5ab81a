package infra_postgres_swipe

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mavrushkin/swipematch/internal/model"
)

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type matchDTO struct {
	RoomID  uuid.UUID `db:"room_id"`
	MovieID string    `db:"movie_id"`
}

// Add upserts the swipe and derives the match inside one transaction. The
// room row is locked first: under READ COMMITTED two concurrent likes for the
// same movie would otherwise each evaluate the "both liked" condition against
// a snapshot missing the other's uncommitted swipe, and neither would insert
// the match. Serialized per room, the second derivation always sees the first
// like committed. The match insert is conditioned on likes from both seats
// and deduplicated by the (room_id, movie_id) unique index, so re-swipes
// never re-report.
func (d *Driver) Add(ctx context.Context, swipe model.Swipe) (bool, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var roomID uuid.UUID
	lockQuery := `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &roomID, lockQuery, swipe.RoomID); err != nil {
		return false, err
	}

	upsertQuery := `
		INSERT INTO swipes (room_id, user_id, movie_id, liked)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (room_id, user_id, movie_id)
		DO UPDATE SET liked = EXCLUDED.liked
	`

	_, err = tx.ExecContext(ctx, upsertQuery, swipe.RoomID, swipe.UserID, swipe.MovieID, swipe.Liked)
	if err != nil {
		return false, err
	}

	matched := false
	if swipe.Liked {
		matchQuery := `
			INSERT INTO matches (room_id, movie_id)
			SELECT r.id, $2
			FROM rooms r
			WHERE r.id = $1
			  AND r.player2_user_id IS NOT NULL
			  AND EXISTS (
				SELECT 1 FROM swipes s
				WHERE s.room_id = r.id AND s.movie_id = $2
				  AND s.user_id = r.host_user_id AND s.liked
			  )
			  AND EXISTS (
				SELECT 1 FROM swipes s
				WHERE s.room_id = r.id AND s.movie_id = $2
				  AND s.user_id = r.player2_user_id AND s.liked
			  )
			ON CONFLICT (room_id, movie_id) DO NOTHING
		`

		result, err := tx.ExecContext(ctx, matchQuery, swipe.RoomID, swipe.MovieID)
		if err != nil {
			return false, err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return false, err
		}
		matched = rowsAffected > 0
	}

	return matched, tx.Commit()
}

func (d *Driver) Matches(ctx context.Context, roomID uuid.UUID) ([]model.Match, error) {
	var dtos []matchDTO

	query := `
		SELECT room_id, movie_id
		FROM matches
		WHERE room_id = $1
		ORDER BY movie_id
	`

	err := d.db.SelectContext(ctx, &dtos, query, roomID)
	if err != nil {
		return nil, err
	}

	matches := make([]model.Match, 0, len(dtos))
	for _, dto := range dtos {
		matches = append(matches, model.Match{
			RoomID:  dto.RoomID,
			MovieID: dto.MovieID,
		})
	}

	return matches, nil
}
