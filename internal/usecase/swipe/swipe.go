package usecase_swipe

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mavrushkin/swipematch/internal/model"
)

var (
	ErrUnableToSaveSwipe  = errors.New("unable to save swipe")
	ErrUnableToGetMatches = errors.New("unable to get matches")
	ErrResourceNotFound   = errors.New("no such resource")
)

//go:generate mockery --name=SwipeRepository --output=./mocks/repository --filename=repository.go
type SwipeRepository interface {
	// Add upserts the swipe (last write wins per (room, user, movie)) and,
	// in the same transaction, derives the match row when likes from both
	// participants exist. Reports whether a new match row landed.
	Add(ctx context.Context, swipe model.Swipe) (matched bool, err error)
	Matches(ctx context.Context, roomID uuid.UUID) ([]model.Match, error)
}

type Usecase struct {
	swipeRepository SwipeRepository
	logger          *slog.Logger
}

type UsecaseOption func(*Usecase)

func WithLogger(logger *slog.Logger) UsecaseOption {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(r SwipeRepository, opts ...UsecaseOption) *Usecase {
	u := &Usecase{
		swipeRepository: r,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Record is a best-effort, at-most-once write: a failed swipe is logged and
// reported, but callers are permitted to ignore the error and advance the
// session anyway. A lost swipe can cost a match; that tradeoff is the
// contract, not an accident.
func (u *Usecase) Record(ctx context.Context, swipe model.Swipe) (bool, error) {
	matched, err := u.swipeRepository.Add(ctx, swipe)
	if err != nil {
		u.logger.Error("swipe not recorded",
			slog.String("room_id", swipe.RoomID.String()),
			slog.String("movie_id", swipe.MovieID),
			slog.String("error", err.Error()))
		return false, errors.Join(ErrUnableToSaveSwipe, err)
	}
	return matched, nil
}

// Matches is the reconciliation read an observer performs when it enters
// playing mode.
func (u *Usecase) Matches(ctx context.Context, roomID uuid.UUID) ([]model.Match, error) {
	matches, err := u.swipeRepository.Matches(ctx, roomID)
	if err != nil {
		return nil, errors.Join(ErrUnableToGetMatches, err)
	}
	return matches, nil
}
