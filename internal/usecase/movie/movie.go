package usecase_movie

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mavrushkin/swipematch/internal/model"
)

var (
	// ErrNoTrailer covers both "the movie has no trailer" and lookup
	// failure. The user-visible outcome is the same notice.
	ErrNoTrailer = errors.New("no trailer available")
)

//go:generate mockery --name=CatalogProvider --output=./mocks/catalog --filename=catalog.go
type CatalogProvider interface {
	PopularMovies(ctx context.Context) ([]model.Movie, error)
	MovieTrailer(ctx context.Context, movieID string) (string, error)
}

type Usecase struct {
	catalog  CatalogProvider
	fallback []model.Movie
	logger   *slog.Logger
}

type UsecaseOption func(*Usecase)

func WithLogger(logger *slog.Logger) UsecaseOption {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func WithFallback(movies []model.Movie) UsecaseOption {
	return func(u *Usecase) {
		u.fallback = movies
	}
}

func New(catalog CatalogProvider, opts ...UsecaseOption) *Usecase {
	u := &Usecase{
		catalog:  catalog,
		fallback: FallbackMovies,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// PopularMovies never fails: an unreachable or unconfigured catalog degrades
// silently to the built-in list so room creation keeps working.
func (u *Usecase) PopularMovies(ctx context.Context) ([]model.Movie, error) {
	movies, err := u.catalog.PopularMovies(ctx)
	if err != nil {
		u.logger.Warn("catalog unavailable, serving fallback list",
			slog.String("error", err.Error()))
		return u.fallback, nil
	}
	if len(movies) == 0 {
		return u.fallback, nil
	}
	return movies, nil
}

func (u *Usecase) Trailer(ctx context.Context, movieID string) (string, error) {
	url, err := u.catalog.MovieTrailer(ctx, movieID)
	if err != nil {
		if !errors.Is(err, ErrNoTrailer) {
			u.logger.Warn("trailer lookup failed",
				slog.String("movie_id", movieID),
				slog.String("error", err.Error()))
		}
		return "", ErrNoTrailer
	}
	return url, nil
}
