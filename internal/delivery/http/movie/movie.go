package http_movie

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/mavrushkin/swipematch/internal/delivery/http/common"
	"github.com/mavrushkin/swipematch/internal/model"
	usecase_movie "github.com/mavrushkin/swipematch/internal/usecase/movie"
)

type Controller struct {
	uc     *usecase_movie.Usecase
	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(uc *usecase_movie.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:     uc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	movies := router.Group("/movies")
	movies.GET("/popular", c.popular)
	movies.GET("/:id/trailer", c.trailer)
}

type MoviesListResponseDTO struct {
	Movies []model.Movie `json:"movies"`
	Total  int           `json:"total"`
}

// popular never errors towards the client: catalog failure means the
// fallback list.
func (c *Controller) popular(ctx *gin.Context) {
	movies, err := c.uc.PopularMovies(ctx)
	if err != nil {
		c.logger.Error("failed to load movies", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusOK, MoviesListResponseDTO{
		Movies: movies,
		Total:  len(movies),
	})
}

type TrailerResponseDTO struct {
	TrailerURL string `json:"trailer_url"`
}

func (c *Controller) trailer(ctx *gin.Context) {
	movieID := ctx.Param("id")

	url, err := c.uc.Trailer(ctx, movieID)
	if err != nil {
		if errors.Is(err, usecase_movie.ErrNoTrailer) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "no trailer available",
			})
			return
		}
		c.logger.Error("failed to get trailer",
			slog.String("movie_id", movieID),
			slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusOK, TrailerResponseDTO{TrailerURL: url})
}
