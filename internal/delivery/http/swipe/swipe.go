package http_swipe

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/mavrushkin/swipematch/internal/delivery/http/common"
	http_auth_middleware "github.com/mavrushkin/swipematch/internal/delivery/http/middleware/auth"
	ws_room "github.com/mavrushkin/swipematch/internal/delivery/ws/room"
	"github.com/mavrushkin/swipematch/internal/model"
	usecase_room "github.com/mavrushkin/swipematch/internal/usecase/room"
	usecase_swipe "github.com/mavrushkin/swipematch/internal/usecase/swipe"
)

type ParticipantValidator interface {
	IsParticipant(ctx context.Context, roomID uuid.UUID, userID uuid.UUID) (bool, error)
}

type Controller struct {
	uc   *usecase_swipe.Usecase
	pv   ParticipantValidator
	auth *http_auth_middleware.Middleware
	hub  *ws_room.Hub

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(
	uc *usecase_swipe.Usecase,
	pv ParticipantValidator,
	auth *http_auth_middleware.Middleware,
	hub *ws_room.Hub,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		uc:     uc,
		pv:     pv,
		auth:   auth,
		hub:    hub,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	room := router.Group("/rooms/:room_id", c.auth.IdentityRequired())
	room.POST("/swipes", c.swipe)
	room.GET("/matches", c.matches)
}

func (c *Controller) validateParticipant(ctx *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	roomID, err := uuid.Parse(ctx.Param("room_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid room id",
		})
		return uuid.Nil, uuid.Nil, false
	}

	userID, ok := http_auth_middleware.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
			Message: "authentication required",
		})
		return uuid.Nil, uuid.Nil, false
	}

	isParticipant, err := c.pv.IsParticipant(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, usecase_room.ErrResourceNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
			return uuid.Nil, uuid.Nil, false
		}
		c.logger.Error("failed to validate participant",
			slog.String("room_id", roomID.String()),
			slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return uuid.Nil, uuid.Nil, false
	}

	if !isParticipant {
		ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
			Message: "user is not a participant of this room",
		})
		return uuid.Nil, uuid.Nil, false
	}

	return roomID, userID, true
}

type SwipeRequestDTO struct {
	MovieID string `json:"movie_id" binding:"required"`
	Liked   *bool  `json:"liked" binding:"required"`
}

// swipe records one decision. Persistence is best-effort: a failed write is
// logged and the response is still 202, so the client keeps its card flow
// going. A match created by this swipe is pushed to the room.
// @Summary Record a swipe
// @Tags Swipes
// @Accept json
// @Param room_id path string true "Room id"
// @Param request body SwipeRequestDTO true "Decision"
// @Success 202 "Accepted"
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 403 {object} http_common.ErrorResponse
// @Security UserToken
// @Router /rooms/{room_id}/swipes [post]
func (c *Controller) swipe(ctx *gin.Context) {
	roomID, userID, ok := c.validateParticipant(ctx)
	if !ok {
		return
	}

	var req SwipeRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	matched, err := c.uc.Record(ctx, model.Swipe{
		RoomID:  roomID,
		UserID:  userID,
		MovieID: req.MovieID,
		Liked:   *req.Liked,
	})
	if err != nil {
		// Already logged by the usecase. The swipe session moves on.
		ctx.Status(http.StatusAccepted)
		return
	}

	if matched {
		c.hub.NotifyMatch(roomID, req.MovieID)
	}

	ctx.Status(http.StatusAccepted)
}

type MatchDTO struct {
	MovieID string `json:"movie_id"`
}

type MatchesResponseDTO struct {
	Matches []MatchDTO `json:"matches"`
}

// matches is the reconciliation read: everything matched so far, for clients
// that (re)entered playing mode after matches already existed.
// @Summary List matches for a room
// @Tags Swipes
// @Param room_id path string true "Room id"
// @Produce json
// @Success 200 {object} MatchesResponseDTO
// @Failure 403 {object} http_common.ErrorResponse
// @Security UserToken
// @Router /rooms/{room_id}/matches [get]
func (c *Controller) matches(ctx *gin.Context) {
	roomID, _, ok := c.validateParticipant(ctx)
	if !ok {
		return
	}

	matches, err := c.uc.Matches(ctx, roomID)
	if err != nil {
		c.logger.Error("failed to get matches",
			slog.String("room_id", roomID.String()),
			slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	dtos := make([]MatchDTO, 0, len(matches))
	for _, m := range matches {
		dtos = append(dtos, MatchDTO{MovieID: m.MovieID})
	}

	ctx.JSON(http.StatusOK, MatchesResponseDTO{Matches: dtos})
}
