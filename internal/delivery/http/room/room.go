package http_room

import (
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
)

type Controller struct {
	usecase *usecase_room.Usecase
	auth    *http_auth_middleware.Middleware
	hub     *ws_room.Hub
	logger  *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(
	usecase *usecase_room.Usecase,
	auth *http_auth_middleware.Middleware,
	hub *ws_room.Hub,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		usecase: usecase,
		auth:    auth,
		hub:     hub,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms", c.auth.IdentityRequired())
	{
		rooms.POST("", c.create)
		rooms.POST("/join", c.join)
		rooms.GET("/:room_id", c.get)
	}
}

type JoinRequestDTO struct {
	PIN string `json:"pin" binding:"required"`
}

type RoomResponseDTO struct {
	ID            string        `json:"id"`
	PIN           string        `json:"pin"`
	HostUserID    string        `json:"host_user_id"`
	Player2UserID *string       `json:"player2_user_id"`
	Status        string        `json:"status"`
	MovieList     []model.Movie `json:"movie_list"`
}

func convertFromRoom(room model.Room) RoomResponseDTO {
	dto := RoomResponseDTO{
		ID:         room.ID.String(),
		PIN:        room.PIN,
		HostUserID: room.HostUserID.String(),
		Status:     room.Status,
		MovieList:  room.MovieList,
	}
	if room.HasPlayer2() {
		p2 := room.Player2UserID.String()
		dto.Player2UserID = &p2
	}
	return dto
}

// Create books a room for the caller: fresh PIN, fixed movie list, waiting
// status.
// @Summary Create a room
// @Tags Rooms
// @Produce json
// @Success 201 {object} RoomResponseDTO
// @Failure 401 {object} http_common.ErrorResponse
// @Failure 503 {object} http_common.ErrorResponse
// @Security UserToken
// @Router /rooms [post]
func (c *Controller) create(ctx *gin.Context) {
	hostID, ok := http_auth_middleware.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
			Message: "authentication required",
		})
		return
	}

	room, err := c.usecase.Create(ctx, hostID)
	if err != nil {
		c.logger.Error("failed to create room", slog.String("error", err.Error()))
		if errors.Is(err, usecase_room.ErrRoomsUnavailable) {
			ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{
				Message: "failed to create game, try again",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusCreated, convertFromRoom(room))
}

// Join claims the second seat by PIN. Unknown PIN and an already started
// room produce the same answer on purpose.
// @Summary Join a room by PIN
// @Tags Rooms
// @Accept json
// @Param request body JoinRequestDTO true "4-digit room PIN"
// @Produce json
// @Success 200 {object} RoomResponseDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 401 {object} http_common.ErrorResponse
// @Failure 404 {object} http_common.ErrorResponse
// @Security UserToken
// @Router /rooms/join [post]
func (c *Controller) join(ctx *gin.Context) {
	var req JoinRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	userID, ok := http_auth_middleware.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
			Message: "authentication required",
		})
		return
	}

	room, err := c.usecase.Join(ctx, req.PIN, userID)
	if err != nil {
		if errors.Is(err, usecase_room.ErrRoomNotJoinable) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room not found or game already started, check the PIN",
			})
			return
		}
		c.logger.Error("failed to join room", slog.String("pin", req.PIN), slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	// The host's idempotent self-join does not change the room, so only a
	// real seat claim is pushed to watchers.
	if room.HostUserID != userID {
		c.hub.NotifyPlayerJoined(room)
	}

	ctx.JSON(http.StatusOK, convertFromRoom(room))
}

// get serves the polling fallback: observers re-fetch the room on a timer in
// case the push channel dropped the update.
// @Summary Fetch a room by id
// @Tags Rooms
// @Param room_id path string true "Room id"
// @Produce json
// @Success 200 {object} RoomResponseDTO
// @Failure 403 {object} http_common.ErrorResponse
// @Failure 404 {object} http_common.ErrorResponse
// @Security UserToken
// @Router /rooms/{room_id} [get]
func (c *Controller) get(ctx *gin.Context) {
	roomID, err := uuid.Parse(ctx.Param("room_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid room id",
		})
		return
	}

	userID, ok := http_auth_middleware.UserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
			Message: "authentication required",
		})
		return
	}

	room, err := c.usecase.ByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, usecase_room.ErrResourceNotFound) {
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "not found",
			})
			return
		}
		c.logger.Error("failed to get room", slog.String("room_id", roomID.String()), slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	isParticipant := room.HostUserID == userID ||
		(room.HasPlayer2() && *room.Player2UserID == userID)
	if !isParticipant {
		ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
			Message: "user is not a participant of this room",
		})
		return
	}

	ctx.JSON(http.StatusOK, convertFromRoom(room))
}
