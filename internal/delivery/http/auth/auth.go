package http_auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/mavrushkin/swipematch/internal/delivery/http/common"
	http_auth_middleware "github.com/mavrushkin/swipematch/internal/delivery/http/middleware/auth"
)

type SessionIssuer interface {
	Issue() (string, uuid.UUID, error)
}

type Controller struct {
	sessions SessionIssuer
	logger   *slog.Logger
}

func New(sessions SessionIssuer) *Controller {
	return &Controller{
		sessions: sessions,
		logger:   slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/sessions", c.createSession)
}

type SessionResponseDTO struct {
	UserID string `json:"user_id"`
}

// createSession issues an anonymous identity. The token comes back in the
// X-user-token header, same place the client sends it from.
func (c *Controller) createSession(ctx *gin.Context) {
	token, userID, err := c.sessions.Issue()
	if err != nil {
		c.logger.Error("failed to issue session", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.Header(http_auth_middleware.HeaderUserToken, token)
	ctx.JSON(http.StatusCreated, SessionResponseDTO{
		UserID: userID.String(),
	})
}
