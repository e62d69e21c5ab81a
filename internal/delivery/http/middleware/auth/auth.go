package http_auth_middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/mavrushkin/swipematch/internal/delivery/http/common"
)

const (
	HeaderUserToken = "X-user-token"
	contextUserID   = "user_id"
)

type IdentityResolver interface {
	Resolve(token string) (uuid.UUID, error)
}

type Middleware struct {
	resolver IdentityResolver
	logger   *slog.Logger
}

func New(
	resolver IdentityResolver,
) *Middleware {
	return &Middleware{
		resolver: resolver,
		logger:   slog.Default(),
	}
}

// IdentityRequired resolves the caller's identity or rejects the request.
// Every room lifecycle and swipe operation sits behind this.
func (m *Middleware) IdentityRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		t := ctx.GetHeader(HeaderUserToken)
		if t == "" {
			ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
				Message: "authentication required",
			})
			ctx.Abort()
			return
		}

		userID, err := m.resolver.Resolve(t)
		if err != nil {
			m.logger.Error("failed to resolve session", slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
			ctx.Abort()
			return
		}
		if userID == uuid.Nil {
			ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
				Message: "authentication required",
			})
			ctx.Abort()
			return
		}

		ctx.Set(contextUserID, userID)
		ctx.Next()
	}
}

// UserID pulls the identity set by IdentityRequired out of the request
// context.
func UserID(ctx *gin.Context) (uuid.UUID, bool) {
	v, ok := ctx.Get(contextUserID)
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	return userID, ok
}
