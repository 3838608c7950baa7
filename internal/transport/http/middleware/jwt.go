package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/app"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/pkg/jwtutil"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/transport/http/response"
)

const (
	ContextAuthIDKey = "authID"
	ContextUserIDKey = "userID"
	ContextUserKey   = "user"
)

// UserResolver maps a verified auth id to the user directory entry.
type UserResolver interface {
	ResolveSession(ctx context.Context, authID string) (*model.User, error)
}

func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing authorization header")
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid authorization scheme")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
			return
		}

		c.Set(ContextAuthIDKey, claims.Subject)
		c.Next()
	}
}

// ResolveUser must run after AuthJWT. A valid token whose user record is
// gone is treated as unauthenticated.
func ResolveUser(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.ResolveSession(c.Request.Context(), c.GetString(ContextAuthIDKey))
		if err != nil {
			switch {
			case errors.Is(err, app.ErrUnauthenticated), errors.Is(err, app.ErrUserNotFound):
				response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found for session")
			default:
				_ = c.Error(err)
				response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "resolve session failed")
			}
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

// CurrentUser returns the user ResolveUser stored on the context.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}
