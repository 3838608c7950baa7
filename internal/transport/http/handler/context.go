package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/transport/http/middleware"
)

// currentUserID is the id of the user ResolveUser attached, or "" when the
// route runs without it.
func currentUserID(c *gin.Context) string {
	if user, ok := middleware.CurrentUser(c); ok {
		return user.ID
	}
	return ""
}
