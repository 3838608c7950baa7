package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/app"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/transport/http/middleware"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/transport/http/response"
)

type UserHandler struct {
	userService *app.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *app.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// Me runs behind AuthJWT only, so a session whose user record is missing
// gets a 404 here rather than the 401 ResolveUser would give.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.ResolveSession(c.Request.Context(), c.GetString(middleware.ContextAuthIDKey))
	if err != nil {
		writeError(c, h.logger, err, "fetch current user failed")
		return
	}
	response.OK(c, toUserView(user))
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.ListOthers(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, err, "list users failed")
		return
	}
	response.OK(c, toUserSummaries(users))
}
