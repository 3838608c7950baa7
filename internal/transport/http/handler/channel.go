package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/app"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/transport/http/response"
)

type ChannelHandler struct {
	channelService *app.ChannelService
	logger         *zap.Logger
}

type CreateChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"omitempty,oneof=channel dm"`
	OtherUserID string `json:"otherUserId"`
}

func NewChannelHandler(channelService *app.ChannelService, logger *zap.Logger) *ChannelHandler {
	return &ChannelHandler{channelService: channelService, logger: logger}
}

func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.channelService.ListChannels(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, err, "list channels failed")
		return
	}
	response.OK(c, toChannelViews(channels))
}

// Create answers 201 for a new channel and 200 when the reuse_existing DM
// policy handed back a DM that already existed.
func (h *ChannelHandler) Create(c *gin.Context) {
	var req CreateChannelRequest
	if !bindJSON(c, &req) {
		return
	}

	channel, created, err := h.channelService.CreateChannel(c.Request.Context(), app.CreateChannelInput{
		CreatorID:   currentUserID(c),
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		OtherUserID: req.OtherUserID,
	})
	if err != nil {
		writeError(c, h.logger, err, "create channel failed")
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, toChannelView(channel))
}

func (h *ChannelHandler) Get(c *gin.Context) {
	channel, err := h.channelService.Authorize(
		c.Request.Context(),
		currentUserID(c),
		c.Param("channelId"),
	)
	if err != nil {
		writeError(c, h.logger, err, "get channel failed")
		return
	}
	response.OK(c, toChannelView(channel))
}
