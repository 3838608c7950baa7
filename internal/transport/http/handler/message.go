package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/app"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/transport/http/response"
)

type MessageHandler struct {
	messageService *app.MessageService
	logger         *zap.Logger
}

// Content length is checked by the service in characters, not bytes.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func NewMessageHandler(messageService *app.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, logger: logger}
}

func (h *MessageHandler) ListChannel(c *gin.Context) {
	messages, err := h.messageService.ListChannelMessages(
		c.Request.Context(),
		currentUserID(c),
		c.Param("channelId"),
	)
	if err != nil {
		writeError(c, h.logger, err, "list messages failed")
		return
	}
	response.OK(c, toMessageViews(messages))
}

func (h *MessageHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.messageService.SendMessage(c.Request.Context(), app.SendMessageInput{
		UserID:    currentUserID(c),
		ChannelID: c.Param("channelId"),
		Content:   req.Content,
	})
	if err != nil {
		writeError(c, h.logger, err, "send message failed")
		return
	}
	response.Created(c, toMessageView(message))
}

func (h *MessageHandler) ListMine(c *gin.Context) {
	messages, err := h.messageService.ListMyMessages(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, err, "list my messages failed")
		return
	}
	response.OK(c, toMessageViews(messages))
}
