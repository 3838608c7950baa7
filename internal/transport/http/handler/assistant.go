package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/app"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/transport/http/response"
)

type AssistantHandler struct {
	assistantService *app.AssistantService
	logger           *zap.Logger
}

type AssistantChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type assistantChatResponse struct {
	Reply     string           `json:"reply"`
	Remaining int64            `json:"remaining"`
	Record    aiChatRecordView `json:"record"`
}

func NewAssistantHandler(assistantService *app.AssistantService, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService, logger: logger}
}

func (h *AssistantHandler) Chat(c *gin.Context) {
	var req AssistantChatRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.assistantService.Chat(c.Request.Context(), currentUserID(c), req.Message)
	if err != nil {
		writeError(c, h.logger, err, "ai chat failed")
		return
	}
	response.OK(c, assistantChatResponse{
		Reply:     reply.Reply,
		Remaining: reply.Remaining,
		Record:    toAIChatRecordView(reply.Record),
	})
}

func (h *AssistantHandler) Usage(c *gin.Context) {
	usage, err := h.assistantService.Usage(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, err, "get ai usage failed")
		return
	}
	response.OK(c, usage)
}

func (h *AssistantHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(app.DefaultHistoryLimit)))
	records, err := h.assistantService.History(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		writeError(c, h.logger, err, "get ai history failed")
		return
	}
	response.OK(c, toAIChatRecordViews(records))
}
