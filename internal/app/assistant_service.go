package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/ai"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/metrics"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
)

const emptyReply = "The model returned an empty response."

// Completer produces an assistant reply for a prompt transcript.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

type AssistantService struct {
	ledger       *UsageLedger
	llm          Completer
	systemPrompt string
	logger       *zap.Logger
}

type AssistantReply struct {
	Reply     string
	Record    *model.AIChatRecord
	Remaining int64
}

type Usage struct {
	Limit     int64 `json:"limit"`
	Used      int64 `json:"used"`
	Remaining int64 `json:"remaining"`
	Exceeded  bool  `json:"exceeded"`
}

func NewAssistantService(ledger *UsageLedger, llm Completer, systemPrompt string, logger *zap.Logger) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{
		ledger:       ledger,
		llm:          llm,
		systemPrompt: strings.TrimSpace(systemPrompt),
		logger:       logger,
	}
}

// Chat answers one prompt. The quota is checked before the model call and
// again, atomically, when the exchange is recorded.
func (s *AssistantService) Chat(ctx context.Context, userID, message string) (*AssistantReply, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if err := validateContent("message", message); err != nil {
		return nil, err
	}

	exceeded, err := s.ledger.IsLimitExceeded(ctx, userID)
	if err != nil {
		return nil, err
	}
	if exceeded {
		metrics.AIChatRequests.WithLabelValues("limited").Inc()
		return nil, ErrDailyLimitExceeded
	}

	prompt := make([]ai.ChatMessage, 0, 2)
	if s.systemPrompt != "" {
		prompt = append(prompt, ai.ChatMessage{Role: "system", Content: s.systemPrompt})
	}
	prompt = append(prompt, ai.ChatMessage{Role: "user", Content: message})

	reply, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		metrics.AIChatRequests.WithLabelValues("upstream_error").Inc()
		s.logger.Error("ai completion failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = emptyReply
	}

	record, err := s.ledger.RecordConversationWithinLimit(ctx, userID, message, reply)
	if err != nil {
		if errors.Is(err, ErrDailyLimitExceeded) {
			metrics.AIChatRequests.WithLabelValues("limited").Inc()
		}
		return nil, err
	}
	metrics.AIChatRequests.WithLabelValues("ok").Inc()

	left, err := s.ledger.Remaining(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AssistantReply{Reply: reply, Record: record, Remaining: left}, nil
}

func (s *AssistantService) Usage(ctx context.Context, userID string) (*Usage, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	used, err := s.ledger.TodayCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	limit := s.ledger.Limit()
	return &Usage{
		Limit:     limit,
		Used:      used,
		Remaining: remaining(limit, used),
		Exceeded:  used >= limit,
	}, nil
}

func (s *AssistantService) History(ctx context.Context, userID string, limit int) ([]model.AIChatRecord, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.ledger.History(ctx, userID, limit)
}
