package app

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/metrics"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/repository"
)

type MessageService struct {
	channels     *ChannelService
	messageRepo  *repository.MessageRepository
	historyCache HistoryCache
	publisher    MessageEventPublisher
	logger       *zap.Logger
}

// HistoryCache stores a channel's message list tagged with the channel's
// version. An entry is only served while its version is current.
type HistoryCache interface {
	Version(ctx context.Context, channelID string) (int64, error)
	Bump(ctx context.Context, channelID string) error
	Get(ctx context.Context, channelID string) ([]model.Message, int64, bool, error)
	Set(ctx context.Context, channelID string, version int64, messages []model.Message) error
}

type MessageEventPublisher interface {
	PublishMessageCreated(ctx context.Context, event model.MessageCreatedEvent) error
}

type SendMessageInput struct {
	UserID    string
	ChannelID string
	Content   string
}

// NewMessageService wires the message store behind the access gate. cache and
// publisher may be nil.
func NewMessageService(
	channels *ChannelService,
	messageRepo *repository.MessageRepository,
	historyCache HistoryCache,
	publisher MessageEventPublisher,
	logger *zap.Logger,
) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{
		channels:     channels,
		messageRepo:  messageRepo,
		historyCache: historyCache,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *MessageService) ListChannelMessages(ctx context.Context, userID, channelID string) ([]model.Message, error) {
	if _, err := s.channels.Authorize(ctx, userID, channelID); err != nil {
		return nil, err
	}
	return s.loadHistory(ctx, channelID)
}

func (s *MessageService) loadHistory(ctx context.Context, channelID string) ([]model.Message, error) {
	if s.historyCache == nil {
		return s.messageRepo.ListByChannelID(ctx, channelID)
	}

	current, err := s.historyCache.Version(ctx, channelID)
	if err != nil {
		s.logger.Warn("read history version failed", zap.String("channel_id", channelID), zap.Error(err))
		return s.messageRepo.ListByChannelID(ctx, channelID)
	}
	cached, version, hit, err := s.historyCache.Get(ctx, channelID)
	if err == nil && hit && version == current {
		metrics.HistoryCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.HistoryCacheLookups.WithLabelValues("miss").Inc()

	messages, err := s.messageRepo.ListByChannelID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := s.historyCache.Set(ctx, channelID, current, messages); err != nil {
		s.logger.Warn("store history cache failed", zap.String("channel_id", channelID), zap.Error(err))
	}
	return messages, nil
}

func (s *MessageService) SendMessage(ctx context.Context, input SendMessageInput) (*model.Message, error) {
	if err := validateContent("content", input.Content); err != nil {
		return nil, err
	}

	channel, err := s.channels.Authorize(ctx, input.UserID, input.ChannelID)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		ChannelID: channel.ID,
		SenderID:  input.UserID,
		Content:   input.Content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	for i := range channel.Members {
		if channel.Members[i].ID == input.UserID {
			sender := channel.Members[i]
			message.Sender = &sender
			break
		}
	}
	metrics.MessagesSent.Inc()

	if s.historyCache != nil {
		if err := s.historyCache.Bump(ctx, channel.ID); err != nil {
			s.logger.Warn("bump history version failed", zap.String("channel_id", channel.ID), zap.Error(err))
		}
	}
	if s.publisher != nil {
		event := model.MessageCreatedEvent{
			MessageID: message.ID,
			ChannelID: message.ChannelID,
			SenderID:  message.SenderID,
			CreatedAt: message.CreatedAt,
		}
		if err := s.publisher.PublishMessageCreated(ctx, event); err != nil {
			s.logger.Warn("publish message event failed", zap.Uint("message_id", message.ID), zap.Error(err))
		}
	}
	return message, nil
}

// ListMyMessages returns the caller's own messages across all channels,
// newest first.
func (s *MessageService) ListMyMessages(ctx context.Context, userID string) ([]model.Message, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.messageRepo.ListBySenderID(ctx, userID)
}

// WarmHistory reloads a channel's history into the cache at the current
// version. It is driven by message events.
func (s *MessageService) WarmHistory(ctx context.Context, channelID string) error {
	if s.historyCache == nil {
		return nil
	}
	version, err := s.historyCache.Version(ctx, channelID)
	if err != nil {
		return err
	}
	messages, err := s.messageRepo.ListByChannelID(ctx, channelID)
	if err != nil {
		return err
	}
	return s.historyCache.Set(ctx, channelID, version, messages)
}

// validateContent bounds content as sent. Whitespace-only content is a
// valid message; trimming is left to the client.
func validateContent(field, content string) error {
	if content == "" {
		return NewValidationError(field, "is required")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return NewValidationError(field, "must be at most 1000 characters")
	}
	return nil
}
