package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message. CreatedAt is assigned here when the caller left it
// zero; the content is stored verbatim.
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Omit("Sender").Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListByChannelID returns the channel's messages oldest first. Rows sharing a
// timestamp keep insertion order.
func (r *MessageRepository) ListByChannelID(ctx context.Context, channelID string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("channel_id = ?", channelID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list messages by channel failed: %w", err)
	}
	return messages, nil
}

// ListBySenderID returns everything the user has sent, newest first.
func (r *MessageRepository) ListBySenderID(ctx context.Context, senderID string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("sender_id = ?", senderID).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list messages by sender failed: %w", err)
	}
	return messages, nil
}
