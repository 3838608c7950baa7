package model

import "time"

// MessageCreatedEvent is published after a message is committed.
type MessageCreatedEvent struct {
	MessageID uint      `json:"message_id"`
	ChannelID string    `json:"channel_id"`
	SenderID  string    `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
}
