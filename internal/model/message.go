package model

import "time"

type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChannelID string    `gorm:"size:36;not null;index:idx_messages_channel_created,priority:1" json:"channel_id"`
	SenderID  string    `gorm:"size:36;not null;index" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_messages_channel_created,priority:2" json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
