package model

import "time"

// AIChatRecord is one assistant exchange: the user's prompt and the model's reply.
type AIChatRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;not null;index:idx_ai_chat_user_created,priority:1" json:"user_id"`
	Request   string    `gorm:"type:text;not null" json:"request"`
	Response  string    `gorm:"type:text;not null" json:"response"`
	CreatedAt time.Time `gorm:"index:idx_ai_chat_user_created,priority:2" json:"created_at"`
}
