package model

import "time"

const (
	ChannelTypeChannel = "channel"
	ChannelTypeDM      = "dm"
)

type Channel struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ChannelType string    `gorm:"size:16;not null;index" json:"channel_type"`
	Name        *string   `gorm:"size:50;uniqueIndex" json:"name"`
	Description *string   `gorm:"size:200" json:"description"`
	CreatorID   string    `gorm:"size:36;not null" json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Members is resolved from channel_members by the repository.
	Members []User `gorm:"-" json:"members"`
}

// ChannelMember is the membership join row. Its existence grants access.
type ChannelMember struct {
	ChannelID string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time `json:"created_at"`
}
