package model

import "time"

type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AuthID    string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Email     string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
