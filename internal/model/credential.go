package model

import "time"

// Credential is the login record of the embedded identity provider. It is
// linked to a User only through AuthID.
type Credential struct {
	AuthID       string    `gorm:"primaryKey;size:64" json:"-"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"-"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"-"`
}
