package models

import "time"

// RefreshToken stores the SHA-256 of a refresh token handed to a client, for
// rotation and revocation. The raw token is never persisted.
type RefreshToken struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:36;index;not null"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"default:false;not null"`
	CreatedAt time.Time
}
