package models

import "time"

// Category is a named, owner-scoped bucket for transactions.
// Names are unique per owner only.
type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_categories_user_name,priority:2" json:"name"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_categories_user_name,priority:1;index:idx_categories_user_created,priority:1" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;index:idx_categories_user_created,priority:2" json:"created_at"`
}
