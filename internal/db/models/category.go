package models

import (
	"time"
)

// DefaultCategoryColor is used when no color is submitted for a category.
const DefaultCategoryColor = "#6366f1"

// Category groups a user's notes.
type Category struct {
	// ID is the unique identifier for the category.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the owning user. Categories are removed when the owner is deleted.
	UserID uint64 `gorm:"not null;index"`
	// User is the owning user (enforced with a foreign key constraint).
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	// Name is the category name.
	Name string `gorm:"size:50;not null"`
	// Color is the display color as a hex triplet.
	Color string `gorm:"size:7;default:'#6366f1'"`
	// CreatedAt is the timestamp when the category was created (managed by GORM).
	CreatedAt time.Time
}
