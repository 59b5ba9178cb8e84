package models

import (
	"time"
)

// Note represents a single note owned by a user.
type Note struct {
	// ID is the unique identifier for the note.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the owning user. Notes are removed when the owner is deleted.
	UserID uint64 `gorm:"not null;index"`
	// User is the owning user (enforced with a foreign key constraint).
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	// CategoryID is the optional category. Cleared when the category is deleted.
	CategoryID *uint64 `gorm:"index"`
	// Category is the associated category.
	Category *Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL"`
	// Title is the note title, may be empty.
	Title string `gorm:"size:255;default:''"`
	// Content is the markdown source of the note.
	Content string `gorm:"type:text;not null"`
	// IsPinned pins the note to the top of the index.
	IsPinned bool `gorm:"not null;default:false"`
	// IsArchived moves the note out of the active list.
	IsArchived bool `gorm:"not null;default:false"`
	// IsPublic enables the public share link.
	IsPublic bool `gorm:"not null;default:false"`
	// ShareToken is the opaque token in the public share URL. Nil while private.
	ShareToken *string `gorm:"size:64;uniqueIndex"`
	// CreatedAt is the timestamp when the note was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the note was last updated (managed by GORM).
	UpdatedAt time.Time
}
