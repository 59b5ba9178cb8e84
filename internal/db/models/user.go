package models

import (
	"time"
)

// User represents an identity in the system.
// An identity is either a guest (ephemeral, created without authentication)
// or federated (linked to an AWS Cognito subject). A guest never carries a
// CognitoSub; once a guest is migrated to a federated identity, IsGuest is
// false for good.
type User struct {
	// ID is the unique identifier for the user. It is stable across a
	// guest-to-federated migration so owned notes and categories keep
	// their attribution.
	ID uint64 `gorm:"primaryKey"`
	// CognitoSub is the Cognito subject claim. Nil for guests, unique when present.
	CognitoSub *string `gorm:"size:255;uniqueIndex"`
	// Email is the user's email address (federated identities only).
	Email string `gorm:"size:255"`
	// DisplayName is the name shown in the UI. Auto-generated for guests.
	DisplayName string `gorm:"size:100"`
	// FirstName is the user's first or given name.
	FirstName string `gorm:"size:50"`
	// LastName is the user's last or family name.
	LastName string `gorm:"size:50"`
	// Bio is a free-form profile text.
	Bio string `gorm:"type:text"`
	// AvatarURL references the user's avatar in external file storage.
	AvatarURL string `gorm:"size:512"`
	// Timezone is the user's preferred timezone.
	Timezone string `gorm:"size:50;default:'UTC'"`
	// ProfileComplete indicates the user finished profile setup.
	ProfileComplete bool `gorm:"not null;default:false"`
	// IsGuest indicates an ephemeral identity with no provider link.
	IsGuest bool `gorm:"not null;default:false"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// GreetingName returns the name used to greet the user.
// Preference order: first+last name, first name, display name, then the
// provider-supplied fallback.
func (u *User) GreetingName(fallback string) string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.DisplayName != "":
		return u.DisplayName
	default:
		return fallback
	}
}
