// Package user provides the durable identity store.
//
// Lookups that miss return (nil, nil): a missing identity drives the
// create/migrate branching in the sign-in flow and is not an error.
// Transport failures propagate as errors. Uniqueness violations on the
// Cognito subject surface as gorm.ErrDuplicatedKey so callers can
// retry-lookup the winner of a concurrent sign-in.
package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrDisplayNameEmpty is returned when creating an identity without a display name.
	ErrDisplayNameEmpty = errors.New("display name cannot be empty")
	// ErrSubEmpty is returned when a federated operation is missing the subject id.
	ErrSubEmpty = errors.New("subject id cannot be empty")
	// ErrNotGuest is returned when a migration targets an identity that is not a guest.
	ErrNotGuest = errors.New("identity is not a guest")
)

// ProfileFields holds the mutable profile attributes saved from the profile form.
type ProfileFields struct {
	FirstName   string
	LastName    string
	DisplayName string
	Bio         string
	Timezone    string
}

// FindByID retrieves an identity by its internal id. A miss returns (nil, nil).
func FindByID(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User
	result := db.First(&u, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &u, nil
}

// FindBySub retrieves an identity by its Cognito subject. A miss returns (nil, nil).
func FindBySub(db *gorm.DB, sub string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if sub == "" {
		return nil, ErrSubEmpty
	}

	var u models.User
	result := db.Where("cognito_sub = ?", sub).First(&u)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return &u, nil
}

// CreateGuest creates a new guest identity with the given display name.
func CreateGuest(db *gorm.DB, displayName string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if displayName == "" {
		return nil, ErrDisplayNameEmpty
	}

	u := &models.User{
		DisplayName: displayName,
		IsGuest:     true,
	}

	result := db.Create(u)
	if result.Error != nil {
		return nil, result.Error
	}

	return u, nil
}

// CreateFederated creates a new identity linked to a Cognito subject.
func CreateFederated(db *gorm.DB, sub, email, displayName string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if sub == "" {
		return nil, ErrSubEmpty
	}

	u := &models.User{
		CognitoSub:  &sub,
		Email:       email,
		DisplayName: displayName,
	}

	result := db.Create(u)
	if result.Error != nil {
		return nil, result.Error
	}

	return u, nil
}

// MigrateGuestToFederated attaches a Cognito subject to an existing guest
// identity and clears the guest flag. The internal id is unchanged, so all
// notes and categories created as a guest stay attributed to the identity.
// Returns ErrNotGuest when the target identity is missing or not a guest.
func MigrateGuestToFederated(db *gorm.DB, id uint64, sub, email, displayName string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if sub == "" {
		return nil, ErrSubEmpty
	}

	result := db.Model(&models.User{}).
		Where("id = ? AND is_guest = ?", id, true).
		Updates(map[string]any{
			"cognito_sub":  sub,
			"email":        email,
			"display_name": displayName,
			"is_guest":     false,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrNotGuest
	}

	return FindByID(db, id)
}

// UpdateProfile saves the profile form fields and marks the profile complete.
func UpdateProfile(db *gorm.DB, id uint64, fields ProfileFields) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if fields.DisplayName == "" {
		return nil, ErrDisplayNameEmpty
	}

	timezone := fields.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	result := db.Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"first_name":       fields.FirstName,
			"last_name":        fields.LastName,
			"display_name":     fields.DisplayName,
			"bio":              fields.Bio,
			"timezone":         timezone,
			"profile_complete": true,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	return FindByID(db, id)
}

// DeleteGuest removes a guest identity. The delete is guarded on the guest
// flag, so it is a silent no-op for federated identities.
func DeleteGuest(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("id = ? AND is_guest = ?", id, true).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}

	return nil
}
