// Package note provides CRUD operations for notes, including pin/archive
// toggles, public share links, per-user statistics and export queries.
// Every operation is scoped to the owning user id.
package note

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/db/models"
)

const userScopePattern = "id = ? AND user_id = ?"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrContentEmpty is returned when creating or updating a note without content.
	ErrContentEmpty = errors.New("note content cannot be empty")
	// ErrNoteNotFound is returned when a note does not exist or belongs to another user.
	ErrNoteNotFound = errors.New("note not found")
)

// ListFilter narrows the note listing.
type ListFilter struct {
	Search     string  // substring match on title or content
	CategoryID *uint64 // only notes in this category
	Archived   bool    // list archived instead of active notes
}

// Stats holds per-user note statistics.
type Stats struct {
	Total           int64 `json:"total_notes"`
	Active          int64 `json:"active_notes"`
	Pinned          int64 `json:"pinned_notes"`
	Archived        int64 `json:"archived_notes"`
	TotalCharacters int64 `json:"total_characters"`
}

// List retrieves a user's notes, pinned first, most recently updated next.
func List(db *gorm.DB, userID uint64, filter ListFilter) ([]models.Note, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Preload("Category").
		Where("user_id = ? AND is_archived = ?", userID, filter.Archived)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", pattern, pattern)
	}

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var notes []models.Note
	result := query.Order("is_pinned DESC, updated_at DESC").Find(&notes)
	if result.Error != nil {
		return nil, result.Error
	}

	return notes, nil
}

// Find retrieves a single note owned by the user.
func Find(db *gorm.DB, userID, noteID uint64) (*models.Note, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var n models.Note
	result := db.Where(userScopePattern, noteID, userID).First(&n)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, result.Error
	}

	return &n, nil
}

// Create creates a new note for the user.
func Create(db *gorm.DB, userID uint64, title, content string, categoryID *uint64) (*models.Note, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if content == "" {
		return nil, ErrContentEmpty
	}

	n := &models.Note{
		UserID:     userID,
		CategoryID: categoryID,
		Title:      title,
		Content:    content,
	}

	result := db.Create(n)
	if result.Error != nil {
		return nil, result.Error
	}

	return n, nil
}

// Update replaces title, content and category of a note owned by the user.
func Update(db *gorm.DB, userID, noteID uint64, title, content string, categoryID *uint64) error {
	if db == nil {
		return ErrDBNil
	}
	if content == "" {
		return ErrContentEmpty
	}

	result := db.Model(&models.Note{}).
		Where(userScopePattern, noteID, userID).
		Updates(map[string]any{
			"title":       title,
			"content":     content,
			"category_id": categoryID,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}

	return nil
}

// Delete permanently removes a note owned by the user.
func Delete(db *gorm.DB, userID, noteID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where(userScopePattern, noteID, userID).Delete(&models.Note{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}

	return nil
}

// TogglePin flips the pin flag of a note owned by the user.
func TogglePin(db *gorm.DB, userID, noteID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.Note{}).
		Where(userScopePattern, noteID, userID).
		Update("is_pinned", gorm.Expr("NOT is_pinned"))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}

	return nil
}

// ToggleArchive flips the archive flag of a note owned by the user.
// Archiving always unpins.
func ToggleArchive(db *gorm.DB, userID, noteID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.Note{}).
		Where(userScopePattern, noteID, userID).
		Updates(map[string]any{
			"is_archived": gorm.Expr("NOT is_archived"),
			"is_pinned":   false,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}

	return nil
}

// ToggleShare enables or disables the public share link of a note.
// It returns the updated note; ShareToken is set while the note is public.
func ToggleShare(db *gorm.DB, userID, noteID uint64) (*models.Note, error) {
	n, err := Find(db, userID, noteID)
	if err != nil {
		return nil, err
	}

	if n.IsPublic {
		n.IsPublic = false
		n.ShareToken = nil
	} else {
		token, errToken := newShareToken()
		if errToken != nil {
			return nil, errToken
		}

		n.IsPublic = true
		n.ShareToken = &token
	}

	result := db.Model(&models.Note{}).
		Where(userScopePattern, noteID, userID).
		Updates(map[string]any{
			"is_public":   n.IsPublic,
			"share_token": n.ShareToken,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	return n, nil
}

// FindShared retrieves a publicly shared note by its share token.
// Lookup requires the note to still be public.
func FindShared(db *gorm.DB, token string) (*models.Note, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var n models.Note
	result := db.Preload("Category").
		Where("share_token = ? AND is_public = ?", token, true).
		First(&n)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, result.Error
	}

	return &n, nil
}

// GetStats computes per-user note statistics.
func GetStats(db *gorm.DB, userID uint64) (*Stats, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var stats Stats
	result := db.Model(&models.Note{}).
		Select(
			"COUNT(*) as total, "+
				"SUM(CASE WHEN is_archived = ? THEN 1 ELSE 0 END) as active, "+
				"SUM(CASE WHEN is_pinned = ? THEN 1 ELSE 0 END) as pinned, "+
				"SUM(CASE WHEN is_archived = ? THEN 1 ELSE 0 END) as archived, "+
				"COALESCE(SUM(LENGTH(content)), 0) as total_characters",
			false, true, true).
		Where("user_id = ?", userID).
		Scan(&stats)
	if result.Error != nil {
		return nil, result.Error
	}

	return &stats, nil
}

// ExportAll retrieves every note of a user, newest first, for export.
func ExportAll(db *gorm.DB, userID uint64) ([]models.Note, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var notes []models.Note
	result := db.Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notes)
	if result.Error != nil {
		return nil, result.Error
	}

	return notes, nil
}

// newShareToken generates an opaque token for public share URLs.
// 32 bytes = 256 bits.
func newShareToken() (string, error) {
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
