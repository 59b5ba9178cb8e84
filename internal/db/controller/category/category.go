// Package category provides CRUD operations for note categories.
package category

import (
	"errors"

	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrNameEmpty is returned when creating a category without a name.
	ErrNameEmpty = errors.New("category name cannot be empty")
	// ErrCategoryNotFound is returned when a category does not exist or belongs to another user.
	ErrCategoryNotFound = errors.New("category not found")
)

// List retrieves a user's categories ordered by name.
func List(db *gorm.DB, userID uint64) ([]models.Category, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var categories []models.Category
	result := db.Where("user_id = ?", userID).Order("name").Find(&categories)
	if result.Error != nil {
		return nil, result.Error
	}

	return categories, nil
}

// Create creates a new category for the user.
func Create(db *gorm.DB, userID uint64, name, color string) (*models.Category, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrNameEmpty
	}

	if color == "" {
		color = models.DefaultCategoryColor
	}

	c := &models.Category{
		UserID: userID,
		Name:   name,
		Color:  color,
	}

	result := db.Create(c)
	if result.Error != nil {
		return nil, result.Error
	}

	return c, nil
}

// Delete removes a category owned by the user. Notes keep existing with
// their category reference cleared by the storage layer.
func Delete(db *gorm.DB, userID, categoryID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("id = ? AND user_id = ?", categoryID, userID).Delete(&models.Category{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Count returns the number of categories a user owns.
func Count(db *gorm.DB, userID uint64) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	result := db.Model(&models.Category{}).Where("user_id = ?", userID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
