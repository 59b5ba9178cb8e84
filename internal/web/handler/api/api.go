// Package api serves the JSON endpoints used by the frontend scripts.
package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/db/controller/category"
	"github.com/notevault/notevault/internal/db/controller/note"
	"github.com/notevault/notevault/internal/web/handler"
	"github.com/notevault/notevault/internal/web/session"
)

const (
	// StatsPath is the path of the stats endpoint.
	StatsPath = "/api/stats"

	// NotePath is the path of the single-note endpoint.
	NotePath = "/api/note/:id"
)

// Service is the API handler service.
type Service struct {
	db *gorm.DB
}

// Handler is the API handler.
var Handler = Service{}

// Init initializes the API handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store *session.Store) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db

	app.Get(StatsPath, s.Stats)
	app.Get(NotePath, s.Note)

	return nil
}

// Stats returns the caller's note statistics plus the category count.
func (s *Service) Stats(c *fiber.Ctx) error {
	sessData := handler.SessionData(c)
	if sessData == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}

	stats, err := note.GetStats(s.db, sessData.UserID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessData.UserID).Msg("failed to compute note stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	categories, err := category.Count(s.db, sessData.UserID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessData.UserID).Msg("failed to count categories")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{
		"total_notes":      stats.Total,
		"active_notes":     stats.Active,
		"pinned_notes":     stats.Pinned,
		"archived_notes":   stats.Archived,
		"total_characters": stats.TotalCharacters,
		"total_categories": categories,
	})
}

// Note returns a single note of the caller, used to prefill the edit form.
func (s *Service) Note(c *fiber.Ctx) error {
	sessData := handler.SessionData(c)
	if sessData == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}

	noteID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid note id"})
	}

	n, err := note.Find(s.db, sessData.UserID, noteID)
	if err != nil {
		if errors.Is(err, note.ErrNoteNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "note not found"})
		}

		log.Error().Err(err).
			Uint64("user_id", sessData.UserID).
			Uint64("note_id", noteID).
			Msg("failed to load note")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{
		"id":          n.ID,
		"title":       n.Title,
		"content":     n.Content,
		"category_id": n.CategoryID,
		"is_pinned":   n.IsPinned,
		"is_archived": n.IsArchived,
		"is_public":   n.IsPublic,
		"created_at":  n.CreatedAt.Format(time.RFC3339),
		"updated_at":  n.UpdatedAt.Format(time.RFC3339),
	})
}
