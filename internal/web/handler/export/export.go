// Package export serves the note export download.
package export

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/db/controller/note"
	"github.com/notevault/notevault/internal/db/models"
	"github.com/notevault/notevault/internal/web/handler"
	"github.com/notevault/notevault/internal/web/handler/login"
	"github.com/notevault/notevault/internal/web/session"
)

// Path is the path of the export endpoint.
const Path = "/export"

// exportedNote is the wire shape of a note in the JSON export.
type exportedNote struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Service is the export handler service.
type Service struct {
	db *gorm.DB
}

// Handler is the export handler.
var Handler = Service{}

// Init initializes the export handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store *session.Store) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db

	app.Get(Path, s.Get)

	return nil
}

// Get downloads all of the caller's notes. format=txt gets a plain-text
// dump, anything else the JSON export.
func (s *Service) Get(c *fiber.Ctx) error {
	sessData := handler.SessionData(c)
	if sessData == nil {
		return c.Redirect(login.Path)
	}

	notes, err := note.ExportAll(s.db, sessData.UserID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessData.UserID).Msg("failed to export notes")
		return fiber.ErrInternalServerError
	}

	if c.Query("format") == "txt" {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename=notes_export.txt`)

		return c.SendString(renderText(notes))
	}

	exported := make([]exportedNote, 0, len(notes))
	for i := range notes {
		exported = append(exported, exportedNote{
			Title:     notes[i].Title,
			Content:   notes[i].Content,
			Category:  categoryName(&notes[i]),
			CreatedAt: notes[i].CreatedAt.Format(time.RFC3339),
			UpdatedAt: notes[i].UpdatedAt.Format(time.RFC3339),
		})
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename=notes_export.json`)

	return c.JSON(exported)
}

// renderText formats notes for the plain-text export.
func renderText(notes []models.Note) string {
	divider := strings.Repeat("=", 50) + "\n"

	var b strings.Builder
	for i := range notes {
		title := notes[i].Title
		if title == "" {
			title = "Untitled"
		}

		cat := categoryName(&notes[i])
		if cat == "" {
			cat = "None"
		}

		b.WriteString(divider)
		b.WriteString("Title: " + title + "\n")
		b.WriteString("Category: " + cat + "\n")
		b.WriteString("Created: " + notes[i].CreatedAt.Format(time.RFC3339) + "\n")
		b.WriteString(divider)
		b.WriteString(notes[i].Content + "\n\n")
	}

	return b.String()
}

func categoryName(n *models.Note) string {
	if n.Category == nil {
		return ""
	}

	return n.Category.Name
}
