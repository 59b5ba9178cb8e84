// Package notes serves the note pages: the index with search and filters,
// the mutating note actions and the public share view.
package notes

import (
	"errors"
	"html/template"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/db/controller/category"
	"github.com/notevault/notevault/internal/db/controller/note"
	"github.com/notevault/notevault/internal/db/models"
	"github.com/notevault/notevault/internal/markdown"
	"github.com/notevault/notevault/internal/web/flash"
	"github.com/notevault/notevault/internal/web/handler"
	"github.com/notevault/notevault/internal/web/handler/login"
	"github.com/notevault/notevault/internal/web/session"
)

const (
	// Path is the path of the note index.
	Path = "/"

	// SharedPathPrefix is the prefix of public share links.
	SharedPathPrefix = "/shared/"
)

// noteView pairs a note with its rendered HTML body for the templates.
type noteView struct {
	models.Note
	ContentHTML template.HTML
}

// form is the note create/edit payload.
type form struct {
	Title      string `form:"title"`
	Content    string `form:"content"`
	CategoryID string `form:"category_id"`
}

// Service is the notes handler service.
type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	store *session.Store
}

// Handler is the notes handler.
var Handler = Service{}

// Init initializes the notes handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store *session.Store) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.store = store

	app.Get(Path, s.Index)
	app.Post("/add", s.Add)
	app.Post("/edit/:id", s.Edit)
	app.Post("/delete/:id", s.Delete)
	app.Post("/pin/:id", s.Pin)
	app.Post("/archive/:id", s.Archive)
	app.Post("/share/:id", s.Share)
	app.Get(SharedPathPrefix+":token", s.Shared)

	return nil
}

// Index renders the note list with search, category filter and archive
// toggle. Pinned notes come first.
func (s *Service) Index(c *fiber.Ctx) error {
	sessData := handler.SessionData(c)
	if sessData == nil {
		return c.Redirect(login.Path)
	}

	filter := note.ListFilter{
		Search:   c.Query("q"),
		Archived: c.Query("archived") == "1",
	}

	if raw := c.Query("category"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.CategoryID = &id
		}
	}

	notes, err := note.List(s.db, sessData.UserID, filter)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessData.UserID).Msg("failed to list notes")
		return fiber.ErrInternalServerError
	}

	views := make([]noteView, 0, len(notes))
	for i := range notes {
		views = append(views, noteView{
			Note:        notes[i],
			ContentHTML: markdown.Render(notes[i].Content),
		})
	}

	categories, err := category.List(s.db, sessData.UserID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessData.UserID).Msg("failed to list categories")
		return fiber.ErrInternalServerError
	}

	stats, err := note.GetStats(s.db, sessData.UserID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessData.UserID).Msg("failed to compute note stats")
		return fiber.ErrInternalServerError
	}

	return c.Render("index", fiber.Map{
		"title":         s.cfg.Title,
		"user":          handler.CurrentUser(c),
		"session":       sessData,
		"notes":         views,
		"categories":    categories,
		"stats":         stats,
		"search":        filter.Search,
		"category":      c.Query("category"),
		"show_archived": filter.Archived,
		"flash":         flash.Get(c),
	}, handler.BaseLayout)
}

// Add creates a note from the submitted form.
func (s *Service) Add(c *fiber.Ctx) error {
	sessData := handler.SessionData(c)
	if sessData == nil {
		return c.Redirect(login.Path)
	}

	payload := new(form)
	if err := c.BodyParser(payload); err != nil {
		flash.Set(c, flash.CategoryError, "Invalid form data.")
		return c.Redirect(Path)
	}

	_, err := note.Create(s.db, sessData.UserID, payload.Title, payload.Content, parseCategoryID(payload.CategoryID))
	if err != nil {
		if errors.Is(err, note.ErrContentEmpty) {
			flash.Set(c, flash.CategoryError, "Note content cannot be empty.")
			return c.Redirect(Path)
		}

		log.Error().Err(err).Uint64("user_id", sessData.UserID).Msg("failed to create note")
		flash.Set(c, flash.CategoryError, "Could not save the note.")

		return c.Redirect(Path)
	}

	flash.Set(c, flash.CategorySuccess, "Note added.")

	return c.Redirect(Path)
}

// Edit updates a note from the submitted form.
func (s *Service) Edit(c *fiber.Ctx) error {
	sessData := handler.SessionData(c)
	if sessData == nil {
		return c.Redirect(login.Path)
	}

	noteID, err := parseID(c)
	if err != nil {
		return fiber.ErrBadRequest
	}

	payload := new(form)
	if err = c.BodyParser(payload); err != nil {
		flash.Set(c, flash.CategoryError, "Invalid form data.")
		return c.Redirect(Path)
	}

	err = note.Update(s.db, sessData.UserID, noteID, payload.Title, payload.Content, parseCategoryID(payload.CategoryID))
	if err != nil {
		return s.mutationError(c, err, "update", sessData.UserID, noteID)
	}

	flash.Set(c, flash.CategorySuccess, "Note updated.")

	return c.Redirect(Path)
}

// Delete removes a note.
func (s *Service) Delete(c *fiber.Ctx) error {
	return s.mutate(c, "delete", note.Delete, "Note deleted.")
}

// Pin toggles the pin flag of a note.
func (s *Service) Pin(c *fiber.Ctx) error {
	return s.mutate(c, "pin", note.TogglePin, "")
}

// Archive toggles the archive flag of a note. Archiving unpins.
func (s *Service) Archive(c *fiber.Ctx) error {
	return s.mutate(c, "archive", note.ToggleArchive, "")
}

// Share toggles public sharing of a note.
func (s *Service) Share(c *fiber.Ctx) error {
	sessData := handler.SessionData(c)
	if sessData == nil {
		return c.Redirect(login.Path)
	}

	noteID, err := parseID(c)
	if err != nil {
		return fiber.ErrBadRequest
	}

	shared, err := note.ToggleShare(s.db, sessData.UserID, noteID)
	if err != nil {
		return s.mutationError(c, err, "share", sessData.UserID, noteID)
	}

	if shared.IsPublic && shared.ShareToken != nil {
		flash.Set(c, flash.CategorySuccess, "Note shared at "+SharedPathPrefix+*shared.ShareToken)
	} else {
		flash.Set(c, flash.CategoryInfo, "Note is no longer shared.")
	}

	return c.Redirect(Path)
}

// Shared renders a publicly shared note. No session required.
func (s *Service) Shared(c *fiber.Ctx) error {
	shared, err := note.FindShared(s.db, c.Params("token"))
	if err != nil {
		if errors.Is(err, note.ErrNoteNotFound) {
			return fiber.ErrNotFound
		}

		log.Error().Err(err).Msg("failed to load shared note")

		return fiber.ErrInternalServerError
	}

	return c.Render("shared", fiber.Map{
		"title": s.cfg.Title,
		"note": noteView{
			Note:        *shared,
			ContentHTML: markdown.Render(shared.Content),
		},
	}, handler.BaseLayout)
}

// mutate runs one of the id-scoped note mutations with shared error handling.
func (s *Service) mutate(c *fiber.Ctx, action string, op func(*gorm.DB, uint64, uint64) error, successMsg string) error {
	sessData := handler.SessionData(c)
	if sessData == nil {
		return c.Redirect(login.Path)
	}

	noteID, err := parseID(c)
	if err != nil {
		return fiber.ErrBadRequest
	}

	if err = op(s.db, sessData.UserID, noteID); err != nil {
		return s.mutationError(c, err, action, sessData.UserID, noteID)
	}

	if successMsg != "" {
		flash.Set(c, flash.CategorySuccess, successMsg)
	}

	return c.Redirect(Path)
}

func (s *Service) mutationError(c *fiber.Ctx, err error, action string, userID, noteID uint64) error {
	if errors.Is(err, note.ErrNoteNotFound) {
		flash.Set(c, flash.CategoryError, "Note not found.")
		return c.Redirect(Path)
	}

	if errors.Is(err, note.ErrContentEmpty) {
		flash.Set(c, flash.CategoryError, "Note content cannot be empty.")
		return c.Redirect(Path)
	}

	log.Error().Err(err).
		Str("action", action).
		Uint64("user_id", userID).
		Uint64("note_id", noteID).
		Msg("note mutation failed")
	flash.Set(c, flash.CategoryError, "Something went wrong. Please try again.")

	return c.Redirect(Path)
}

func parseID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}

// parseCategoryID turns the optional form value into a category reference.
// Empty or malformed input means no category.
func parseCategoryID(raw string) *uint64 {
	if raw == "" {
		return nil
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}

	return &id
}
