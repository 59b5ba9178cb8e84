// Package categories serves the category management page and actions.
package categories

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/db/controller/category"
	"github.com/notevault/notevault/internal/web/flash"
	"github.com/notevault/notevault/internal/web/handler"
	"github.com/notevault/notevault/internal/web/handler/login"
	"github.com/notevault/notevault/internal/web/session"
)

// Path is the path of the category page.
const Path = "/categories"

// form is the category create payload.
type form struct {
	Name  string `form:"name"`
	Color string `form:"color"`
}

// Service is the categories handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the categories handler.
var Handler = Service{}

// Init initializes the categories handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store *session.Store) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, s.Get)
	app.Post(Path, s.Post)
	app.Post(Path+"/:id/delete", s.Delete)

	return nil
}

// Get renders the category management page.
func (s *Service) Get(c *fiber.Ctx) error {
	sessData := handler.SessionData(c)
	if sessData == nil {
		return c.Redirect(login.Path)
	}

	categories, err := category.List(s.db, sessData.UserID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessData.UserID).Msg("failed to list categories")
		return fiber.ErrInternalServerError
	}

	return c.Render("categories", fiber.Map{
		"title":      s.cfg.Title,
		"user":       handler.CurrentUser(c),
		"categories": categories,
		"flash":      flash.Get(c),
	}, handler.BaseLayout)
}

// Post creates a category from the submitted form.
func (s *Service) Post(c *fiber.Ctx) error {
	sessData := handler.SessionData(c)
	if sessData == nil {
		return c.Redirect(login.Path)
	}

	payload := new(form)
	if err := c.BodyParser(payload); err != nil {
		flash.Set(c, flash.CategoryError, "Invalid form data.")
		return c.Redirect(Path)
	}

	_, err := category.Create(s.db, sessData.UserID, payload.Name, payload.Color)
	if err != nil {
		if errors.Is(err, category.ErrNameEmpty) {
			flash.Set(c, flash.CategoryError, "Category name cannot be empty.")
			return c.Redirect(Path)
		}

		log.Error().Err(err).Uint64("user_id", sessData.UserID).Msg("failed to create category")
		flash.Set(c, flash.CategoryError, "Could not create the category.")

		return c.Redirect(Path)
	}

	flash.Set(c, flash.CategorySuccess, "Category created.")

	return c.Redirect(Path)
}

// Delete removes a category. Notes keep existing with their category cleared.
func (s *Service) Delete(c *fiber.Ctx) error {
	sessData := handler.SessionData(c)
	if sessData == nil {
		return c.Redirect(login.Path)
	}

	categoryID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.ErrBadRequest
	}

	if err = category.Delete(s.db, sessData.UserID, categoryID); err != nil {
		if errors.Is(err, category.ErrCategoryNotFound) {
			flash.Set(c, flash.CategoryError, "Category not found.")
			return c.Redirect(Path)
		}

		log.Error().Err(err).
			Uint64("user_id", sessData.UserID).
			Uint64("category_id", categoryID).
			Msg("failed to delete category")
		flash.Set(c, flash.CategoryError, "Could not delete the category.")

		return c.Redirect(Path)
	}

	flash.Set(c, flash.CategorySuccess, "Category deleted.")

	return c.Redirect(Path)
}
