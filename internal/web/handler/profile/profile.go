// Package profile renders and saves the user profile. Federated identities
// must complete their profile once before the access gate lets them at the
// rest of the application.
package profile

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/db/controller/user"
	"github.com/notevault/notevault/internal/web/flash"
	"github.com/notevault/notevault/internal/web/handler"
	"github.com/notevault/notevault/internal/web/handler/login"
	"github.com/notevault/notevault/internal/web/session"
)

const (
	// Path is the path of the profile page.
	Path = "/profile"

	// SetupPath is the path of the first-time profile setup page.
	SetupPath = "/profile/setup"
)

// form is the profile form payload.
type form struct {
	FirstName   string `form:"first_name" validate:"max=100"`
	LastName    string `form:"last_name" validate:"max=100"`
	DisplayName string `form:"display_name" validate:"required,max=100"`
	Bio         string `form:"bio" validate:"max=500"`
	Timezone    string `form:"timezone" validate:"max=50"`
}

// Service is the profile handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	store    *session.Store
	validate *validator.Validate
}

// Handler is the profile handler.
var Handler = Service{}

// Init initializes the profile handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store *session.Store) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.store = store
	s.validate = validator.New()

	app.Get(Path, s.Get)
	app.Get(SetupPath, s.GetSetup)
	app.Post(Path, s.Post)

	return nil
}

// Get renders the profile page.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, "profile")
}

// GetSetup renders the first-time setup page.
func (s *Service) GetSetup(c *fiber.Ctx) error {
	return s.render(c, "profile_setup")
}

func (s *Service) render(c *fiber.Ctx, template string) error {
	currentUser := handler.CurrentUser(c)
	if currentUser == nil {
		return c.Redirect(login.Path)
	}

	return c.Render(template, fiber.Map{
		"title": s.cfg.Title,
		"user":  currentUser,
		"flash": flash.Get(c),
	}, handler.BaseLayout)
}

// Post saves the profile form and refreshes the session's display name.
func (s *Service) Post(c *fiber.Ctx) error {
	sessData := handler.SessionData(c)
	if sessData == nil {
		return c.Redirect(login.Path)
	}

	payload := new(form)
	if err := c.BodyParser(payload); err != nil {
		flash.Set(c, flash.CategoryError, "Invalid form data.")
		return c.Redirect(SetupPath)
	}

	if err := s.validate.Struct(payload); err != nil {
		flash.Set(c, flash.CategoryError, "Display name is required.")
		return c.Redirect(SetupPath)
	}

	updated, err := user.UpdateProfile(s.db, sessData.UserID, user.ProfileFields{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		DisplayName: payload.DisplayName,
		Bio:         payload.Bio,
		Timezone:    payload.Timezone,
	})
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessData.UserID).Msg("failed to update profile")
		flash.Set(c, flash.CategoryError, "Could not save your profile. Please try again.")

		return c.Redirect(SetupPath)
	}

	// Keep the session's cached display name in sync with the profile.
	if sessionID := c.Cookies(session.CookieName); sessionID != "" && updated != nil {
		sessData.DisplayName = updated.DisplayName
		if errSave := s.store.Save(sessionID, sessData); errSave != nil {
			log.Warn().Err(errSave).Msg("failed to refresh session display name")
		}
	}

	flash.Set(c, flash.CategorySuccess, "Profile saved.")

	return c.Redirect(handler.RootPath)
}
