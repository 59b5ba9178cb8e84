// Package login renders the sign-in page.
package login

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/web/flash"
	"github.com/notevault/notevault/internal/web/handler"
	"github.com/notevault/notevault/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"
)

// Service is the login handler service.
type Service struct {
	cfg *config.Config
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, _ *gorm.DB, store *session.Store) error {
	if app == nil || cfg == nil || store == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg

	app.Get(Path, s.Get)

	return nil
}

// Get renders the sign-in page. Signed-in visitors are sent home instead.
func (s *Service) Get(c *fiber.Ctx) error {
	if handler.SessionData(c) != nil {
		return c.Redirect(handler.RootPath)
	}

	return c.Render("login", fiber.Map{
		"title":           s.cfg.Title,
		"cognito_enabled": s.cfg.Auth.Cognito.Enabled(),
		"flash":           flash.Get(c),
	}, handler.BaseLayout)
}
