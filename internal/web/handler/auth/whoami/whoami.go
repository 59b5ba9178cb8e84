// Package whoami answers the session introspection endpoint.
package whoami

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/web/handler"
	"github.com/notevault/notevault/internal/web/session"
)

// Path is the path of the whoami endpoint.
const Path = "/auth/user"

// Service is the whoami handler service.
type Service struct{}

// Handler is the whoami handler.
var Handler = Service{}

// Init initializes the whoami handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store *session.Store) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
	}

	app.Get(Path, s.Get)

	return nil
}

// Get returns the caller's identity as JSON, 401 without one. The answer
// comes from the identity row, not the session cache, so a session whose
// row has been deleted is reported as unauthenticated.
func (s *Service) Get(c *fiber.Ctx) error {
	current := handler.CurrentUser(c)
	if current == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "not authenticated",
		})
	}

	return c.JSON(fiber.Map{
		"id":           current.ID,
		"display_name": current.DisplayName,
		"email":        current.Email,
		"is_guest":     current.IsGuest,
	})
}
