// Package guest signs visitors in without authentication. A guest gets a
// generated display name and full functionality; the identity lives only as
// long as its session unless it is later migrated to a federated login.
package guest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/db/controller/user"
	"github.com/notevault/notevault/internal/web/flash"
	"github.com/notevault/notevault/internal/web/handler"
	"github.com/notevault/notevault/internal/web/handler/login"
	"github.com/notevault/notevault/internal/web/session"
)

// Path is the path that starts a guest session.
const Path = "/auth/guest"

// Service is the guest sign-in handler service.
type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	store *session.Store
}

// Handler is the guest sign-in handler.
var Handler = Service{}

// Init initializes the guest sign-in handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store *session.Store) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.store = store

	app.Post(Path, s.Post)

	return nil
}

// Post creates a guest identity and its session, then redirects home.
// Any failure leaves no partial state behind and lands back on the sign-in
// page with an error notice.
func (s *Service) Post(c *fiber.Ctx) error {
	name, err := auth.GuestName()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate guest name")
		return s.fail(c)
	}

	guest, err := user.CreateGuest(s.db, name)
	if err != nil {
		log.Error().Err(err).Msg("failed to create guest identity")
		return s.fail(c)
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return s.failWithCleanup(c, guest.ID)
	}

	err = s.store.Save(sessionID, &session.Data{
		UserID:      guest.ID,
		DisplayName: guest.DisplayName,
		IsGuest:     true,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return s.failWithCleanup(c, guest.ID)
	}

	handler.SetSessionCookie(c, s.cfg, sessionID)

	log.Info().Str("display_name", guest.DisplayName).Msg("guest signed in")
	flash.Set(c, flash.CategoryInfo, "Welcome, "+guest.DisplayName+"! Create an account to save your notes permanently.")

	return c.Redirect(handler.RootPath)
}

func (s *Service) fail(c *fiber.Ctx) error {
	flash.Set(c, flash.CategoryError, "Could not start a guest session. Please try again.")
	return c.Redirect(login.Path)
}

// failWithCleanup removes the just-created guest row so a failed sign-in
// leaves nothing behind.
func (s *Service) failWithCleanup(c *fiber.Ctx, guestID uint64) error {
	if err := user.DeleteGuest(s.db, guestID); err != nil {
		log.Error().Err(err).Uint64("user_id", guestID).Msg("failed to clean up guest identity")
	}

	return s.fail(c)
}
