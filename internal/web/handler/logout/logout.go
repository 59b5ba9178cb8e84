// Package logout tears a session down. Guest identities are deleted with
// their session; federated identities are additionally signed out of the
// hosted UI when the provider is configured.
package logout

import (
	"strings"

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

// Path is the logout path.
const Path = "/logout"

// Service is the logout handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	store    *session.Store
	provider *auth.CognitoProvider
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store *session.Store) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.store = store

	if cfg.Auth.Cognito.Enabled() {
		provider, err := auth.NewCognitoProvider(&auth.CognitoConfig{
			Region:       cfg.Auth.Cognito.Region,
			UserPoolID:   cfg.Auth.Cognito.UserPoolID,
			ClientID:     cfg.Auth.Cognito.ClientID,
			ClientSecret: cfg.Auth.Cognito.ClientSecret,
			Domain:       cfg.Auth.Cognito.Domain,
		})
		if err == nil {
			s.provider = provider
		}
	}

	app.Get(Path, s.Logout)
	app.Post(Path, s.Logout)

	return nil
}

// Logout destroys the session unconditionally. Guests lose their identity
// row as well; federated users get signed out of the hosted UI when it is
// configured.
func (s *Service) Logout(c *fiber.Ctx) error {
	sessData := handler.SessionData(c)

	if sessionID := c.Cookies(session.CookieName); sessionID != "" {
		if err := s.store.Delete(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	handler.ClearSessionCookie(c)
	flash.Set(c, flash.CategoryInfo, "You have been logged out.")

	if sessData == nil {
		return c.Redirect(login.Path)
	}

	if sessData.IsGuest {
		if err := user.DeleteGuest(s.db, sessData.UserID); err != nil {
			log.Error().Err(err).Uint64("user_id", sessData.UserID).Msg("failed to delete guest identity")
		}

		log.Info().Uint64("user_id", sessData.UserID).Msg("guest signed out")

		return c.Redirect(login.Path)
	}

	log.Info().Uint64("user_id", sessData.UserID).Msg("user signed out")

	if s.provider != nil {
		logoutURI := strings.TrimSuffix(s.cfg.Webserver.URL, "/") + login.Path
		return c.Redirect(s.provider.LogoutURL(logoutURI))
	}

	return c.Redirect(login.Path)
}
