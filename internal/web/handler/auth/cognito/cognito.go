// Package cognito drives the hosted-UI sign-in flow: redirect out, handle
// the callback, resolve the identity and replace the caller's session.
package cognito

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/web/flash"
	"github.com/notevault/notevault/internal/web/handler"
	"github.com/notevault/notevault/internal/web/handler/login"
	"github.com/notevault/notevault/internal/web/session"
)

const (
	// LoginPath is the path that starts the federated sign-in flow.
	LoginPath = "/auth/cognito"

	// CallbackPath is the path the provider redirects back to.
	CallbackPath = "/auth/cognito/callback"
)

// Service is the federated sign-in handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	store    *session.Store
	provider *auth.CognitoProvider
}

// Handler is the federated sign-in handler.
var Handler = Service{}

// Init initializes the federated sign-in handler. With an incomplete Cognito
// configuration the routes still exist but answer with a notice, so the rest
// of the application keeps working guest-only.
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
			RedirectURL:  strings.TrimSuffix(cfg.Webserver.URL, "/") + CallbackPath,
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize cognito provider, federated sign-in disabled")
		} else {
			s.provider = provider
			log.Info().Str("domain", cfg.Auth.Cognito.Domain).Msg("cognito sign-in enabled")
		}
	}

	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)

	return nil
}

// Login redirects to the hosted UI authorization page.
func (s *Service) Login(c *fiber.Ctx) error {
	if s.provider == nil {
		flash.Set(c, flash.CategoryError, "Sign-in with Cognito is not configured.")
		return c.Redirect(login.Path)
	}

	return c.Redirect(s.provider.AuthURL())
}

// Callback finishes the sign-in flow: exchange the code, resolve the
// identity and replace the caller's session with a federated one.
func (s *Service) Callback(c *fiber.Ctx) error {
	if s.provider == nil {
		flash.Set(c, flash.CategoryError, "Sign-in with Cognito is not configured.")
		return c.Redirect(login.Path)
	}

	code := c.Query("code")
	if code == "" {
		flash.Set(c, flash.CategoryError, "Sign-in was cancelled or failed.")
		return c.Redirect(login.Path)
	}

	claims, err := s.provider.HandleCallback(c.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("cognito sign-in failed")
		flash.Set(c, flash.CategoryError, "Sign-in failed. Please try again.")

		return c.Redirect(login.Path)
	}

	return s.finalize(c, claims)
}

// finalize resolves the claims to an identity and swaps the caller's
// session for a federated one.
func (s *Service) finalize(c *fiber.Ctx, claims *auth.Claims) error {
	// Only the caller's own guest session may be migrated.
	var guestID uint64
	if sessData := handler.SessionData(c); sessData != nil && sessData.IsGuest {
		guestID = sessData.UserID
	}

	resolution, err := auth.ResolveFederated(s.db, claims, guestID)
	if err != nil {
		log.Error().Err(err).Str("sub", claims.Sub).Msg("failed to resolve federated identity")
		flash.Set(c, flash.CategoryError, "Sign-in failed. Please try again.")

		return c.Redirect(login.Path)
	}

	resolved := resolution.User
	greeting := resolved.GreetingName(claims.Name)

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		flash.Set(c, flash.CategoryError, "Sign-in failed. Please try again.")

		return c.Redirect(login.Path)
	}

	err = s.store.Save(sessionID, &session.Data{
		UserID:      resolved.ID,
		DisplayName: resolved.DisplayName,
		Email:       resolved.Email,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to write session")
		flash.Set(c, flash.CategoryError, "Sign-in failed. Please try again.")

		return c.Redirect(login.Path)
	}

	// Replace the previous session, if any, with the federated one.
	if oldSessionID := c.Cookies(session.CookieName); oldSessionID != "" && oldSessionID != sessionID {
		if errDelete := s.store.Delete(oldSessionID); errDelete != nil {
			log.Warn().Err(errDelete).Msg("failed to delete previous session")
		}
	}

	handler.SetSessionCookie(c, s.cfg, sessionID)

	log.Info().
		Uint64("user_id", resolved.ID).
		Str("sub", claims.Sub).
		Bool("migrated", resolution.Kind == auth.ResolvedMigrated).
		Msg("user signed in via cognito")

	if resolution.Kind == auth.ResolvedMigrated {
		flash.Set(c, flash.CategorySuccess, "Welcome, "+greeting+"! Your guest notes have been saved to your account.")
	} else {
		flash.Set(c, flash.CategorySuccess, "Welcome back, "+greeting+"!")
	}

	return c.Redirect(handler.RootPath)
}
