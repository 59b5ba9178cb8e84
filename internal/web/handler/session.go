package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/db/models"
	"github.com/notevault/notevault/internal/web/middleware/auth"
	"github.com/notevault/notevault/internal/web/session"
)

// CurrentUser returns the identity row the access gate resolved for this
// request, nil when there is none.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(auth.LocalsUser).(*models.User)
	return u
}

// SessionData returns the session data the access gate resolved for this
// request, nil when the request carries no valid session.
func SessionData(c *fiber.Ctx) *session.Data {
	d, _ := c.Locals(auth.LocalsSession).(*session.Data)
	return d
}

// SetSessionCookie sets the opaque session cookie. The Secure flag is
// dropped in dev mode so local http setups keep working.
func SetSessionCookie(c *fiber.Ctx, cfg *config.Config, sessionID string) {
	cookie := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if cfg.DevMode {
		cookie.Secure = false
	}

	c.Cookie(cookie)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
