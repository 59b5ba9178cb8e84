package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/notevault/notevault/internal/db/controller/user"
	"github.com/notevault/notevault/internal/db/models"
	"github.com/notevault/notevault/internal/web/session"
)

// Locals keys populated by the gate.
const (
	// LocalsUser holds the *models.User for the session, nil when the
	// identity row no longer exists.
	LocalsUser = "CurrentUser"
	// LocalsSession holds the *session.Data for the request.
	LocalsSession = "SessionData"
)

// LoginPath is where unauthenticated requests are redirected.
const LoginPath = "/login"

// ProfileSetupPath is where profile-incomplete identities are redirected.
const ProfileSetupPath = "/profile/setup"

// exemptPrefixes are reachable without a session.
var exemptPrefixes = []string{
	"/static",
	"/login",
	"/auth/",
	"/logout",
	"/shared/",
	"/checkalive",
	"/metrics",
}

// New builds the access gate middleware on the given session store and
// identity database.
func New(store *session.Store, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		attachSessionContext(c, store, db)

		path := strings.ToLower(c.Path())
		if isExempt(path) {
			return c.Next()
		}

		sessData, _ := c.Locals(LocalsSession).(*session.Data)
		if sessData == nil {
			return c.Redirect(LoginPath)
		}

		// Federated identities must finish their profile before anything
		// else. Guests are exempt, and so are the profile pages themselves.
		currentUser, _ := c.Locals(LocalsUser).(*models.User)
		if currentUser != nil && !currentUser.IsGuest && !currentUser.ProfileComplete &&
			!strings.HasPrefix(path, "/profile") {
			return c.Redirect(ProfileSetupPath)
		}

		return c.Next()
	}
}

// attachSessionContext resolves the session cookie and, when valid, places
// the session data and identity row in the request locals. Resolution
// failures leave the locals unset; the gate then treats the request as
// unauthenticated.
func attachSessionContext(c *fiber.Ctx, store *session.Store, db *gorm.DB) {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return
	}

	sessData, err := store.Get(sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read session")
		return
	}
	if sessData == nil {
		return
	}

	c.Locals(LocalsSession, sessData)

	currentUser, err := user.FindByID(db, sessData.UserID)
	if err != nil {
		log.Warn().Err(err).Uint64("user_id", sessData.UserID).Msg("failed to load session identity")
		return
	}
	if currentUser != nil {
		c.Locals(LocalsUser, currentUser)
	}
}

func isExempt(path string) bool {
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
