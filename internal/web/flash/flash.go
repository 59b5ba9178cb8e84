// Package flash carries one-shot notices across a redirect in a cookie.
// The next request that reads the notice also clears it.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

// cookieName is the name of the flash cookie.
const cookieName = "flash"

// Categories used by the handlers. Templates map these onto alert styles.
const (
	CategorySuccess = "success"
	CategoryError   = "error"
	CategoryInfo    = "info"
)

// Message is a single one-shot notice.
type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Set queues a notice for the next rendered page.
func Set(c *fiber.Ctx, category, text string) {
	raw, err := json.Marshal(Message{Category: category, Text: text})
	if err != nil {
		return
	}

	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    base64.URLEncoding.EncodeToString(raw),
		Path:     "/",
		HTTPOnly: true,
	})
}

// Get returns the pending notice, if any, and clears it. A malformed cookie
// is dropped silently.
func Get(c *fiber.Ctx) *Message {
	value := c.Cookies(cookieName)
	if value == "" {
		return nil
	}

	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	raw, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}

	msg := new(Message)
	if err := json.Unmarshal(raw, msg); err != nil {
		return nil
	}

	return msg
}
