// Package session stores server-side session state behind an opaque
// cookie token. The browser only ever sees the random session ID; the
// identity data lives in the configured storage backend.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/storage"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// ErrStorageNil is returned when a store is constructed without a backend.
var ErrStorageNil = errors.New("session storage is nil")

// Data is the identity snapshot held per session.
type Data struct {
	UserID      uint64 `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	IsGuest     bool   `json:"is_guest"`
}

// Store reads and writes session data in a storage backend. It is injected
// into the handlers that need it rather than held in a package global, so
// tests can run with an isolated in-memory backend.
type Store struct {
	storage storage.Storage
	expiry  time.Duration
}

// New creates a session store on top of the given storage backend. Sessions
// expire after expiry; a zero expiry means sessions never expire.
func New(backend storage.Storage, expiry time.Duration) (*Store, error) {
	if backend == nil {
		return nil, ErrStorageNil
	}

	return &Store{storage: backend, expiry: expiry}, nil
}

// Get reads the session data for the given session ID. A missing or expired
// session returns (nil, nil).
func (s *Store) Get(sessionID string) (*Data, error) {
	if sessionID == "" {
		return nil, nil
	}

	raw, err := s.storage.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	data := new(Data)
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, err
	}

	return data, nil
}

// Save writes the session data under the given session ID.
func (s *Store) Save(sessionID string, data *Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return s.storage.Set(sessionID, raw, s.expiry)
}

// Delete removes the session. Deleting a session that does not exist is not
// an error.
func (s *Store) Delete(sessionID string) error {
	if sessionID == "" {
		return nil
	}

	return s.storage.Delete(sessionID)
}

// Expiry returns the configured session lifetime.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
