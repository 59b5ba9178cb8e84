package whoami

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/notevault/notevault/internal/config"
	"github.com/notevault/notevault/internal/db/controller/user"
	"github.com/notevault/notevault/internal/db/models"
	authmw "github.com/notevault/notevault/internal/web/middleware/auth"
	"github.com/notevault/notevault/internal/web/session"
)

// testStorage is a minimal in-memory implementation of storage.Storage.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}

	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func newFixture(t *testing.T) (*fiber.App, *gorm.DB, *session.Store) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	store, err := session.New(&testStorage{data: make(map[string][]byte)}, time.Minute)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(authmw.New(store, db))

	cfg := &config.Config{Title: "NoteVault"}

	var s Service
	require.NoError(t, s.Init(app, cfg, db, store))

	return app, db, store
}

func TestGetUnauthenticated(t *testing.T) {
	app, _, _ := newFixture(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, Path, nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetStaleSessionUnauthorized(t *testing.T) {
	app, db, store := newFixture(t)

	guest, err := user.CreateGuest(db, "Guest_ab12cd34")
	require.NoError(t, err)

	sessionID, err := session.GenerateSessionID()
	require.NoError(t, err)
	require.NoError(t, store.Save(sessionID, &session.Data{
		UserID:      guest.ID,
		DisplayName: guest.DisplayName,
		IsGuest:     true,
	}))

	// The identity row is gone but the session outlives it.
	require.NoError(t, user.DeleteGuest(db, guest.ID))

	req := httptest.NewRequest(http.MethodGet, Path, nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetReturnsIdentity(t *testing.T) {
	app, db, store := newFixture(t)

	guest, err := user.CreateGuest(db, "Guest_ab12cd34")
	require.NoError(t, err)

	sessionID, err := session.GenerateSessionID()
	require.NoError(t, err)
	require.NoError(t, store.Save(sessionID, &session.Data{
		UserID:      guest.ID,
		DisplayName: guest.DisplayName,
		IsGuest:     true,
	}))

	req := httptest.NewRequest(http.MethodGet, Path, nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		ID          uint64 `json:"id"`
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		IsGuest     bool   `json:"is_guest"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, guest.ID, body.ID)
	assert.Equal(t, guest.DisplayName, body.DisplayName)
	assert.Empty(t, body.Email)
	assert.True(t, body.IsGuest)
}
