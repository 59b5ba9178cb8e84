package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
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
	"github.com/notevault/notevault/internal/db/controller/category"
	"github.com/notevault/notevault/internal/db/controller/note"
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

type fixture struct {
	app   *fiber.App
	db    *gorm.DB
	store *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Category{}, &models.Note{}))

	store, err := session.New(&testStorage{data: make(map[string][]byte)}, time.Minute)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(authmw.New(store, db))

	cfg := &config.Config{Title: "NoteVault"}

	var s Service
	require.NoError(t, s.Init(app, cfg, db, store))

	return &fixture{app: app, db: db, store: store}
}

func (f *fixture) signInGuest(t *testing.T) (*models.User, *http.Cookie) {
	t.Helper()

	guest, err := user.CreateGuest(f.db, "Guest_ab12cd34")
	require.NoError(t, err)

	sessionID, err := session.GenerateSessionID()
	require.NoError(t, err)
	require.NoError(t, f.store.Save(sessionID, &session.Data{
		UserID:      guest.ID,
		DisplayName: guest.DisplayName,
		IsGuest:     true,
	}))

	return guest, &http.Cookie{Name: session.CookieName, Value: sessionID}
}

func (f *fixture) get(t *testing.T, target string, cookie *http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func TestStatsUnauthenticated(t *testing.T) {
	f := newFixture(t)

	// /api is not an exempt prefix; the gate redirects to the sign-in page.
	resp := f.get(t, StatsPath, nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestStats(t *testing.T) {
	f := newFixture(t)

	guest, cookie := f.signInGuest(t)

	n, err := note.Create(f.db, guest.ID, "a", "hello", nil)
	require.NoError(t, err)
	require.NoError(t, note.TogglePin(f.db, guest.ID, n.ID))

	archived, err := note.Create(f.db, guest.ID, "b", "old", nil)
	require.NoError(t, err)
	require.NoError(t, note.ToggleArchive(f.db, guest.ID, archived.ID))

	_, err = category.Create(f.db, guest.ID, "Work", "")
	require.NoError(t, err)

	resp := f.get(t, StatsPath, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		TotalNotes      int64 `json:"total_notes"`
		ActiveNotes     int64 `json:"active_notes"`
		PinnedNotes     int64 `json:"pinned_notes"`
		ArchivedNotes   int64 `json:"archived_notes"`
		TotalCharacters int64 `json:"total_characters"`
		TotalCategories int64 `json:"total_categories"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.EqualValues(t, 2, body.TotalNotes)
	assert.EqualValues(t, 1, body.ActiveNotes)
	assert.EqualValues(t, 1, body.PinnedNotes)
	assert.EqualValues(t, 1, body.ArchivedNotes)
	assert.EqualValues(t, int64(len("hello")+len("old")), body.TotalCharacters)
	assert.EqualValues(t, 1, body.TotalCategories)
}

func TestNoteOwnershipScoped(t *testing.T) {
	f := newFixture(t)

	_, cookie := f.signInGuest(t)

	other, err := user.CreateGuest(f.db, "Guest_ffffffff")
	require.NoError(t, err)
	otherNote, err := note.Create(f.db, other.ID, "theirs", "private", nil)
	require.NoError(t, err)

	resp := f.get(t, "/api/note/"+strconv.FormatUint(otherNote.ID, 10), cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNoteReturnsOwnNote(t *testing.T) {
	f := newFixture(t)

	guest, cookie := f.signInGuest(t)

	n, err := note.Create(f.db, guest.ID, "mine", "content here", nil)
	require.NoError(t, err)

	resp := f.get(t, "/api/note/"+strconv.FormatUint(n.ID, 10), cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		ID      uint64 `json:"id"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, n.ID, body.ID)
	assert.Equal(t, "mine", body.Title)
	assert.Equal(t, "content here", body.Content)
}

func TestNoteInvalidID(t *testing.T) {
	f := newFixture(t)

	_, cookie := f.signInGuest(t)

	resp := f.get(t, "/api/note/abc", cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
