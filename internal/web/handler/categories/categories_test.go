package categories

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
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

// noOpViews is a minimal Fiber Views engine used for tests.
type noOpViews struct{}

func (noOpViews) Load() error { return nil }

func (noOpViews) Render(w io.Writer, name string, _ interface{}, _ ...string) error {
	_, _ = io.WriteString(w, name)
	return nil
}

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

	// foreign_keys on so the SET NULL constraint fires on category delete
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Category{}, &models.Note{}))

	store, err := session.New(&testStorage{data: make(map[string][]byte)}, time.Minute)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{Views: noOpViews{}})
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

func (f *fixture) post(t *testing.T, target string, form url.Values, cookie *http.Cookie) *http.Response {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(http.MethodPost, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func TestPostCreatesCategory(t *testing.T) {
	f := newFixture(t)

	guest, cookie := f.signInGuest(t)

	resp := f.post(t, Path, url.Values{"name": {"Work"}, "color": {"#ff0000"}}, cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	categories, err := category.List(f.db, guest.ID)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Work", categories[0].Name)
	assert.Equal(t, "#ff0000", categories[0].Color)
}

func TestPostDefaultColor(t *testing.T) {
	f := newFixture(t)

	guest, cookie := f.signInGuest(t)

	resp := f.post(t, Path, url.Values{"name": {"Ideas"}}, cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	categories, err := category.List(f.db, guest.ID)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, models.DefaultCategoryColor, categories[0].Color)
}

func TestDeleteClearsNoteCategory(t *testing.T) {
	f := newFixture(t)

	guest, cookie := f.signInGuest(t)

	created, err := category.Create(f.db, guest.ID, "Work", "")
	require.NoError(t, err)

	n, err := note.Create(f.db, guest.ID, "tagged", "content", &created.ID)
	require.NoError(t, err)

	resp := f.post(t, Path+"/"+strconv.FormatUint(created.ID, 10)+"/delete", nil, cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	count, err := category.Count(f.db, guest.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// The note survives with its category reference cleared.
	kept, err := note.Find(f.db, guest.ID, n.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.CategoryID)
}

func TestDeleteScopedToOwner(t *testing.T) {
	f := newFixture(t)

	_, cookie := f.signInGuest(t)

	other, err := user.CreateGuest(f.db, "Guest_ffffffff")
	require.NoError(t, err)
	theirs, err := category.Create(f.db, other.ID, "Private", "")
	require.NoError(t, err)

	resp := f.post(t, Path+"/"+strconv.FormatUint(theirs.ID, 10)+"/delete", nil, cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	count, err := category.Count(f.db, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
