package session

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

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

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(&testStorage{data: make(map[string][]byte)}, time.Minute)
	require.NoError(t, err)

	return store
}

func TestNewNilStorage(t *testing.T) {
	_, err := New(nil, time.Minute)
	assert.ErrorIs(t, err, ErrStorageNil)
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)

	data := &Data{UserID: 42, DisplayName: "Guest_ab12cd34", IsGuest: true}
	require.NoError(t, store.Save("session-1", data))

	got, err := store.Get("session-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, data, got)
}

func TestGetMissingSession(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetEmptySessionID(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save("session-1", &Data{UserID: 1}))
	require.NoError(t, store.Delete("session-1"))

	got, err := store.Get("session-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete("session-1"))
	assert.NoError(t, store.Delete(""))
}

func TestGenerateSessionID(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{64}$`)

	first, err := GenerateSessionID()
	require.NoError(t, err)
	assert.Regexp(t, pattern, first)

	second, err := GenerateSessionID()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
