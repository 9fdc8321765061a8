package kv

import (
	"errors"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notepid/skillsync/internal/db"
)

// exerciseStorage runs the behaviour every backend must share.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()

	_, ok, err := s.Get("absent")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("k", "v1"))
	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	require.NoError(t, s.Set("k", "v2"))
	v, _, err = s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Remove("k"))
	_, ok, err = s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Remove("never-set"))
}

func TestMemory(t *testing.T) {
	exerciseStorage(t, NewMemory())
}

func TestMemoryFailureHooks(t *testing.T) {
	m := NewMemory()
	boom := errors.New("quota exceeded")
	m.SetErr = func(key string) error { return boom }
	m.GetErr = func(key string) error { return boom }

	assert.ErrorIs(t, m.Set("k", "v"), boom)
	assert.ErrorIs(t, m.Remove("k"), boom)
	_, _, err := m.Get("k")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Len())
}

func TestSQLite(t *testing.T) {
	d, err := db.Open(":memory:")
	require.NoError(t, err)
	defer d.Close()

	exerciseStorage(t, NewSQLite(d))
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("SKILLSYNC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SKILLSYNC_TEST_REDIS_ADDR not set")
	}
	r := NewRedis(redis.NewClient(&redis.Options{Addr: addr}), "skillsync-test:")
	defer r.Close()

	exerciseStorage(t, r)
}
