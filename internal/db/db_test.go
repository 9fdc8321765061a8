package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRunsMigrations(t *testing.T) {
	d, err := Open(":memory:")
	require.NoError(t, err)
	defer d.Close()

	v, err := d.Version()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	_, err = d.Exec("INSERT INTO kv (key, value) VALUES ('a', 'b')")
	require.NoError(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skillsync.db")

	d, err := Open(path)
	require.NoError(t, err)
	_, err = d.Exec("INSERT INTO kv (key, value) VALUES ('k', 'v')")
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d, err = Open(path)
	require.NoError(t, err)
	defer d.Close()

	var value string
	require.NoError(t, d.QueryRow("SELECT value FROM kv WHERE key = 'k'").Scan(&value))
	assert.Equal(t, "v", value)

	v, err := d.Version()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}
