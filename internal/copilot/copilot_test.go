package copilot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScript(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	defer c.Close()

	out, err := c.Suggest("", "")
	require.NoError(t, err)
	assert.Equal(t, "Ask me something about the code.", out)

	out, err = c.Suggest("", "why?")
	require.NoError(t, err)
	assert.Contains(t, out, "editor is empty")

	out, err = c.Suggest("a := 1\nb := 2\n", "is this go?")
	require.NoError(t, err)
	assert.Contains(t, out, "2 line(s)")
	assert.Contains(t, out, "is this go?")
}

func TestScriptFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copilot.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function suggest(doc, prompt) return prompt .. "|" .. #doc end`), 0o644))

	c, err := New(path)
	require.NoError(t, err)
	defer c.Close()

	out, err := c.Suggest("abc", "len")
	require.NoError(t, err)
	assert.Equal(t, "len|3", out)
}

func TestScriptErrors(t *testing.T) {
	_, err := NewFromSource("this is not lua")
	assert.Error(t, err)

	_, err = NewFromSource("x = 1")
	assert.ErrorContains(t, err, "does not define suggest")

	_, err = New(filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)

	c, err := NewFromSource(`function suggest(doc, prompt) error("boom") end`)
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Suggest("", "")
	assert.ErrorContains(t, err, "boom")
}

func TestNilReturnIsEmpty(t *testing.T) {
	c, err := NewFromSource(`function suggest(doc, prompt) return nil end`)
	require.NoError(t, err)
	defer c.Close()

	out, err := c.Suggest("d", "p")
	require.NoError(t, err)
	assert.Empty(t, out)
}
