package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notepid/skillsync/internal/app"
	"github.com/notepid/skillsync/internal/config"
	"github.com/notepid/skillsync/internal/discussion"
	"github.com/notepid/skillsync/internal/logger"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Backend = "memory"
	a, cleanup, err := app.Open(cfg, "", logger.Discard())
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return a
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"go", "react"}, splitTags(" Go, react,go ,,"))
	assert.Nil(t, splitTags(""))
}

func TestNonEmpty(t *testing.T) {
	v := nonEmpty("title")
	assert.Error(t, v("   "))
	assert.NoError(t, v("x"))
}

func TestDiscussionsThreadAndRecount(t *testing.T) {
	a := newTestApp(t)
	d, err := a.Store.CreateDiscussion(discussion.NewDiscussion{Title: "Hooks help", Content: "useEffect", AuthorID: "u1", Tags: []string{"react"}})
	require.NoError(t, err)
	_, err = a.Store.SendMessage(discussion.NewMessage{DiscussionID: d.ID, AuthorID: "u2", AuthorName: "Sam", Content: "try this"})
	require.NoError(t, err)

	m := newDiscussionsModel(a)
	m.SetSize(80, 24)
	assert.Contains(t, m.View(), "Hooks help")

	m.Update(key("enter"))
	require.Equal(t, discussionsStateThread, m.state)
	view := m.View()
	assert.Contains(t, view, "useEffect")
	assert.Contains(t, view, "try this")
	assert.Contains(t, view, "Messages: 1")

	m.Update(key("c"))
	assert.NoError(t, m.err)

	m.Update(key("esc"))
	assert.Equal(t, discussionsStateList, m.state)
	m.Update(key("esc"))
	assert.True(t, m.Done)
}

func TestStorageScreen(t *testing.T) {
	a := newTestApp(t)
	_, err := a.Store.CreateDiscussion(discussion.NewDiscussion{Title: "t", Content: "c", AuthorID: "u1"})
	require.NoError(t, err)

	m := newStorageModel(a)
	assert.Contains(t, m.View(), "Backend:    memory")
	assert.Contains(t, m.View(), "Discussions:          1")

	m.Update(key("c"))
	assert.Contains(t, m.View(), "Recounted 1 discussions.")

	m.Update(key("esc"))
	assert.True(t, m.Done)
}

func TestConsoleNavigation(t *testing.T) {
	a := newTestApp(t)
	console := NewRootModel(a).(*consoleModel)
	console.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Contains(t, console.View(), "SkillSync Admin")

	console.Update(key("enter"))
	assert.Equal(t, screenDiscussions, console.current)
	require.IsType(t, &discussionsModel{}, console.sub)

	console.Update(key("esc"))
	assert.Equal(t, screenHome, console.current)
	assert.Nil(t, console.sub)
}

func TestConsoleOpensEveryScreen(t *testing.T) {
	a := newTestApp(t)
	console := NewRootModel(a).(*consoleModel)

	console.open(screenCompose)
	require.IsType(t, &composeModel{}, console.sub)
	console.open(screenStorage)
	require.IsType(t, &storageModel{}, console.sub)
	assert.Contains(t, console.View(), "Backend:")
}
