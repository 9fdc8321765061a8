// Package ui is the admin console: a menu over discussion browsing,
// authoring and storage maintenance screens.
package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/notepid/skillsync/internal/app"
)

type screen int

const (
	screenHome screen = iota
	screenDiscussions
	screenCompose
	screenStorage
	screenQuit
)

// subScreen is a screen reached from the menu. It reports done when the
// user backs out of it.
type subScreen interface {
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(w, h int)
	done() bool
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

type menuEntry struct {
	label, hint string
	target      screen
}

func (e menuEntry) Title() string       { return e.label }
func (e menuEntry) Description() string { return e.hint }
func (e menuEntry) FilterValue() string { return e.label }

type consoleModel struct {
	app *app.App

	width, height int

	menu    list.Model
	current screen
	sub     subScreen
}

// NewRootModel returns the console's top-level model.
func NewRootModel(a *app.App) tea.Model {
	entries := []list.Item{
		menuEntry{"Discussions", "Browse discussions, read and reply to threads", screenDiscussions},
		menuEntry{"New Discussion", "Start a discussion", screenCompose},
		menuEntry{"Storage", "Backend details and message count repair", screenStorage},
		menuEntry{"Quit", "Exit", screenQuit},
	}

	menu := list.New(entries, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "SkillSync Admin"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	return &consoleModel{app: a, menu: menu, current: screenHome}
}

func (m *consoleModel) Init() tea.Cmd { return nil }

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.menu.SetSize(msg.Width, msg.Height-2)
		if m.sub != nil {
			m.sub.SetSize(msg.Width, msg.Height)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	if m.sub == nil {
		return m.updateMenu(msg)
	}

	cmd := m.sub.Update(msg)
	if m.sub.done() {
		m.sub = nil
		m.current = screenHome
	}
	return m, cmd
}

func (m *consoleModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q":
			return m, tea.Quit
		case "enter":
			entry, ok := m.menu.SelectedItem().(menuEntry)
			if !ok {
				return m, nil
			}
			if entry.target == screenQuit {
				return m, tea.Quit
			}
			return m, m.open(entry.target)
		}
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

// open builds the screen for target and returns its start command.
func (m *consoleModel) open(target screen) tea.Cmd {
	var cmd tea.Cmd
	switch target {
	case screenDiscussions:
		m.sub = newDiscussionsModel(m.app)
	case screenCompose:
		c := newComposeModel(m.app)
		m.sub, cmd = c, c.Init()
	case screenStorage:
		m.sub = newStorageModel(m.app)
	default:
		return nil
	}
	m.current = target
	m.sub.SetSize(m.width, m.height)
	return cmd
}

func (m *consoleModel) View() string {
	if m.sub != nil {
		return m.sub.View()
	}
	return m.menu.View()
}
