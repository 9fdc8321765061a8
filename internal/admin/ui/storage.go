package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/notepid/skillsync/internal/app"
)

type storageModel struct {
	app *app.App

	width  int
	height int

	Done bool

	status string
	err    error
}

func newStorageModel(a *app.App) *storageModel {
	return &storageModel{app: a}
}

func (m *storageModel) done() bool { return m.Done }

func (m *storageModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

func (m *storageModel) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "esc", "q", "enter":
		m.Done = true
	case "c":
		m.recountAll()
	}
	return nil
}

// recountAll rewrites every discussion's message count from the stored
// messages.
func (m *storageModel) recountAll() {
	m.err = nil
	fixed := 0
	for _, d := range m.app.Store.ListDiscussions() {
		if err := m.app.Store.Recount(d.ID); err != nil {
			m.err = err
			return
		}
		fixed++
	}
	m.status = fmt.Sprintf("Recounted %d discussions.", fixed)
}

func (m *storageModel) View() string {
	cfg := m.app.Config.Storage
	var b strings.Builder
	b.WriteString(titleStyle.Render("Storage") + "\n\n")
	fmt.Fprintf(&b, "Backend:    %s\n", cfg.Backend)
	switch cfg.Backend {
	case "sqlite":
		fmt.Fprintf(&b, "Path:       %s\n", cfg.Path)
		if m.app.DB != nil {
			if v, err := m.app.DB.Version(); err == nil {
				fmt.Fprintf(&b, "Schema:     v%d\n", v)
			}
		}
	case "redis":
		fmt.Fprintf(&b, "Address:    %s (db %d, prefix %q)\n", cfg.RedisAddr, cfg.RedisDB, cfg.RedisPrefix)
	}
	fmt.Fprintf(&b, "IDs:        %s\n\n", m.app.Config.IDs.Strategy)

	ds := m.app.Store.ListDiscussions()
	stale := 0
	messages := 0
	for _, d := range ds {
		n := len(m.app.Store.ListMessages(d.ID))
		messages += n
		if n != d.MessageCount {
			stale++
		}
	}
	fmt.Fprintf(&b, "Discussions:          %d\n", len(ds))
	fmt.Fprintf(&b, "Messages (threaded):  %d\n", messages)
	fmt.Fprintf(&b, "Stale counts:         %d\n", stale)

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errStyle.Render("Error: ") + m.err.Error() + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("(c recount all, esc back)"))
	return b.String()
}
