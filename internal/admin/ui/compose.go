package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/notepid/skillsync/internal/app"
	"github.com/notepid/skillsync/internal/discussion"
)

type composeModel struct {
	app *app.App

	width  int
	height int

	Done bool

	form *huh.Form
	err  error

	title   string
	content string
	author  string
	tags    string
	save    bool
}

func newComposeModel(a *app.App) *composeModel {
	m := &composeModel{app: a, author: "admin"}
	m.form = buildComposeForm(&m.title, &m.content, &m.author, &m.tags, &m.save)
	return m
}

func buildComposeForm(title, content, author, tags *string, save *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(title).Validate(nonEmpty("title")),
			huh.NewText().Title("Content").Value(content).Validate(nonEmpty("content")),
			huh.NewInput().Title("Author").Value(author).Validate(nonEmpty("author")),
			huh.NewInput().Title("Tags").Description("Comma separated").Value(tags),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Create discussion?").Value(save),
		),
	)
}

func (m *composeModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m *composeModel) done() bool { return m.Done }

func (m *composeModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

func (m *composeModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "esc" || msg.String() == "q" || msg.String() == "enter" {
				m.Done = true
			}
		}
		return nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.Done = true
		return nil
	}

	updated, cmd := m.form.Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		m.err = fmt.Errorf("internal error: unexpected form model type")
		return nil
	}
	m.form = f

	switch m.form.State {
	case huh.StateCompleted:
		if m.save {
			if err := m.create(); err != nil {
				m.err = err
				return nil
			}
		}
		m.Done = true
		return nil
	case huh.StateAborted:
		m.Done = true
		return nil
	}
	return cmd
}

func (m *composeModel) create() error {
	author := strings.TrimSpace(m.author)
	_, err := m.app.Store.CreateDiscussion(discussion.NewDiscussion{
		Title:      strings.TrimSpace(m.title),
		Content:    strings.TrimSpace(m.content),
		AuthorID:   author,
		AuthorName: author,
		Tags:       splitTags(m.tags),
	})
	return err
}

func (m *composeModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Create error: %v\n\nPress Enter/Esc to go back.", m.err)
	}
	return m.form.View() + "\n\n" + dimStyle.Render("(esc to go back)")
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

// splitTags turns "Go, react,go" into [go react].
func splitTags(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range strings.Split(s, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
