package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/notepid/skillsync/internal/app"
	"github.com/notepid/skillsync/internal/discussion"
)

type discussionsModel struct {
	app *app.App

	width  int
	height int

	Done bool

	state discussionsState
	list  list.Model
	form  *huh.Form
	err   error

	query string
	tags  string

	selected discussion.Discussion
	thread   []discussion.Message

	replyName    string
	replyContent string
	replySave    bool
}

type discussionsState int

const (
	discussionsStateList discussionsState = iota
	discussionsStateThread
	discussionsStateReply
	discussionsStateSearch
)

type discussionItem struct {
	d discussion.Discussion
}

func (i discussionItem) Title() string {
	title := i.d.Title
	if i.d.IsPinned {
		title = "* " + title
	}
	return title
}

func (i discussionItem) Description() string {
	desc := fmt.Sprintf("%s • %d messages • %s", authorLabel(i.d.AuthorName, i.d.AuthorID), i.d.MessageCount,
		i.d.CreatedAt.Format("2006-01-02 15:04"))
	if len(i.d.Tags) > 0 {
		desc += " • " + tagStyle.Render(strings.Join(i.d.Tags, ", "))
	}
	return desc
}

func (i discussionItem) FilterValue() string { return i.d.Title }

func newDiscussionsModel(a *app.App) *discussionsModel {
	m := &discussionsModel{app: a, state: discussionsStateList}
	m.reloadList()
	return m
}

func (m *discussionsModel) done() bool { return m.Done }

func (m *discussionsModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-3)
}

func (m *discussionsModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "esc" || msg.String() == "q" || msg.String() == "enter" {
				m.err = nil
				m.form = nil
				m.state = discussionsStateList
				m.reloadList()
			}
		}
		return nil
	}

	switch m.state {
	case discussionsStateList:
		return m.updateList(msg)
	case discussionsStateThread:
		return m.updateThread(msg)
	case discussionsStateReply, discussionsStateSearch:
		return m.updateForm(msg)
	default:
		return nil
	}
}

func (m *discussionsModel) updateList(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() == list.Unfiltered {
		switch key.String() {
		case "q", "esc":
			if m.query != "" || m.tags != "" {
				m.query, m.tags = "", ""
				m.reloadList()
				return nil
			}
			m.Done = true
			return nil
		case "/":
			m.state = discussionsStateSearch
			m.form = buildSearchForm(&m.query, &m.tags)
			return m.form.Init()
		case "enter":
			if it, ok := m.list.SelectedItem().(discussionItem); ok {
				m.selected = it.d
				m.state = discussionsStateThread
				m.loadThread()
				return nil
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *discussionsModel) updateThread(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "esc", "q":
		m.state = discussionsStateList
		m.reloadList()
	case "r":
		m.replyName, m.replyContent, m.replySave = "admin", "", false
		m.state = discussionsStateReply
		m.form = buildReplyForm(&m.replyName, &m.replyContent, &m.replySave)
		return m.form.Init()
	case "c":
		// Repair a stale message count.
		if err := m.app.Store.Recount(m.selected.ID); err != nil {
			m.err = err
			return nil
		}
		m.loadThread()
	}
	return nil
}

func (m *discussionsModel) updateForm(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.form = nil
		m.back()
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
		m.form = nil
		if m.state == discussionsStateReply {
			if m.replySave {
				if err := m.sendReply(); err != nil {
					m.err = err
					return nil
				}
			}
			m.state = discussionsStateThread
			m.loadThread()
			return nil
		}
		m.state = discussionsStateList
		m.reloadList()
		return nil
	case huh.StateAborted:
		m.form = nil
		m.back()
		return nil
	}
	return cmd
}

func (m *discussionsModel) sendReply() error {
	_, err := m.app.Store.SendMessage(discussion.NewMessage{
		DiscussionID: m.selected.ID,
		AuthorID:     "admin",
		AuthorName:   strings.TrimSpace(m.replyName),
		Content:      strings.TrimSpace(m.replyContent),
	})
	return err
}

func (m *discussionsModel) back() {
	switch m.state {
	case discussionsStateList:
		m.Done = true
	case discussionsStateThread, discussionsStateSearch:
		m.state = discussionsStateList
		m.reloadList()
	case discussionsStateReply:
		m.state = discussionsStateThread
		m.loadThread()
	}
}

func (m *discussionsModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Discussions error: %v\n\nPress Enter/Esc to go back.", m.err)
	}

	switch m.state {
	case discussionsStateList:
		m.list.Title = "Discussions"
		if m.query != "" || m.tags != "" {
			m.list.Title = fmt.Sprintf("Discussions (q=%q tags=%q)", m.query, m.tags)
		}
		return m.list.View() + "\n" + dimStyle.Render("(enter open, / search, esc back)")
	case discussionsStateThread:
		return m.threadView()
	case discussionsStateReply, discussionsStateSearch:
		if m.form == nil {
			return ""
		}
		return m.form.View() + "\n\n" + dimStyle.Render("(esc to go back)")
	default:
		return "Discussions"
	}
}

func (m *discussionsModel) threadView() string {
	d := m.selected
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Title) + "\n")
	fmt.Fprintf(&b, "By: %s\nDate: %s\n", authorLabel(d.AuthorName, d.AuthorID), d.CreatedAt.Format("2006-01-02 15:04"))
	if len(d.Tags) > 0 {
		b.WriteString("Tags: " + tagStyle.Render(strings.Join(d.Tags, ", ")) + "\n")
	}
	fmt.Fprintf(&b, "Messages: %d (stored %d)\n\n", d.MessageCount, len(m.thread))
	b.WriteString(d.Content + "\n")

	for _, msg := range m.thread {
		b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("── %s, %s", authorLabel(msg.AuthorName, msg.AuthorID),
			msg.CreatedAt.Format("2006-01-02 15:04"))) + "\n")
		b.WriteString(msg.Content + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("(r reply, c recount, esc back)"))
	return b.String()
}

func (m *discussionsModel) reloadList() {
	tags := splitTags(m.tags)
	var ds []discussion.Discussion
	if m.query == "" && len(tags) == 0 {
		ds = m.app.Store.ListDiscussions()
	} else {
		ds = m.app.Store.SearchDiscussions(strings.TrimSpace(m.query), tags)
	}

	items := make([]list.Item, 0, len(ds))
	for _, d := range ds {
		items = append(items, discussionItem{d: d})
	}

	m.list = list.New(items, list.NewDefaultDelegate(), m.width, m.height-3)
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(true)
	m.list.SetShowHelp(true)
}

func (m *discussionsModel) loadThread() {
	for _, d := range m.app.Store.ListDiscussions() {
		if d.ID == m.selected.ID {
			m.selected = d
			break
		}
	}
	m.thread = m.app.Store.ListMessages(m.selected.ID)
}

func buildSearchForm(query, tags *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Text").Description("Matches title or content, any case").Value(query),
			huh.NewInput().Title("Tags").Description("Comma separated, any of").Value(tags),
		),
	)
}

func buildReplyForm(name, content *string, save *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(name).Validate(nonEmpty("name")),
			huh.NewText().Title("Message").Value(content).Validate(nonEmpty("message")),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Send reply?").Value(save),
		),
	)
}

func authorLabel(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
