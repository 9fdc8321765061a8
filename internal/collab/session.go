// Package collab runs a collaboration room session: shared notes and a code
// editor kept in step with the other peers through the relay.
package collab

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/notepid/skillsync/internal/relay"
)

// Shared document names.
const (
	DocNotes = "notes"
	DocCode  = "code"
)

// Conn is the relay connection a session runs over. *relay.Client
// satisfies it.
type Conn interface {
	Join(room, user string) error
	Publish(doc, payload string) error
	Frames() <-chan relay.Frame
	Close() error
}

// Suggester answers copilot prompts. *copilot.Copilot satisfies it.
type Suggester interface {
	Suggest(doc, prompt string) (string, error)
}

// SessionConfig configures a session.
type SessionConfig struct {
	Room     string
	User     string
	Debounce time.Duration
	Copilot  Suggester
	Log      *slog.Logger

	// OnRemote, when set, is called after a remote update replaced a
	// document.
	OnRemote func(doc, text, from string)
	// OnPresence, when set, is called with the new member list.
	OnPresence func(members []string)
}

// Session is one participant's view of a room.
type Session struct {
	cfg  SessionConfig
	conn Conn
	log  *slog.Logger

	Notes *Editor
	Code  *Editor

	mu      sync.RWMutex
	members []string
	lastErr error

	done chan struct{}
}

// Dial connects to the relay at addr and starts a session.
func Dial(ctx context.Context, addr string, cfg SessionConfig) (*Session, error) {
	c, err := relay.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	s, err := NewSession(c, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	return s, nil
}

// NewSession joins cfg.Room over conn.
func NewSession(conn Conn, cfg SessionConfig) (*Session, error) {
	if cfg.Room == "" {
		return nil, fmt.Errorf("session: room is required")
	}
	if cfg.User == "" {
		cfg.User = "Anonymous"
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	s := &Session{
		cfg:  cfg,
		conn: conn,
		log:  log.With("room", cfg.Room, "user", cfg.User),
		done: make(chan struct{}),
	}
	s.Notes = NewEditor(DocNotes, cfg.Debounce, s.publish)
	s.Code = NewEditor(DocCode, cfg.Debounce, s.publish)

	if err := conn.Join(cfg.Room, cfg.User); err != nil {
		return nil, fmt.Errorf("join room %s: %w", cfg.Room, err)
	}

	go s.receive()
	return s, nil
}

// Editor returns the editor for a document name, or nil.
func (s *Session) Editor(doc string) *Editor {
	switch doc {
	case DocNotes:
		return s.Notes
	case DocCode:
		return s.Code
	default:
		return nil
	}
}

// Members returns the room's member list as last announced.
func (s *Session) Members() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.members...)
}

// Err returns the last publish error, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Done is closed when the relay connection ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// AskCopilot asks the copilot about the current code.
func (s *Session) AskCopilot(prompt string) (string, error) {
	if s.cfg.Copilot == nil {
		return "", fmt.Errorf("copilot is not available")
	}
	return s.cfg.Copilot.Suggest(s.Code.Text(), prompt)
}

// Close flushes pending edits and disconnects.
func (s *Session) Close() error {
	s.Notes.Flush()
	s.Code.Flush()
	s.Notes.Stop()
	s.Code.Stop()
	return s.conn.Close()
}

func (s *Session) publish(doc, text string) {
	if err := s.conn.Publish(doc, text); err != nil {
		s.log.Warn("publish failed", "doc", doc, "error", err)
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
	}
}

func (s *Session) receive() {
	defer close(s.done)
	for f := range s.conn.Frames() {
		switch f.Type {
		case relay.TypeUpdate, relay.TypeSync:
			e := s.Editor(f.Doc)
			if e == nil {
				continue
			}
			if !e.SetRemote(f.Payload) {
				s.log.Debug("remote update superseded by pending local edit", "doc", f.Doc, "from", f.User)
				continue
			}
			if s.cfg.OnRemote != nil {
				s.cfg.OnRemote(f.Doc, f.Payload, f.User)
			}
		case relay.TypePresence:
			s.mu.Lock()
			s.members = f.Members
			s.mu.Unlock()
			if s.cfg.OnPresence != nil {
				s.cfg.OnPresence(f.Members)
			}
		case relay.TypeError:
			s.log.Warn("relay error", "error", f.Error)
		}
	}
}
