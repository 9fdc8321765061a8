package collab

import (
	"sync"
	"time"

	"github.com/notepid/skillsync/internal/debounce"
)

// Editor is one shared document. Local input is buffered and handed to the
// flush callback once typing has paused. Remote state replaces the text only
// while no local input is pending: pending input is published afterwards and
// wins in the room, so it stays on screen here too.
type Editor struct {
	name string
	deb  *debounce.Debouncer[string]

	mu   sync.RWMutex
	text string
}

// NewEditor creates an editor for doc that calls onFlush with the latest
// text after interval without input.
func NewEditor(doc string, interval time.Duration, onFlush func(doc, text string)) *Editor {
	e := &Editor{name: doc}
	e.deb = debounce.New(interval, func(text string) { onFlush(doc, text) })
	return e
}

// Name returns the document name.
func (e *Editor) Name() string { return e.name }

// Input records local text and schedules a flush.
func (e *Editor) Input(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
	e.deb.Push(text)
}

// SetRemote applies state received from the room. It reports false, leaving
// the local text in place, when local input is waiting to flush or is being
// flushed.
func (e *Editor) SetRemote(text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deb.Pending() {
		return false
	}
	e.text = text
	return true
}

// Text returns the current text.
func (e *Editor) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text
}

// Dirty reports whether local input is waiting to flush.
func (e *Editor) Dirty() bool { return e.deb.Pending() }

// Flush sends pending input now.
func (e *Editor) Flush() { e.deb.Flush() }

// Stop discards pending input.
func (e *Editor) Stop() { e.deb.Stop() }
