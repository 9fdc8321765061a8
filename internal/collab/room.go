package collab

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// SyncWriter serializes writes from the input loop and the session's
// remote-update callbacks.
type SyncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSyncWriter wraps w.
func NewSyncWriter(w io.Writer) *SyncWriter {
	return &SyncWriter{w: w}
}

func (s *SyncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Println writes one line.
func (s *SyncWriter) Println(a ...any) {
	_, _ = fmt.Fprintln(s, a...)
}

// RunRoom drives a session from line-oriented input until /quit or EOF.
//
//	/notes <line>  append a line to the shared notes
//	/code <line>   append a line to the code editor
//	/show          print both documents
//	/ask <prompt>  ask the copilot about the code
//	/who           list room members
//	/quit          leave
func RunRoom(s *Session, in io.Reader, out *SyncWriter) error {
	out.Println("  Room: " + s.cfg.Room)
	out.Println("  /notes, /code, /show, /ask, /who, /quit")
	out.Println("  ---------------------------------------------")

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "/quit", "/q":
			out.Println("  Left room.")
			return nil
		case "/who":
			out.Println("  Members: " + strings.Join(s.Members(), ", "))
		case "/show":
			s.Notes.Flush()
			s.Code.Flush()
			out.Println("  --- notes ---")
			out.Println(s.Notes.Text())
			out.Println("  --- code ---")
			out.Println(s.Code.Text())
		case "/notes", "/code":
			e := s.Editor(strings.TrimPrefix(cmd, "/"))
			e.Input(e.Text() + arg + "\n")
		case "/ask":
			answer, err := s.AskCopilot(arg)
			if err != nil {
				out.Println("  copilot error: " + err.Error())
				continue
			}
			out.Println("  copilot: " + answer)
		default:
			out.Println("  Unknown command: " + cmd)
		}
	}
	return scanner.Err()
}
