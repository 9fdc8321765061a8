// Package discussion implements the local discussion and message store. It
// mirrors the remote discussion/message tables into two whole-collection
// JSON documents in a key-value area, for use when the remote backend is
// unavailable.
package discussion

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/notepid/skillsync/internal/id"
	"github.com/notepid/skillsync/internal/kv"
)

// Storage keys of the two collections.
const (
	DiscussionsKey = "discussions"
	MessagesKey    = "discussion_messages"

	// CorruptSuffix is appended to a collection key to hold unparseable
	// content replaced by a write.
	CorruptSuffix = ".corrupt"
)

var (
	// ErrRead marks a collection that is missing from, unreadable in or not
	// parseable from the storage area. List operations recover from it.
	ErrRead = errors.New("discussion store read failure")
	// ErrWrite marks a write the storage area rejected. It is always
	// returned to the caller.
	ErrWrite = errors.New("discussion store write failure")
)

// Store is the local discussion/message store. It owns both collections;
// nothing else should write the two keys.
type Store struct {
	mu  sync.Mutex
	kv  kv.Storage
	ids id.Generator
	now func() time.Time
	log *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIDs sets the identifier generator. The default is UUIDv7.
func WithIDs(g id.Generator) Option {
	return func(s *Store) { s.ids = g }
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger read failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore creates a store over the given storage area.
func NewStore(storage kv.Storage, opts ...Option) *Store {
	s := &Store{
		kv:  storage,
		ids: id.UUID{},
		now: func() time.Time { return time.Now().UTC() },
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListDiscussions returns all discussions, most recently created first. A
// missing or unreadable collection yields an empty list.
func (s *Store) ListDiscussions() []Discussion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discussions()
}

// CreateDiscussion stores a new discussion at the head of the collection and
// returns it with its identifier, timestamps and zeroed counters.
func (s *Store) CreateDiscussion(in NewDiscussion) (Discussion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := readForWrite[Discussion](s, DiscussionsKey)
	if err != nil {
		return Discussion{}, err
	}

	now := s.now()
	tags := make([]string, len(in.Tags))
	copy(tags, in.Tags)

	d := Discussion{
		ID:         s.ids.NewID(),
		Title:      in.Title,
		Content:    in.Content,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
		CreatedAt:  now,
		UpdatedAt:  now,
		Tags:       tags,
	}

	all := make([]Discussion, 0, len(existing)+1)
	all = append(all, d)
	all = append(all, existing...)

	if err := writeCollection(s.kv, DiscussionsKey, all); err != nil {
		return Discussion{}, err
	}
	return d, nil
}

// ListMessages returns the messages of one discussion in the order they
// were sent. An unknown discussion or unreadable collection yields an
// empty list.
func (s *Store) ListMessages(discussionID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterMessages(s.messages(), discussionID)
}

// SendMessage appends a message to the message collection, then recomputes
// the owning discussion's message count. Only the append can fail the call:
// once the message is durable, a failed recount is logged and leaves the
// count stale until the next successful one.
func (s *Store) SendMessage(in NewMessage) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := readForWrite[Message](s, MessagesKey)
	if err != nil {
		return Message{}, err
	}

	m := Message{
		ID:           s.ids.NewID(),
		DiscussionID: in.DiscussionID,
		AuthorID:     in.AuthorID,
		AuthorName:   in.AuthorName,
		Content:      in.Content,
		CreatedAt:    s.now(),
	}

	if err := writeCollection(s.kv, MessagesKey, append(existing, m)); err != nil {
		return Message{}, err
	}

	if err := s.recount(in.DiscussionID); err != nil {
		s.log.Warn("message count not updated", "discussion_id", in.DiscussionID, "error", err)
	}
	return m, nil
}

// Recount recomputes one discussion's message count from the message
// collection. It repairs a count left stale by a failed SendMessage.
func (s *Store) Recount(discussionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recount(discussionID)
}

func (s *Store) recount(discussionID string) error {
	msgs, err := readCollection[Message](s.kv, MessagesKey)
	if err != nil {
		return err
	}
	count := len(filterMessages(msgs, discussionID))

	all, err := readCollection[Discussion](s.kv, DiscussionsKey)
	if err != nil {
		return err
	}

	found := false
	for i := range all {
		if all[i].ID == discussionID {
			all[i].MessageCount = count
			found = true
			break
		}
	}
	if !found {
		// Orphaned messages are kept but counted against nothing.
		return nil
	}
	return writeCollection(s.kv, DiscussionsKey, all)
}

func (s *Store) discussions() []Discussion {
	all, err := readCollection[Discussion](s.kv, DiscussionsKey)
	if err != nil {
		s.log.Warn("discussions unreadable, returning none", "error", err)
		return []Discussion{}
	}
	return all
}

func (s *Store) messages() []Message {
	all, err := readCollection[Message](s.kv, MessagesKey)
	if err != nil {
		s.log.Warn("messages unreadable, returning none", "error", err)
		return []Message{}
	}
	return all
}

func filterMessages(all []Message, discussionID string) []Message {
	out := []Message{}
	for _, m := range all {
		if m.DiscussionID == discussionID {
			out = append(out, m)
		}
	}
	return out
}

// readCollection decodes the collection under key. An absent key is an
// empty collection, not an error.
func readCollection[T any](storage kv.Storage, key string) ([]T, error) {
	raw, ok, err := storage.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrRead, key, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrRead, key, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// readForWrite loads a collection ahead of rewriting it. Corrupt content is
// copied to a backup key and replaced; an area that cannot be read at all
// fails the write so the rewrite does not clobber records it could not see.
func readForWrite[T any](s *Store, key string) ([]T, error) {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s before write: %w", ErrWrite, key, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		backup, berr := s.backupCorrupt(key, raw)
		if berr != nil {
			return nil, fmt.Errorf("%w: back up corrupt %s: %w", ErrWrite, key, berr)
		}
		s.log.Warn("replacing corrupt collection", "key", key, "backup", backup, "error", err)
		return []T{}, nil
	}
	return out, nil
}

// backupCorrupt stores raw under "<key>.corrupt", or under a timestamped
// key when an earlier backup is still there.
func (s *Store) backupCorrupt(key, raw string) (string, error) {
	backup := key + CorruptSuffix
	_, exists, err := s.kv.Get(backup)
	if err != nil {
		return "", err
	}
	if exists {
		backup = fmt.Sprintf("%s.%d", backup, s.now().UnixNano())
	}
	if err := s.kv.Set(backup, raw); err != nil {
		return "", err
	}
	return backup, nil
}

func writeCollection[T any](storage kv.Storage, key string, all []T) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrWrite, key, err)
	}
	if err := storage.Set(key, string(raw)); err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrWrite, key, err)
	}
	return nil
}
