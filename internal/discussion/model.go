package discussion

import "time"

// Discussion is a user-authored topic.
type Discussion struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Tags         []string  `json:"tags"`
	Upvotes      int       `json:"upvotes"`
	Replies      int       `json:"replies"`
	MessageCount int       `json:"message_count"` // derived from the message collection
	IsPinned     bool      `json:"is_pinned"`
}

// Message is a chat reply inside a discussion's thread.
type Message struct {
	ID           string    `json:"id"`
	DiscussionID string    `json:"discussion_id"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name"` // captured at write time
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewDiscussion holds the author-supplied fields of a discussion.
type NewDiscussion struct {
	Title      string
	Content    string
	AuthorID   string
	AuthorName string
	Tags       []string
}

// NewMessage holds the author-supplied fields of a message.
type NewMessage struct {
	DiscussionID string
	AuthorID     string
	AuthorName   string
	Content      string
}

// HasTag reports whether the discussion carries any of the given tags.
func (d Discussion) HasTag(tags ...string) bool {
	for _, want := range tags {
		for _, have := range d.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
