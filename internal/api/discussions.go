package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/notepid/skillsync/internal/discussion"
)

type createDiscussionRequest struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Content    string   `json:"content" validate:"required,max=20000"`
	AuthorID   string   `json:"author_id" validate:"required,max=64"`
	AuthorName string   `json:"author_name" validate:"max=100"`
	Tags       []string `json:"tags" validate:"max=10,dive,required,max=32"`
}

type sendMessageRequest struct {
	AuthorID   string `json:"author_id" validate:"required,max=64"`
	AuthorName string `json:"author_name" validate:"required,max=100"`
	Content    string `json:"content" validate:"required,max=5000"`
}

func (h *Handler) listDiscussions(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	tags := normalizeTags(r.URL.Query()["tag"])
	writeJSON(w, http.StatusOK, h.store.SearchDiscussions(q, tags))
}

func (h *Handler) createDiscussion(w http.ResponseWriter, r *http.Request) {
	var req createDiscussionRequest
	if !h.decode(w, r, &req) {
		return
	}

	in := discussion.NewDiscussion{
		Title:      text(req.Title),
		Content:    text(req.Content),
		AuthorID:   req.AuthorID,
		AuthorName: text(req.AuthorName),
		Tags:       normalizeTags(req.Tags),
	}
	if in.Title == "" || in.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content must not be blank")
		return
	}

	d, err := h.store.CreateDiscussion(in)
	if err != nil {
		h.log.Error("create discussion failed", "author_id", req.AuthorID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not save discussion")
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ListMessages(chi.URLParam(r, "id")))
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	content := text(req.Content)
	if content == "" {
		writeError(w, http.StatusBadRequest, "content must not be blank")
		return
	}

	m, err := h.store.SendMessage(discussion.NewMessage{
		DiscussionID: chi.URLParam(r, "id"),
		AuthorID:     req.AuthorID,
		AuthorName:   text(req.AuthorName),
		Content:      content,
	})
	if err != nil {
		h.log.Error("send message failed", "discussion_id", chi.URLParam(r, "id"), "error", err)
		writeError(w, http.StatusInternalServerError, "could not send message")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// decode reads and validates a JSON body, answering 400 itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, body any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		writeError(w, http.StatusBadRequest, "body is invalid json")
		return false
	}
	if err := h.validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "invalid field: "+verrs[0].Field())
			return false
		}
		writeError(w, http.StatusBadRequest, "required fields missing")
		return false
	}
	return true
}

// text trims surrounding whitespace. Bodies are stored verbatim otherwise:
// code questions carry things like List<T> and x<y, and clients escape on
// render.
func text(s string) string {
	return strings.TrimSpace(s)
}

// normalizeTags lowercases, trims and de-duplicates tags, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
