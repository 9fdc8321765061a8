// Package api exposes the discussion store over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/notepid/skillsync/internal/discussion"
)

// Store is the subset of the discussion store the API serves.
type Store interface {
	ListDiscussions() []discussion.Discussion
	SearchDiscussions(query string, tags []string) []discussion.Discussion
	CreateDiscussion(in discussion.NewDiscussion) (discussion.Discussion, error)
	ListMessages(discussionID string) []discussion.Message
	SendMessage(in discussion.NewMessage) (discussion.Message, error)
}

// Config holds API limits.
type Config struct {
	WriteRate  float64 // sustained writes per second per client
	WriteBurst int
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers, otherwise
	// clients can pick their own rate limit bucket.
	TrustProxy bool
	Log        *slog.Logger
}

// Handler serves the discussion API.
type Handler struct {
	store    Store
	log      *slog.Logger
	validate *validator.Validate
}

// NewRouter builds the HTTP routes.
func NewRouter(store Store, cfg Config) http.Handler {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		store:    store,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	limiter := newRateLimiter(cfg.WriteRate, cfg.WriteBurst, 10*time.Minute)

	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)
	r.Use(requestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/discussions", func(r chi.Router) {
		r.Get("/", h.listDiscussions)
		r.With(limiter.Middleware).Post("/", h.createDiscussion)
		r.Get("/{id}/messages", h.listMessages)
		r.With(limiter.Middleware).Post("/{id}/messages", h.sendMessage)
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
