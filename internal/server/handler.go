package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/thep200/github-stats-cache/cfg"
	"github.com/thep200/github-stats-cache/internal/statscache"
	"github.com/thep200/github-stats-cache/pkg/log"
)

const maxBatchURLs = 100

// StatsService is the part of statscache.Manager the handlers use
type StatsService interface {
	Lookup(ctx context.Context, url string) (*statscache.Stats, statscache.Outcome)
	GetStatsBatch(ctx context.Context, urls []string, concurrency int) map[string]*statscache.Stats
}

// Publisher enqueues refresh requests for the background worker
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// Pinger reports whether the cache store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler manages HTTP requests for the stats API
type Handler struct {
	Logger    log.Logger
	Config    *cfg.Config
	stats     StatsService
	publisher Publisher
	pinger    Pinger
}

// NewHandler creates a new handler; publisher and pinger may be nil
func NewHandler(logger log.Logger, config *cfg.Config, stats StatsService, publisher Publisher, pinger Pinger) *Handler {
	return &Handler{
		Logger:    logger,
		Config:    config,
		stats:     stats,
		publisher: publisher,
		pinger:    pinger,
	}
}

// RegisterRoutes sets up the HTTP routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stats", h.getStats)
	mux.HandleFunc("POST /api/stats/batch", h.getStatsBatch)
	mux.HandleFunc("POST /api/stats/refresh", h.requestRefresh)
	mux.HandleFunc("GET /healthz", h.health)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error(r.Context(), "Failed to encode JSON response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.writeJSON(w, r, status, errorResponse{Error: message})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.Logger.Error(r.Context(), "Health check failed: %v", err)
			h.writeError(w, r, http.StatusServiceUnavailable, "cache store unavailable")
			return
		}
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
