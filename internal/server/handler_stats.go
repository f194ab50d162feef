package server

import (
	"encoding/json"
	"net/http"

	"github.com/thep200/github-stats-cache/internal/model"
	"github.com/thep200/github-stats-cache/internal/repokey"
	"github.com/thep200/github-stats-cache/internal/statscache"
)

// StatsResponse renders absent stats as null so clients can tell "unavailable" from zero
type StatsResponse struct {
	URL     string             `json:"url"`
	Key     string             `json:"key"`
	Stats   *statscache.Stats  `json:"stats"`
	Outcome statscache.Outcome `json:"outcome"`
}

type batchRequest struct {
	URLs        []string `json:"urls"`
	Concurrency int      `json:"concurrency"`
}

type BatchResponse struct {
	Results map[string]*statscache.Stats `json:"results"`
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		h.writeError(w, r, http.StatusBadRequest, "missing url parameter")
		return
	}

	stats, outcome := h.stats.Lookup(r.Context(), url)
	h.writeJSON(w, r, http.StatusOK, StatsResponse{
		URL:     url,
		Key:     repokey.Key(url),
		Stats:   stats,
		Outcome: outcome,
	})
}

func (h *Handler) decodeURLs(w http.ResponseWriter, r *http.Request) (*batchRequest, bool) {
	var req batchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if len(req.URLs) > maxBatchURLs {
		h.writeError(w, r, http.StatusBadRequest, "too many urls")
		return nil, false
	}
	if req.Concurrency < 0 {
		h.writeError(w, r, http.StatusBadRequest, "concurrency must not be negative")
		return nil, false
	}
	return &req, true
}

func (h *Handler) getStatsBatch(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeURLs(w, r)
	if !ok {
		return
	}

	results := h.stats.GetStatsBatch(r.Context(), req.URLs, req.Concurrency)
	h.writeJSON(w, r, http.StatusOK, BatchResponse{Results: results})
}

func (h *Handler) requestRefresh(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, "refresh queue not configured")
		return
	}

	req, ok := h.decodeURLs(w, r)
	if !ok {
		return
	}
	if len(req.URLs) == 0 {
		h.writeError(w, r, http.StatusBadRequest, "no urls")
		return
	}

	msg := model.RefreshRequest{URLs: req.URLs, Concurrency: req.Concurrency}
	if err := h.publisher.Publish(r.Context(), model.MessageKeyRefresh, msg); err != nil {
		h.Logger.Error(r.Context(), "Failed to enqueue refresh: %v", err)
		h.writeError(w, r, http.StatusBadGateway, "failed to enqueue refresh")
		return
	}
	h.writeJSON(w, r, http.StatusAccepted, map[string]int{"queued": len(req.URLs)})
}
