package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-stats-cache/cfg"
	"github.com/thep200/github-stats-cache/internal/model"
	"github.com/thep200/github-stats-cache/internal/statscache"
	"github.com/thep200/github-stats-cache/pkg/log"
)

type fakeStats struct {
	known map[string]*statscache.Stats
	gotN  int
}

func (f *fakeStats) Lookup(_ context.Context, url string) (*statscache.Stats, statscache.Outcome) {
	if s, ok := f.known[url]; ok {
		return s, statscache.OutcomeHit
	}
	return nil, statscache.OutcomeUnavailable
}

func (f *fakeStats) GetStatsBatch(ctx context.Context, urls []string, concurrency int) map[string]*statscache.Stats {
	f.gotN = concurrency
	out := make(map[string]*statscache.Stats, len(urls))
	for _, url := range urls {
		out[url], _ = f.Lookup(ctx, url)
	}
	return out
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	return m.Called(ctx, key, value).Error(0)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestMux(stats StatsService, publisher Publisher, pinger Pinger) *http.ServeMux {
	h := NewHandler(log.NewNopLogger(), (&cfg.Config{}).ApplyDefaults(), stats, publisher, pinger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestGetStats(t *testing.T) {
	stats := &fakeStats{known: map[string]*statscache.Stats{
		"https://github.com/acme/widgets": {Stars: 42, Forks: 7},
		"https://github.com/acme/empty":   {},
	}}
	mux := newTestMux(stats, nil, nil)

	rec := serve(mux, http.MethodGet, "/api/stats?url=https://github.com/acme/widgets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://github.com/acme/widgets","key":"acme__widgets","stats":{"stars":42,"forks":7},"outcome":"hit"}`, rec.Body.String())

	rec = serve(mux, http.MethodGet, "/api/stats?url=https://github.com/acme/empty", "")
	assert.JSONEq(t, `{"url":"https://github.com/acme/empty","key":"acme__empty","stats":{"stars":0,"forks":0},"outcome":"hit"}`, rec.Body.String())

	rec = serve(mux, http.MethodGet, "/api/stats?url=https://github.com/acme/gone", "")
	assert.JSONEq(t, `{"url":"https://github.com/acme/gone","key":"acme__gone","stats":null,"outcome":"unavailable"}`, rec.Body.String())
}

func TestGetStats_MissingURL(t *testing.T) {
	rec := serve(newTestMux(&fakeStats{}, nil, nil), http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatsBatch(t *testing.T) {
	stats := &fakeStats{known: map[string]*statscache.Stats{"https://github.com/acme/widgets": {Stars: 42, Forks: 7}}}
	mux := newTestMux(stats, nil, nil)

	rec := serve(mux, http.MethodPost, "/api/stats/batch",
		`{"urls":["https://github.com/acme/widgets","https://github.com/acme/widgets","nope"],"concurrency":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":{"https://github.com/acme/widgets":{"stars":42,"forks":7},"nope":null}}`, rec.Body.String())
	assert.Equal(t, 2, stats.gotN)
}

func TestGetStatsBatch_Validation(t *testing.T) {
	mux := newTestMux(&fakeStats{}, nil, nil)

	urls := make([]string, maxBatchURLs+1)
	for i := range urls {
		urls[i] = "https://github.com/acme/widgets"
	}
	tooMany, err := json.Marshal(map[string]interface{}{"urls": urls})
	require.NoError(t, err)

	for _, body := range []string{`{`, string(tooMany), `{"urls":[],"concurrency":-1}`} {
		rec := serve(mux, http.MethodPost, "/api/stats/batch", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := serve(mux, http.MethodGet, "/api/stats/batch", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestRefresh(t *testing.T) {
	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, model.MessageKeyRefresh, model.RefreshRequest{
		URLs: []string{"https://github.com/acme/widgets"},
	}).Return(nil).Once()
	mux := newTestMux(&fakeStats{}, publisher, nil)

	rec := serve(mux, http.MethodPost, "/api/stats/refresh", `{"urls":["https://github.com/acme/widgets"]}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"queued":1}`, rec.Body.String())
	publisher.AssertExpectations(t)
}

func TestRequestRefresh_Failures(t *testing.T) {
	rec := serve(newTestMux(&fakeStats{}, nil, nil), http.MethodPost, "/api/stats/refresh", `{"urls":["x"]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	mux := newTestMux(&fakeStats{}, publisher, nil)

	rec = serve(mux, http.MethodPost, "/api/stats/refresh", `{"urls":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(mux, http.MethodPost, "/api/stats/refresh", `{"urls":["https://github.com/acme/widgets"]}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := serve(newTestMux(&fakeStats{}, nil, pingFunc(func(context.Context) error { return nil })), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(newTestMux(&fakeStats{}, nil, pingFunc(func(context.Context) error { return errors.New("down") })), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewServer_RequiresHandler(t *testing.T) {
	_, err := NewServer(log.NewNopLogger(), &cfg.Config{}, nil, 0)
	assert.Error(t, err)
}
