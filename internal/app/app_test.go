package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thep200/github-stats-cache/cfg"
	"github.com/thep200/github-stats-cache/internal/statscache"
	"github.com/thep200/github-stats-cache/pkg/log"
)

func TestNew_MemoryStoreEndToEnd(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/repos/acme/widgets", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"stargazers_count":42,"forks_count":7,"updated_at":"2024-01-01T00:00:00Z"}`))
	}))
	t.Cleanup(server.Close)

	config, err := (&cfg.MockLoader{}).Load()
	require.NoError(t, err)
	config.GithubApi.BaseUrl = server.URL

	a, err := New(config, log.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	assert.Nil(t, a.StatsProducer)
	assert.Nil(t, a.RefreshProducer)

	ctx := context.Background()
	assert.Equal(t, &statscache.Stats{Stars: 42, Forks: 7}, a.Manager.GetStats(ctx, "https://github.com/acme/widgets.git"))
	assert.Equal(t, &statscache.Stats{Stars: 42, Forks: 7}, a.Manager.GetStats(ctx, "https://github.com/acme/widgets"))
	assert.Equal(t, 1, calls)

	entry, err := a.Store.Get(ctx, "acme__widgets")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T00:00:00Z", entry.LastUpdated)
}

func TestNew_UnsupportedStore(t *testing.T) {
	config := (&cfg.Config{StatsCache: cfg.StatsCache{Store: "bolt"}}).ApplyDefaults()

	_, err := New(config, log.NewNopLogger())
	assert.Error(t, err)
}

func TestReload_AppliesCacheAndGithubSettings(t *testing.T) {
	repoHandler := func(stars int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprintf(w, `{"stargazers_count":%d,"forks_count":1}`, stars)
		}
	}
	before := httptest.NewServer(repoHandler(1))
	t.Cleanup(before.Close)
	after := httptest.NewServer(repoHandler(2))
	t.Cleanup(after.Close)

	config, err := (&cfg.MockLoader{}).Load()
	require.NoError(t, err)
	config.GithubApi.BaseUrl = before.URL

	a, err := New(config, log.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	ctx := context.Background()
	assert.Equal(t, &statscache.Stats{Stars: 1, Forks: 1}, a.Manager.GetStats(ctx, "https://github.com/acme/one"))

	reloaded := *config
	reloaded.GithubApi.BaseUrl = after.URL
	reloaded.StatsCache.TTLSecond = 60
	reloaded.StatsCache.BatchSize = 2
	a.Reload(&reloaded)

	assert.Equal(t, time.Minute, a.Manager.Settings().TTL())
	assert.Equal(t, 2, a.Manager.Settings().BatchSize)
	assert.Equal(t, &statscache.Stats{Stars: 2, Forks: 1}, a.Manager.GetStats(ctx, "https://github.com/acme/two"))
}

func TestReload_BadGithubSettingsKeepPreviousClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"stargazers_count":3,"forks_count":0}`))
	}))
	t.Cleanup(server.Close)

	config, err := (&cfg.MockLoader{}).Load()
	require.NoError(t, err)
	config.GithubApi.BaseUrl = server.URL

	a, err := New(config, log.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	reloaded := *config
	reloaded.GithubApi.BaseUrl = "://bad"
	a.Reload(&reloaded)

	assert.Equal(t, &statscache.Stats{Stars: 3}, a.Manager.GetStats(context.Background(), "https://github.com/acme/widgets"))
}
