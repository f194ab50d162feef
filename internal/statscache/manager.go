package statscache

import (
	"context"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"github.com/thep200/github-stats-cache/cfg"
	githubapi "github.com/thep200/github-stats-cache/internal/github_api"
	"github.com/thep200/github-stats-cache/internal/model"
	"github.com/thep200/github-stats-cache/internal/repokey"
	"github.com/thep200/github-stats-cache/pkg/log"
	"golang.org/x/sync/singleflight"
)

// Manager owns all reads and writes of cache entries.
type Manager struct {
	Logger   log.Logger
	settings atomic.Pointer[cfg.StatsCache]
	store    Store
	source   Source
	notifier Notifier
	clock    clockwork.Clock
	flight   singleflight.Group
}

type Option func(*Manager)

func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithNotifier publishes a model.StatsMessage after every successful refresh.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

func New(logger log.Logger, config *cfg.Config, store Store, source Source, opts ...Option) *Manager {
	m := &Manager{
		Logger: logger,
		store:  store,
		source: source,
		clock:  clockwork.NewRealClock(),
	}
	m.ApplyConfig(config)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ApplyConfig swaps the cache settings in place; lookups already running keep
// the settings they started with.
func (m *Manager) ApplyConfig(config *cfg.Config) {
	settings := config.StatsCache
	m.settings.Store(&settings)
}

// Settings returns the cache settings currently in effect.
func (m *Manager) Settings() cfg.StatsCache {
	return *m.settings.Load()
}

// GetStats returns the counts for url, or nil when they are unknown.
func (m *Manager) GetStats(ctx context.Context, url string) *Stats {
	stats, _ := m.Lookup(ctx, url)
	return stats
}

// Lookup is GetStats plus the path the lookup took.
func (m *Manager) Lookup(ctx context.Context, url string) (*Stats, Outcome) {
	ref, ok := repokey.Resolve(url)
	if !ok {
		m.Logger.Debug(ctx, "%v: %q", ErrUnresolvableKey, url)
		return nil, OutcomeUnresolvable
	}

	key := ref.Key()
	prev := m.read(ctx, key)
	if prev != nil && prev.Fresh(m.clock.Now(), m.Settings().TTL()) {
		return statsOf(prev), OutcomeHit
	}

	entry, err := m.refresh(ctx, ref, prev)
	if err == nil {
		return statsOf(entry), OutcomeFetched
	}
	return m.fallback(ctx, ref, prev, err)
}

// read treats store failures as a miss.
func (m *Manager) read(ctx context.Context, key string) *model.CacheEntry {
	entry, err := m.store.Get(ctx, key)
	if err != nil {
		m.Logger.Warn(ctx, "Cache read failed for %s, treating as miss: %v", key, err)
		return nil
	}
	return entry
}

// refresh fetches from the source and persists the result. Concurrent
// refreshes of the same key share one source call, which runs detached from
// any single caller's cancellation; each caller still stops waiting on its own ctx.
func (m *Manager) refresh(ctx context.Context, ref repokey.Ref, prev *model.CacheEntry) (*model.CacheEntry, error) {
	key := ref.Key()
	shared := context.WithoutCancel(ctx)
	ch := m.flight.DoChan(key, func() (interface{}, error) {
		fetched, err := m.source.FetchStats(shared, ref.Owner, ref.Repo)
		if err != nil {
			return nil, err
		}

		cachedAt := m.clock.Now().UnixMilli()
		if prev != nil && prev.CachedAt > cachedAt {
			cachedAt = prev.CachedAt
		}
		entry := &model.CacheEntry{
			Key:         key,
			Stars:       nonNegative(fetched.Stars),
			Forks:       nonNegative(fetched.Forks),
			LastUpdated: fetched.LastUpdated,
			CachedAt:    cachedAt,
		}

		// Writes are best-effort; the fetched value is returned regardless.
		if err := m.store.Put(shared, entry); err != nil {
			m.Logger.Warn(shared, "Cache write failed for %s: %v", key, err)
		}
		m.notify(shared, ref, entry)

		m.Logger.Debug(shared, "Refreshed %s: %d stars, %d forks", ref, entry.Stars, entry.Forks)
		return entry, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.CacheEntry), nil
	}
}

func (m *Manager) notify(ctx context.Context, ref repokey.Ref, entry *model.CacheEntry) {
	if m.notifier == nil {
		return
	}
	msg := model.StatsMessage{
		Key:         entry.Key,
		Owner:       ref.Owner,
		Repo:        ref.Repo,
		Stars:       entry.Stars,
		Forks:       entry.Forks,
		LastUpdated: entry.LastUpdated,
		CachedAt:    entry.CachedAt,
	}
	if err := m.notifier.Publish(ctx, entry.Key, msg); err != nil {
		m.Logger.Warn(ctx, "Failed to publish stats for %s: %v", entry.Key, err)
	}
}

// fallback serves the previous entry, however old, unless it is older than
// the configured staleness ceiling.
func (m *Manager) fallback(ctx context.Context, ref repokey.Ref, prev *model.CacheEntry, err error) (*Stats, Outcome) {
	if githubapi.IsRateLimited(err) {
		m.Logger.Warn(ctx, "GitHub rate limited while refreshing %s: %v", ref, err)
	} else {
		m.Logger.Warn(ctx, "GitHub unavailable while refreshing %s: %v", ref, err)
	}

	if prev == nil {
		return nil, OutcomeUnavailable
	}
	maxStale := m.Settings().MaxStale()
	if maxStale > 0 && prev.Age(m.clock.Now()) > maxStale {
		m.Logger.Info(ctx, "Cached stats for %s exceed max staleness %v, dropping", ref, maxStale)
		return nil, OutcomeUnavailable
	}
	return statsOf(prev), OutcomeStale
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
