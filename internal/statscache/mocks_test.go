package statscache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
	"github.com/thep200/github-stats-cache/cfg"
	githubapi "github.com/thep200/github-stats-cache/internal/github_api"
	"github.com/thep200/github-stats-cache/internal/model"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchStats(ctx context.Context, owner, repo string) (*githubapi.RepoStats, error) {
	args := m.Called(ctx, owner, repo)
	stats, _ := args.Get(0).(*githubapi.RepoStats)
	return stats, args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	args := m.Called(ctx, key)
	entry, _ := args.Get(0).(*model.CacheEntry)
	return entry, args.Error(1)
}

func (m *mockStore) Put(ctx context.Context, entry *model.CacheEntry) error {
	return m.Called(ctx, entry).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Publish(ctx context.Context, key string, value interface{}) error {
	return m.Called(ctx, key, value).Error(0)
}

// fakeSource answers every repository with stars = len(repo) and records when
// each call happened on the fake clock.
type fakeSource struct {
	clock    clockwork.Clock
	delay    time.Duration
	calls    atomic.Int32
	inFlight atomic.Int32
	maxPar   atomic.Int32

	mu    sync.Mutex
	times []time.Time
}

func (f *fakeSource) FetchStats(_ context.Context, owner, repo string) (*githubapi.RepoStats, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.times = append(f.times, f.clock.Now())
	f.mu.Unlock()

	n := f.inFlight.Add(1)
	for {
		cur := f.maxPar.Load()
		if n <= cur || f.maxPar.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(f.delay)
	f.inFlight.Add(-1)

	return &githubapi.RepoStats{Owner: owner, Repo: repo, Stars: len(repo), Forks: 1, LastUpdated: "2024-01-01T00:00:00Z"}, nil
}

func (f *fakeSource) callTimes() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Time(nil), f.times...)
}

func testConfig() *cfg.Config {
	return (&cfg.Config{StatsCache: cfg.StatsCache{Store: cfg.StoreMemory}}).ApplyDefaults()
}

func rateLimitErr() error {
	return errors.New(errors.CodeRateLimit, "API rate limit exceeded")
}

func networkErr() error {
	return errors.New(errors.CodeNetwork, "connection reset")
}

// blockingSource holds every fetch until release is closed or the fetch ctx ends.
type blockingSource struct {
	started chan context.Context
	release chan struct{}
	calls   atomic.Int32
}

func newBlockingSource() *blockingSource {
	return &blockingSource{started: make(chan context.Context, 4), release: make(chan struct{})}
}

func (b *blockingSource) FetchStats(ctx context.Context, owner, repo string) (*githubapi.RepoStats, error) {
	b.calls.Add(1)
	b.started <- ctx
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.release:
	}
	return &githubapi.RepoStats{Owner: owner, Repo: repo, Stars: 42, Forks: 7, LastUpdated: "2024-01-01T00:00:00Z"}, nil
}
