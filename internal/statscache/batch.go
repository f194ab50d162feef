package statscache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// GetStatsBatch looks up urls in sequential groups of concurrency members.
// Members of a group run in parallel; the next group starts only after the
// whole group finished and the batch delay elapsed. Results are keyed by the
// exact input string, so unresolvable URLs are present with a nil value.
func (m *Manager) GetStatsBatch(ctx context.Context, urls []string, concurrency int) map[string]*Stats {
	results := make(map[string]*Stats, len(urls))
	if len(urls) == 0 {
		return results
	}
	settings := m.Settings()
	if concurrency <= 0 {
		concurrency = settings.BatchSize
	}

	var mu sync.Mutex
	for start := 0; start < len(urls); start += concurrency {
		end := min(start+concurrency, len(urls))

		var g errgroup.Group
		for _, url := range urls[start:end] {
			g.Go(func() error {
				stats := m.GetStats(ctx, url)
				mu.Lock()
				results[url] = stats
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		if end < len(urls) {
			m.pause(ctx, settings.BatchDelay())
		}
	}

	m.Logger.Debug(ctx, "Batch of %d urls done in groups of %d", len(urls), concurrency)
	return results
}

// pause waits for the batch delay; cancellation cuts it short.
func (m *Manager) pause(ctx context.Context, delay time.Duration) {
	select {
	case <-ctx.Done():
	case <-m.clock.After(delay):
	}
}
