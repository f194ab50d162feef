// Package statscache serves star and fork counts for GitHub repositories from
// a persisted cache, refreshing entries from GitHub once they are older than
// the TTL.
//
// Counts are decorative: no lookup ever returns an error. When GitHub cannot
// be reached or throttles the caller, the last known entry is served even if
// it is stale, and nil is returned only when nothing is known about the
// repository. A nil *Stats therefore means "unavailable", never "zero".
package statscache

import (
	"context"

	"github.com/jmgilman/go/errors"
	githubapi "github.com/thep200/github-stats-cache/internal/github_api"
	"github.com/thep200/github-stats-cache/internal/model"
)

// ErrUnresolvableKey is logged when a URL does not reference a repository.
var ErrUnresolvableKey = errors.New(errors.CodeInvalidInput, "url is not a github repository reference")

// Stats is what callers receive for a repository.
type Stats struct {
	Stars int `json:"stars"`
	Forks int `json:"forks"`
}

// Outcome tells which path a lookup took.
type Outcome string

const (
	OutcomeHit          Outcome = "hit"
	OutcomeFetched      Outcome = "fetched"
	OutcomeStale        Outcome = "stale"
	OutcomeUnavailable  Outcome = "unavailable"
	OutcomeUnresolvable Outcome = "unresolvable"
)

// Store persists cache entries. Get returns nil, nil on a miss; Put upserts.
type Store interface {
	Get(ctx context.Context, key string) (*model.CacheEntry, error)
	Put(ctx context.Context, entry *model.CacheEntry) error
}

// Source fetches current counts from GitHub.
type Source interface {
	FetchStats(ctx context.Context, owner, repo string) (*githubapi.RepoStats, error)
}

// Notifier receives an event for every refreshed entry.
type Notifier interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

func statsOf(entry *model.CacheEntry) *Stats {
	return &Stats{Stars: entry.Stars, Forks: entry.Forks}
}
