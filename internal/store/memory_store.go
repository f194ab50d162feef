package store

import (
	"context"

	"github.com/patrickmn/go-cache"
	"github.com/thep200/github-stats-cache/internal/model"
)

// MemoryStore keeps entries in process memory. Entries never expire, matching
// the persisted store where rows are only superseded by newer writes.
type MemoryStore struct {
	items *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*model.CacheEntry, error) {
	v, found := s.items.Get(key)
	if !found {
		return nil, nil
	}
	entry := v.(model.CacheEntry)
	return &entry, nil
}

func (s *MemoryStore) Put(_ context.Context, entry *model.CacheEntry) error {
	s.items.Set(entry.Key, *entry, cache.NoExpiration)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of cached repositories.
func (s *MemoryStore) Len() int {
	return s.items.ItemCount()
}
