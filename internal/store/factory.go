package store

import (
	"context"
	"fmt"

	"github.com/thep200/github-stats-cache/cfg"
	"github.com/thep200/github-stats-cache/internal/model"
	"github.com/thep200/github-stats-cache/pkg/db"
)

// Backend is a store the service can run on
type Backend interface {
	Get(ctx context.Context, key string) (*model.CacheEntry, error)
	Put(ctx context.Context, entry *model.CacheEntry) error
	Ping(ctx context.Context) error
}

// FactoryStore picks the backend named by StatsCache.Store
func FactoryStore(config *cfg.Config) (Backend, func() error, error) {
	switch config.StatsCache.Store {
	case cfg.StoreMemory:
		return NewMemoryStore(), func() error { return nil }, nil
	case cfg.StoreMysql:
		mysql, err := db.NewMysql(config)
		if err != nil {
			return nil, nil, err
		}
		s := NewMysqlStore(mysql)
		if err := s.Migrate(); err != nil {
			_ = mysql.Close()
			return nil, nil, fmt.Errorf("failed to migrate %s: %w", model.TableGithubStats, err)
		}
		return s, mysql.Close, nil
	default:
		return nil, nil, fmt.Errorf("[ERROR] Unsupported store: %s", config.StatsCache.Store)
	}
}
