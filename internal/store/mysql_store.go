// Package store provides persisted backends for the GitHub statistics cache.
package store

import (
	"context"
	stderrors "errors"

	"github.com/jmgilman/go/errors"
	"github.com/thep200/github-stats-cache/internal/model"
	"github.com/thep200/github-stats-cache/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var upsertColumns = []string{"stars", "forks", "last_updated", "cached_at"}

// MysqlStore keeps one row per cache key in the github_stats table.
type MysqlStore struct {
	mysql *db.Mysql
}

func NewMysqlStore(mysql *db.Mysql) *MysqlStore {
	return &MysqlStore{mysql: mysql}
}

// Migrate creates or updates the github_stats table.
func (s *MysqlStore) Migrate() error {
	return s.mysql.Migrate(&model.CacheEntry{})
}

// Get returns nil, nil when no entry exists for key.
func (s *MysqlStore) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	gdb, err := s.mysql.Db()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabase, "failed to get database connection")
	}

	var entry model.CacheEntry
	err = gdb.WithContext(ctx).Where("cache_key = ?", key).Take(&entry).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithContext(
			errors.Wrap(err, errors.CodeDatabase, "failed to read cache entry"), "key", key)
	}
	return &entry, nil
}

// Put inserts the entry or overwrites the existing row with the same key.
func (s *MysqlStore) Put(ctx context.Context, entry *model.CacheEntry) error {
	gdb, err := s.mysql.Db()
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "failed to get database connection")
	}

	row := *entry
	err = gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(&row).Error
	if err != nil {
		return errors.WithContext(
			errors.Wrap(err, errors.CodeDatabase, "failed to upsert cache entry"), "key", entry.Key)
	}
	return nil
}

func (s *MysqlStore) Ping(ctx context.Context) error {
	if err := s.mysql.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDatabase, "mysql ping failed")
	}
	return nil
}
