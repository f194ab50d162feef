package model

import "time"

// CacheEntry là thống kê đã cache của một repository
type CacheEntry struct {
	Key         string `json:"key" gorm:"column:cache_key;type:varchar(255);primaryKey"`
	Stars       int    `json:"stars" gorm:"column:stars;not null;default:0"`
	Forks       int    `json:"forks" gorm:"column:forks;not null;default:0"`
	LastUpdated string `json:"lastUpdated" gorm:"column:last_updated;type:varchar(64)"`
	CachedAt    int64  `json:"cachedAt" gorm:"column:cached_at;not null"`
}

func (e *CacheEntry) TableName() string {
	return TableGithubStats
}

// CachedTime chuyển CachedAt (epoch milliseconds) sang time.Time
func (e *CacheEntry) CachedTime() time.Time {
	return time.UnixMilli(e.CachedAt)
}

// Age trả về tuổi của entry tại thời điểm now
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.CachedTime())
}

// Fresh đúng khi entry còn trong TTL
func (e *CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}
