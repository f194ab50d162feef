package model

const (
	MessageKeyStats   = "stats"
	MessageKeyRefresh = "refresh"
)

// StatsMessage được gửi tới Kafka mỗi khi một entry được làm mới từ GitHub
type StatsMessage struct {
	Key         string `json:"key"`
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	LastUpdated string `json:"last_updated"`
	CachedAt    int64  `json:"cached_at"`
}

// RefreshRequest yêu cầu worker làm nóng cache cho một danh sách URL
type RefreshRequest struct {
	URLs        []string `json:"urls"`
	Concurrency int      `json:"concurrency,omitempty"`
}
