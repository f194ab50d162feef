package cfg

import "time"

type (
	App struct {
		Name     string
		Version  string
		LogLevel string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	GithubApi struct {
		AccessToken       string
		BaseUrl           string
		TimeoutSecond     int
		RequestsPerSecond int
	}

	// StatsCache điều khiển TTL, fallback và batching của cache
	StatsCache struct {
		Store                 string
		TTLSecond             int
		MaxStaleSecond        int
		BatchSize             int
		BatchDelayMillisecond int
	}

	Kafka struct {
		Brokers      []string
		TopicStats   string
		TopicRefresh string
		GroupID      string
	}

	Server struct {
		Port int
	}
)

type Config struct {
	App        App
	Mysql      Mysql
	GithubApi  GithubApi
	StatsCache StatsCache
	Kafka      Kafka
	Server     Server
}

const (
	StoreMysql  = "mysql"
	StoreMemory = "memory"
)

// ApplyDefaults điền giá trị mặc định cho các trường chưa cấu hình
func (c *Config) ApplyDefaults() *Config {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.GithubApi.BaseUrl == "" {
		c.GithubApi.BaseUrl = "https://api.github.com/"
	}
	if c.GithubApi.TimeoutSecond <= 0 {
		c.GithubApi.TimeoutSecond = 30
	}
	if c.GithubApi.RequestsPerSecond <= 0 {
		c.GithubApi.RequestsPerSecond = 10
	}
	if c.StatsCache.Store == "" {
		c.StatsCache.Store = StoreMysql
	}
	if c.StatsCache.TTLSecond <= 0 {
		c.StatsCache.TTLSecond = 3600
	}
	if c.StatsCache.MaxStaleSecond < 0 {
		c.StatsCache.MaxStaleSecond = 0
	}
	if c.StatsCache.BatchSize <= 0 {
		c.StatsCache.BatchSize = 5
	}
	if c.StatsCache.BatchDelayMillisecond <= 0 {
		c.StatsCache.BatchDelayMillisecond = 1000
	}
	if c.Kafka.TopicStats == "" {
		c.Kafka.TopicStats = "github-stats"
	}
	if c.Kafka.TopicRefresh == "" {
		c.Kafka.TopicRefresh = "github-stats-refresh"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "github-stats-refresher"
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	return c
}

func (s StatsCache) TTL() time.Duration {
	return time.Duration(s.TTLSecond) * time.Second
}

// MaxStale trả về 0 khi không giới hạn độ cũ của dữ liệu fallback
func (s StatsCache) MaxStale() time.Duration {
	return time.Duration(s.MaxStaleSecond) * time.Second
}

func (s StatsCache) BatchDelay() time.Duration {
	return time.Duration(s.BatchDelayMillisecond) * time.Millisecond
}

func (g GithubApi) Timeout() time.Duration {
	return time.Duration(g.TimeoutSecond) * time.Second
}
