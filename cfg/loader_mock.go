package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (ml *MockLoader) Load() (*Config, error) {
	config := &Config{
		// App
		App: App{
			Name:     "github-stats-cache",
			Version:  "0.1.0",
			LogLevel: "debug",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "github_stats",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:       "",
			BaseUrl:           "https://api.github.com/",
			TimeoutSecond:     30,
			RequestsPerSecond: 10,
		},

		// StatsCache
		StatsCache: StatsCache{
			Store:                 StoreMemory,
			TTLSecond:             3600,
			MaxStaleSecond:        0,
			BatchSize:             5,
			BatchDelayMillisecond: 1000,
		},
	}
	return config.ApplyDefaults(), nil
}
