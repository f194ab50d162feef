package cfg

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "GHSTATS"

type ViperLoader struct {
	v                     *viper.Viper
	configPaths           []string
	watch                 bool
	once                  sync.Once
	mu                    sync.RWMutex
	cfg                   *Config
	configChangeCallbacks []func(*Config)
}

type ViperOption func(*ViperLoader)

// WithConfigPath thêm thư mục chứa mode.yaml
func WithConfigPath(path string) ViperOption {
	return func(l *ViperLoader) {
		l.configPaths = append(l.configPaths, path)
	}
}

// WithWatch bật/tắt hot reload khi file cấu hình thay đổi
func WithWatch(watch bool) ViperOption {
	return func(l *ViperLoader) {
		l.watch = watch
	}
}

func NewViperLoader(opts ...ViperOption) (*ViperLoader, error) {
	l := &ViperLoader{
		v:                     viper.New(),
		watch:                 true,
		configChangeCallbacks: make([]func(*Config), 0),
	}
	for _, opt := range opts {
		opt(l)
	}
	if len(l.configPaths) == 0 {
		l.configPaths = []string{"cfg/yaml"}
	}
	return l, nil
}

func (l *ViperLoader) Load() (*Config, error) {
	var err error
	l.once.Do(func() {
		err = l.loadConfig()
		if err == nil && l.IsWatchChange() {
			l.v.OnConfigChange(func(e fsnotify.Event) {
				fmt.Printf("[INFO][CONFIG] Config file changed: %s\n", e.Name)
				if errReload := l.reloadConfig(); errReload != nil {
					fmt.Printf("[ERROR][CONFIG] Failed to reload config: %v\n", errReload)
				}
			})
			l.v.WatchConfig()
		}
	})

	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg, nil
}

func (l *ViperLoader) IsWatchChange() bool {
	return l.watch
}

func (l *ViperLoader) RegisterConfigChangeCallback(callback func(*Config)) {
	l.mu.Lock()
	l.configChangeCallbacks = append(l.configChangeCallbacks, callback)
	l.mu.Unlock()
}

func (l *ViperLoader) loadConfig() error {
	for _, path := range l.configPaths {
		l.v.AddConfigPath(path)
	}
	l.v.SetConfigName("mode")
	l.v.SetConfigType("yaml")

	// GHSTATS_GITHUBAPI_ACCESSTOKEN ghi đè githubapi.accesstoken
	l.v.SetEnvPrefix(envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to read config file: %w", err)
	}

	cfg, err := l.unmarshal()
	if err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config: %w", err)
	}

	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()

	return nil
}

func (l *ViperLoader) unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg.ApplyDefaults(), nil
}

func (l *ViperLoader) reloadConfig() error {
	cfg, err := l.unmarshal()
	if err != nil {
		return fmt.Errorf("[ERROR][CONFIG] failed to unmarshal config during reload: %w", err)
	}

	l.mu.Lock()
	l.cfg = cfg
	callbacks := make([]func(*Config), len(l.configChangeCallbacks))
	copy(callbacks, l.configChangeCallbacks)
	l.mu.Unlock()

	for _, callback := range callbacks {
		go callback(cfg)
	}

	fmt.Println("[INFO][CONFIG] Configuration reloaded successfully")
	return nil
}
