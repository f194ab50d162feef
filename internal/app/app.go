// Package app wires configuration, logging, the cache store, the GitHub
// caller and Kafka into a ready statscache.Manager for the binaries.
package app

import (
	"context"
	"errors"

	"github.com/thep200/github-stats-cache/cfg"
	githubapi "github.com/thep200/github-stats-cache/internal/github_api"
	"github.com/thep200/github-stats-cache/internal/statscache"
	"github.com/thep200/github-stats-cache/internal/store"
	"github.com/thep200/github-stats-cache/pkg/kafka"
	"github.com/thep200/github-stats-cache/pkg/log"
)

type App struct {
	Config  *cfg.Config
	Logger  log.Logger
	Store   store.Backend
	Caller  *githubapi.Caller
	Manager *statscache.Manager

	// StatsProducer and RefreshProducer are nil when no brokers are configured.
	StatsProducer   *kafka.Producer
	RefreshProducer *kafka.Producer

	closers []func() error
}

// Load reads the configuration with the named loader and builds the App.
func Load(loaderName string) (*App, error) {
	loader, err := cfg.NewLoader(loaderName)
	if err != nil {
		return nil, err
	}
	config, err := loader.Load()
	if err != nil {
		return nil, err
	}
	logger, _ := log.NewCslLogger(config.App.LogLevel)
	a, err := New(config, logger)
	if err != nil {
		return nil, err
	}
	if watcher, ok := loader.(configWatcher); ok {
		watcher.RegisterConfigChangeCallback(a.Reload)
	}
	return a, nil
}

type configWatcher interface {
	RegisterConfigChangeCallback(func(*cfg.Config))
}

// Reload applies a changed configuration to the running cache and GitHub
// caller. Store, Kafka and server port changes need a restart.
func (a *App) Reload(config *cfg.Config) {
	ctx := context.Background()
	a.Manager.ApplyConfig(config)
	if err := a.Caller.ApplyConfig(config); err != nil {
		a.Logger.Error(ctx, "Keeping previous GitHub settings: %v", err)
	}
	settings := a.Manager.Settings()
	a.Logger.Info(ctx, "Config reloaded (ttl=%v, maxStale=%v, batch=%d)",
		settings.TTL(), settings.MaxStale(), settings.BatchSize)
}

func New(config *cfg.Config, logger log.Logger) (*App, error) {
	a := &App{Config: config, Logger: logger}

	backend, closeStore, err := store.FactoryStore(config)
	if err != nil {
		return nil, err
	}
	a.Store = backend
	a.closers = append(a.closers, closeStore)

	caller, err := githubapi.NewCaller(logger, config)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Caller = caller

	var opts []statscache.Option
	if len(config.Kafka.Brokers) > 0 {
		if a.StatsProducer, err = kafka.NewProducer(config, logger, config.Kafka.TopicStats); err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, a.StatsProducer.Close)
		opts = append(opts, statscache.WithNotifier(a.StatsProducer))

		if a.RefreshProducer, err = kafka.NewProducer(config, logger, config.Kafka.TopicRefresh); err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, a.RefreshProducer.Close)
	}

	a.Manager = statscache.New(logger, config, backend, caller, opts...)
	logger.Info(context.Background(), "%s %s ready (store=%s, ttl=%v)",
		config.App.Name, config.App.Version, config.StatsCache.Store, config.StatsCache.TTL())
	return a, nil
}

// Close releases resources in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
