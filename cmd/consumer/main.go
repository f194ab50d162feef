package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thep200/github-stats-cache/internal/app"
	"github.com/thep200/github-stats-cache/internal/model"
	"github.com/thep200/github-stats-cache/internal/statscache"
	"github.com/thep200/github-stats-cache/pkg/kafka"
	"github.com/thep200/github-stats-cache/pkg/log"
)

func main() {
	loaderName := flag.String("config", "viper", "Config loader: viper or mock")
	flag.Parse()

	a, err := app.Load(*loaderName)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	err = run(context.Background(), a, sigCh)
	if closeErr := a.Close(); closeErr != nil {
		a.Logger.Error(context.Background(), "Error releasing resources: %v", closeErr)
	}
	if err != nil {
		a.Logger.Error(context.Background(), "%v", err)
		os.Exit(1)
	}
}

// run consumes refresh requests until stop fires or the consumer fails.
func run(ctx context.Context, a *app.App, stop <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumer, err := kafka.NewConsumer(a.Config, a.Logger, a.Config.Kafka.TopicRefresh, a.Config.Kafka.GroupID)
	if err != nil {
		return fmt.Errorf("failed to create refresh consumer: %w", err)
	}
	consumer.RegisterHandler(model.MessageKeyRefresh, refreshHandler(a.Logger, a.Manager))

	done := make(chan error, 1)
	go func() {
		done <- consumer.Start(ctx)
	}()
	a.Logger.Info(ctx, "Refresh consumer started on topic %s", a.Config.Kafka.TopicRefresh)

	select {
	case <-stop:
		a.Logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
		cancel()
		<-done
		return nil
	case err := <-done:
		if err != nil {
			return fmt.Errorf("refresh consumer error: %w", err)
		}
		return nil
	}
}

// refreshHandler warms the cache for every URL of a RefreshRequest
func refreshHandler(logger log.Logger, manager *statscache.Manager) kafka.HandlerFunc {
	return func(ctx context.Context, value []byte) error {
		var req model.RefreshRequest
		if err := json.Unmarshal(value, &req); err != nil {
			return fmt.Errorf("failed to unmarshal refresh request: %w", err)
		}

		results := manager.GetStatsBatch(ctx, req.URLs, req.Concurrency)
		missing := 0
		for _, stats := range results {
			if stats == nil {
				missing++
			}
		}
		logger.Info(ctx, "Refreshed %d urls, %d without stats", len(results), missing)
		return nil
	}
}
