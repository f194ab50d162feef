package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/thep200/github-stats-cache/cfg"
	"github.com/thep200/github-stats-cache/internal/app"
	"github.com/thep200/github-stats-cache/internal/model"
	"github.com/thep200/github-stats-cache/pkg/log"
)

func TestRun_RefreshRequestWarmsCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	kafkaC, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("refresh-test"))
	require.NoError(t, err, "failed to start Kafka container")
	t.Cleanup(func() { _ = kafkaC.Terminate(context.Background()) })
	brokers, err := kafkaC.Brokers(ctx)
	require.NoError(t, err)

	github := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"stargazers_count":12,"forks_count":3}`))
	}))
	t.Cleanup(github.Close)

	config, err := (&cfg.MockLoader{}).Load()
	require.NoError(t, err)
	config.GithubApi.BaseUrl = github.URL
	config.Kafka = cfg.Kafka{
		Brokers:      brokers,
		TopicStats:   "github-stats",
		TopicRefresh: "github-stats-refresh",
		GroupID:      "refresh-test",
	}
	a, err := app.New(config, log.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NotNil(t, a.RefreshProducer)

	req := model.RefreshRequest{URLs: []string{"https://github.com/acme/widgets"}}
	require.Eventually(t, func() bool {
		return a.RefreshProducer.Publish(ctx, model.MessageKeyRefresh, req) == nil
	}, 30*time.Second, 500*time.Millisecond)

	stop := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, a, stop)
	}()

	require.Eventually(t, func() bool {
		entry, err := a.Store.Get(ctx, "acme__widgets")
		return err == nil && entry != nil
	}, 90*time.Second, 200*time.Millisecond)

	entry, err := a.Store.Get(ctx, "acme__widgets")
	require.NoError(t, err)
	assert.Equal(t, 12, entry.Stars)
	assert.Equal(t, 3, entry.Forks)

	stop <- os.Interrupt
	assert.NoError(t, <-done)
}
