package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/thep200/github-stats-cache/cfg"
	"github.com/thep200/github-stats-cache/pkg/log"
)

// HandlerFunc processes the raw value of one message
type HandlerFunc func(ctx context.Context, value []byte) error

// Consumer handles Kafka message consumption
type Consumer struct {
	Config   *cfg.Config
	Logger   log.Logger
	reader   *kafka.Reader
	handlers map[string]HandlerFunc
}

// NewConsumer creates a group consumer for topic
func NewConsumer(config *cfg.Config, logger log.Logger, topic, groupID string) (*Consumer, error) {
	if len(config.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Kafka.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,        // 10MB
		MaxWait:        time.Second, // Maximum amount of time to wait for new data
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second, // Flush commits to Kafka every second
	})

	return newConsumer(config, logger, reader), nil
}

func newConsumer(config *cfg.Config, logger log.Logger, reader *kafka.Reader) *Consumer {
	return &Consumer{
		Config:   config,
		Logger:   logger,
		reader:   reader,
		handlers: make(map[string]HandlerFunc),
	}
}

// RegisterHandler registers a message handler for a specific message key
func (c *Consumer) RegisterHandler(key string, handler HandlerFunc) {
	c.handlers[key] = handler
}

// Start consumes messages until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	c.Logger.Info(ctx, "Starting Kafka consumer for topic: %s", c.reader.Config().Topic)

	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return c.reader.Close()
			}
			c.Logger.Error(ctx, "Error reading message: %v", err)
			continue
		}
		c.dispatch(ctx, message)
	}
}

func (c *Consumer) dispatch(ctx context.Context, message kafka.Message) {
	key := string(message.Key)
	handler, exists := c.handlers[key]
	if !exists {
		c.Logger.Warn(ctx, "No handler registered for message with key: %s", key)
		return
	}

	if err := handler(ctx, message.Value); err != nil {
		c.Logger.Error(ctx, "Error handling message with key %s: %v", key, err)
		return
	}
	c.Logger.Debug(ctx, "Successfully processed message with key: %s", key)
}

// Close closes the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
