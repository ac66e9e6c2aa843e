package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/RaShaimardanov/franky/config"
)

// MessageHandler processes one message value; returned errors are logged and the offset is committed anyway
type MessageHandler func(ctx context.Context, value []byte) error

// fetchRetryDelay is the pause after a failed fetch
const fetchRetryDelay = time.Second

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic with a consumer group
type Consumer struct {
	reader     messageReader
	handler    MessageHandler
	topic      string
	logger     zerolog.Logger
	retryDelay time.Duration
	done       chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewConsumer creates a consumer for topic
func NewConsumer(cfg *config.KafkaConfig, topic string, handler MessageHandler, logger zerolog.Logger) *Consumer {
	brokers := cfg.Brokers
	if len(brokers) == 0 {
		brokers = []string{"localhost:9093"}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  cfg.GroupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	logger.Info().
		Strs("brokers", brokers).
		Str("group_id", cfg.GroupID).
		Str("topic", topic).
		Msg("Kafka consumer initialized")

	return newConsumer(reader, topic, handler, logger)
}

func newConsumer(reader messageReader, topic string, handler MessageHandler, logger zerolog.Logger) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())

	return &Consumer{
		reader:     reader,
		handler:    handler,
		topic:      topic,
		logger:     logger,
		retryDelay: fetchRetryDelay,
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start starts consuming messages in the background
func (c *Consumer) Start() {
	c.logger.Info().Str("topic", c.topic).Msg("Starting Kafka consumer...")

	go func() {
		defer close(c.done)

		for {
			msg, err := c.reader.FetchMessage(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return
				}
				c.logger.Error().Err(err).Dur("retry_in", c.retryDelay).Msg("Failed to fetch message from Kafka")
				if !c.wait(c.retryDelay) {
					return
				}
				continue
			}

			c.logger.Debug().
				Str("topic", msg.Topic).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("Received message from Kafka")

			if err := c.handler(c.ctx, msg.Value); err != nil {
				c.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to handle message")
			}

			if err := c.reader.CommitMessages(c.ctx, msg); err != nil && c.ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("Failed to commit Kafka message")
			}
		}
	}()
}

// Stop stops the consumer and waits for the loop to exit
func (c *Consumer) Stop() error {
	c.logger.Info().Str("topic", c.topic).Msg("Stopping Kafka consumer...")
	c.cancel()

	if err := c.reader.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to close Kafka reader")
		return err
	}
	<-c.done

	c.logger.Info().Str("topic", c.topic).Msg("Kafka consumer stopped successfully")
	return nil
}

// wait pauses for d and reports false when the consumer stops first
func (c *Consumer) wait(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-c.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
