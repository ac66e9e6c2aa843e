// Package kafka publishes domain events to Kafka
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/RaShaimardanov/franky/config"
	"github.com/RaShaimardanov/franky/pkg/events"
)

// Producer publishes delivery and ingest events. Without brokers it only logs.
type Producer struct {
	producer sarama.SyncProducer
	cfg      *config.KafkaConfig
	logger   zerolog.Logger
}

// NewProducer creates a sync producer when Kafka is enabled
func NewProducer(cfg *config.KafkaConfig, logger zerolog.Logger) (*Producer, error) {
	if !cfg.Enabled {
		logger.Info().Msg("Kafka disabled, events will only be logged")
		return &Producer{cfg: cfg, logger: logger}, nil
	}

	brokers := cfg.Brokers
	if len(brokers) == 0 {
		brokers = []string{"localhost:9093"}
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info().Strs("brokers", brokers).Msg("Kafka producer initialized successfully")

	return NewProducerWith(producer, cfg, logger), nil
}

// NewProducerWith wraps an existing sarama producer
func NewProducerWith(producer sarama.SyncProducer, cfg *config.KafkaConfig, logger zerolog.Logger) *Producer {
	return &Producer{
		producer: producer,
		cfg:      cfg,
		logger:   logger,
	}
}

// SendAudioDelivered publishes an audio.delivered event
func (p *Producer) SendAudioDelivered(ctx context.Context, event *events.AudioDelivered) error {
	return p.sendEvent(ctx, p.cfg.TopicAudioDelivered, event.BroadcastID, event)
}

// SendAudioDeliveryFailed publishes an audio.delivery_failed event
func (p *Producer) SendAudioDeliveryFailed(ctx context.Context, event *events.AudioDeliveryFailed) error {
	return p.sendEvent(ctx, p.cfg.TopicAudioFailed, event.BroadcastID, event)
}

// SendBroadcastIngested publishes a broadcasts.ingested event
func (p *Producer) SendBroadcastIngested(ctx context.Context, event *events.BroadcastIngested) error {
	return p.sendEvent(ctx, p.cfg.TopicBroadcastIngested, event.BroadcastID, event)
}

func (p *Producer) sendEvent(ctx context.Context, topic string, broadcastID int64, event interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	if p.producer == nil {
		p.logger.Debug().Str("topic", topic).RawJSON("event", jsonData).Msg("Kafka disabled, event skipped")
		return nil
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(broadcastID, 10)),
		Value: sarama.ByteEncoder(jsonData),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", topic).Msg("Failed to send Kafka message")
		return err
	}

	p.logger.Debug().Str("topic", topic).Int32("partition", partition).Int64("offset", offset).Msg("Kafka message sent successfully")
	return nil
}

// Close closes the underlying producer
func (p *Producer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Failed to close Kafka producer")
		return err
	}
	p.logger.Info().Msg("Kafka producer closed successfully")
	return nil
}
