package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaShaimardanov/franky/config"
	"github.com/RaShaimardanov/franky/pkg/events"
)

func testKafkaConfig() *config.KafkaConfig {
	return &config.KafkaConfig{
		Enabled:                true,
		TopicAudioDelivered:    "audio.delivered",
		TopicAudioFailed:       "audio.delivery_failed",
		TopicBroadcastIngested: "broadcasts.ingested",
	}
}

func TestProducer_SendAudioDelivered(t *testing.T) {
	mock := mocks.NewSyncProducer(t, sarama.NewConfig())
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var event events.AudioDelivered
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.BroadcastID != 3 || !event.Uploaded {
			return errors.New("unexpected payload")
		}
		return nil
	})

	producer := NewProducerWith(mock, testKafkaConfig(), zerolog.Nop())
	err := producer.SendAudioDelivered(context.Background(), &events.AudioDelivered{
		EventID:     events.NewID(),
		BroadcastID: 3,
		Uploaded:    true,
	})
	require.NoError(t, err)
	require.NoError(t, producer.Close())
}

func TestProducer_SendFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, sarama.NewConfig())
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := NewProducerWith(mock, testKafkaConfig(), zerolog.Nop())
	err := producer.SendBroadcastIngested(context.Background(), &events.BroadcastIngested{BroadcastID: 1})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, producer.Close())
}

func TestProducer_Disabled(t *testing.T) {
	producer, err := NewProducer(&config.KafkaConfig{}, zerolog.Nop())
	require.NoError(t, err)

	assert.NoError(t, producer.SendAudioDeliveryFailed(context.Background(), &events.AudioDeliveryFailed{BroadcastID: 2}))
	assert.NoError(t, producer.Close())
}
