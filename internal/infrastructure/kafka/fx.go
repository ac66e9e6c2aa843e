package kafka

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the Kafka event producer
var Module = fx.Module("kafka",
	fx.Provide(NewProducer),
	fx.Invoke(registerProducerLifecycle),
)

func registerProducerLifecycle(lc fx.Lifecycle, producer *Producer) {
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return producer.Close()
		},
	})
}
