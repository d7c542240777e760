package events

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/synapse-edu/classroom-service/internal/utils"
)

// Bus bundles a publisher with an optional in-process subscriber. With
// Kafka brokers configured the publisher writes to Kafka and consumption
// happens out of process; without brokers a GoChannel pub/sub keeps the
// notification pipeline inside the binary.
type Bus struct {
	Publisher  EventPublisher
	subscriber message.Subscriber
}

// NewGoChannelBus builds the in-process bus.
func NewGoChannelBus(slogLogger *slog.Logger, logger utils.Logger) *Bus {
	wmLogger := watermill.NewSlogLogger(slogLogger)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)

	return &Bus{
		Publisher:  newWatermillPublisher(pubSub, logger),
		subscriber: pubSub,
	}
}

// NewKafkaBus builds a Kafka-backed publisher. Subscribe returns nil
// channels: consumers run as separate processes against the brokers.
func NewKafkaBus(brokers []string, slogLogger *slog.Logger, logger utils.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(slogLogger)

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, err
	}

	return &Bus{Publisher: newWatermillPublisher(publisher, logger)}, nil
}

// Subscribe returns the message stream for a topic, or nil when the bus
// has no in-process subscriber.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if b.subscriber == nil {
		return nil, nil
	}
	return b.subscriber.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.Publisher.Close()
}
