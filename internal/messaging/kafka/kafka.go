package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	kafkaWM "github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/hypeculture/marketplace/internal/messaging"
)

const partitionKeyMetadata = "partition_key"

var (
	_ messaging.Publisher  = (*Publisher)(nil)
	_ messaging.Subscriber = (*Subscriber)(nil)
)

// marshaler keys Kafka messages by the metadata set in PublishEvent so
// all events for one order land on the same partition.
var marshaler = kafkaWM.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
	return msg.Metadata.Get(partitionKeyMetadata), nil
})

// Publisher publishes JSON-encoded domain events to Kafka.
type Publisher struct {
	pub *kafkaWM.Publisher
}

func NewPublisher(brokers []string) (*Publisher, error) {
	pub, err := kafkaWM.NewPublisher(kafkaWM.PublisherConfig{
		Brokers:   brokers,
		Marshaler: marshaler,
	}, watermill.NewSlogLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return &Publisher{pub: pub}, nil
}

func (p *Publisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.Metadata.Set(partitionKeyMetadata, key)
	msg.SetContext(ctx)

	return p.pub.Publish(topic, msg)
}

func (p *Publisher) Close() error {
	return p.pub.Close()
}

// Subscriber consumes topics from Kafka.
type Subscriber struct {
	brokers []string
}

func NewSubscriber(brokers []string) *Subscriber {
	return &Subscriber{brokers: brokers}
}

// Consume reads messages from a topic in a loop and calls the handler
// for each message. It blocks until the context is cancelled. Handler
// failures are logged and nacked for redelivery.
func (s *Subscriber) Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error) error {
	saramaConfig := kafkaWM.DefaultSaramaSubscriberConfig()
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest

	sub, err := kafkaWM.NewSubscriber(kafkaWM.SubscriberConfig{
		Brokers:               s.brokers,
		Unmarshaler:           marshaler,
		ConsumerGroup:         groupID,
		OverwriteSaramaConfig: saramaConfig,
	}, watermill.NewSlogLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("failed to create kafka subscriber: %w", err)
	}
	defer sub.Close()

	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	for msg := range messages {
		if err := handler(msg.Context(), msg.Payload); err != nil {
			slog.Error("Error handling message", "topic", topic, "err", err)
			msg.Nack()
			continue
		}
		msg.Ack()
	}

	slog.Info("Consumer shutting down", "topic", topic)
	return nil
}
