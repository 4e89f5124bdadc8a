package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"parcel-service/internal/platform/obs"
	"parcel-service/internal/ports"

	"github.com/IBM/sarama"
)

// KafkaPublisher sends domain events as JSON messages through a synchronous
// producer. The message key is the event's parcel id when one is present.
type KafkaPublisher struct {
	producer sarama.SyncProducer
}

func NewKafkaPublisher(brokers []string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka publisher: no brokers configured")
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: new producer: %w", err)
	}

	return &KafkaPublisher{producer: producer}, nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(p sarama.SyncProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

func (k *KafkaPublisher) Publish(ctx context.Context, topic string, event ports.Event) (err error) {
	defer obs.Time(ctx, "kafka.Publish")(&err)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("publish %s: marshal: %w", topic, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(data),
	}
	if id, ok := event.Data["parcelId"].(string); ok && id != "" {
		msg.Key = sarama.StringEncoder(id)
	}

	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, topic string, event ports.Event) error {
	return nil
}
