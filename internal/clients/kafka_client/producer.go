package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/tonecheck/internal/models"
)

// Producer is the part of *kafka.Producer the publisher relies on.
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Events() chan kafka.Event
	Flush(timeoutMs int) int
	Close()
}

// TonePublisher publishes a ToneEvent for every classified submission.
type TonePublisher struct {
	producer Producer
	topic    string
}

func NewTonePublisher(cfg KafkaConfig) (*TonePublisher, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker),
		slog.String("topic", cfg.Topic))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   cfg.Broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"enable.idempotence":  true,
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return newTonePublisher(p, cfg.Topic), nil
}

func newTonePublisher(p Producer, topic string) *TonePublisher {
	return &TonePublisher{producer: p, topic: topic}
}

func (t *TonePublisher) ToneClassified(_ context.Context, event models.ToneEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to marshal tone event: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &t.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.SessionID),
		Value:          jsonData,
		Headers: []kafka.Header{
			{Key: "tone", Value: []byte(event.Category.String())},
		},
	}

	for i := 0; i < MAX_RETRIES; i++ {
		err = t.producer.Produce(msg, nil)
		if err == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce tone event after %d attempts: %w", MAX_RETRIES, err)
	}

	slog.Debug("[KafkaClient] Queued tone event",
		slog.String("topic", t.topic),
		slog.String("tone", event.Category.String()))
	return nil
}

// HandleDeliveryReports logs failed deliveries until the producer is closed.
// It keeps draining through Close so Flush is not held up by unread reports.
func (t *TonePublisher) HandleDeliveryReports() {
	for e := range t.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				slog.Warn("[KafkaClient] Delivery failed",
					slog.String("error", ev.TopicPartition.Error.Error()))
			}
		case kafka.Error:
			slog.Error("[KafkaClient] Producer error",
				slog.String("error", ev.Error()))
		}
	}
}

func (t *TonePublisher) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := t.producer.Flush(FLUSH_TIMEOUT); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	t.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}
