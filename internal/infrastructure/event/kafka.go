package event

import (
	"context"
	"fmt"
	"sort"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/segmentio/kafka-go"
)

// KafkaWriter is the part of kafka.Writer the sink uses
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes outbox entries to a Kafka topic. Messages are keyed by
// aggregate id so the events of one order stay in one partition.
type KafkaSink struct {
	writer KafkaWriter
	topic  string
}

// NewKafkaSink creates a sink with a hash-balanced writer
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return NewKafkaSinkWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, topic)
}

// NewKafkaSinkWithWriter creates a sink around an existing writer
func NewKafkaSinkWithWriter(writer KafkaWriter, topic string) *KafkaSink {
	return &KafkaSink{writer: writer, topic: topic}
}

// Name implements Sink
func (s *KafkaSink) Name() string { return "kafka:" + s.topic }

// Deliver implements Sink
func (s *KafkaSink) Deliver(ctx context.Context, entry *shared.OutboxEntry) error {
	headers := messageHeaders(entry)
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msg := kafka.Message{
		Key:   []byte(entry.AggregateID.String()),
		Value: entry.Payload,
	}
	for _, k := range keys {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(headers[k])})
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s to kafka: %w", entry.EventType, err)
	}
	return nil
}

// Close implements Sink
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

var _ Sink = (*KafkaSink)(nil)
