package event

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPChannel is the part of amqp.Channel the sink uses
type AMQPChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQSink publishes outbox entries to a topic exchange with the event
// type as routing key
type RabbitMQSink struct {
	conn     *amqp.Connection
	channel  AMQPChannel
	exchange string
}

// NewRabbitMQSink dials the broker and declares the exchange
func NewRabbitMQSink(url, exchange string) (*RabbitMQSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	s := NewRabbitMQSinkWithChannel(ch, exchange)
	s.conn = conn
	return s, nil
}

// NewRabbitMQSinkWithChannel creates a sink on an open channel
func NewRabbitMQSinkWithChannel(ch AMQPChannel, exchange string) *RabbitMQSink {
	return &RabbitMQSink{channel: ch, exchange: exchange}
}

// Name implements Sink
func (s *RabbitMQSink) Name() string { return "rabbitmq:" + s.exchange }

// Deliver implements Sink
func (s *RabbitMQSink) Deliver(ctx context.Context, entry *shared.OutboxEntry) error {
	headers := amqp.Table{}
	for k, v := range messageHeaders(entry) {
		headers[k] = v
	}
	err := s.channel.PublishWithContext(ctx, s.exchange, entry.EventType, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    entry.EventID.String(),
		Timestamp:    entry.CreatedAt,
		Type:         entry.EventType,
		Headers:      headers,
		Body:         entry.Payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s to rabbitmq: %w", entry.EventType, err)
	}
	return nil
}

// Close implements Sink
func (s *RabbitMQSink) Close() error {
	var err error
	if s.channel != nil {
		err = s.channel.Close()
	}
	if s.conn != nil {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

var _ Sink = (*RabbitMQSink)(nil)
