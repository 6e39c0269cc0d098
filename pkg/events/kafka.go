package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message is a keyed event destined for the broker.
type Message struct {
	ID   string
	Type string
	Key  string
	Body []byte
}

// KafkaPublisher writes events to a single topic. Messages sharing a key land on the same
// partition, so events for one appointment stay ordered.
type KafkaPublisher struct {
	writer  *kafka.Writer
	brokers []string
}

// NewKafkaPublisher builds a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		brokers: brokers,
	}, nil
}

// Publish writes one message synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, msg Message) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Body,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(msg.ID)},
			{Key: "event_type", Value: []byte(msg.Type)},
		},
		Time: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("kafka publish %s: %w", msg.Type, err)
	}
	return nil
}

// Ping dials the first broker; the readiness probe uses it.
func (p *KafkaPublisher) Ping(ctx context.Context) error {
	dialer := kafka.Dialer{Timeout: 2 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("kafka dial %s: %w", p.brokers[0], err)
	}
	return conn.Close()
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
