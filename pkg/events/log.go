package events

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher writes events to the log instead of a broker. It is used when no brokers are configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher builds a log-only publisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the message and never fails.
func (p *LogPublisher) Publish(_ context.Context, msg Message) error {
	p.logger.Info("event published",
		zap.String("event_id", msg.ID),
		zap.String("event_type", msg.Type),
		zap.String("key", msg.Key),
		zap.ByteString("body", msg.Body),
	)
	return nil
}

// Close is a no-op.
func (p *LogPublisher) Close() error {
	return nil
}
