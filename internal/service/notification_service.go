package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tarsit/tarsit-api/internal/models"
	"github.com/tarsit/tarsit-api/pkg/events"
	"github.com/tarsit/tarsit-api/pkg/jobs"
)

const notificationJobType = "appointment_event"

type eventPublisher interface {
	Publish(ctx context.Context, msg events.Message) error
}

// NotificationConfig sizes the delivery worker pool.
type NotificationConfig struct {
	Enabled    bool
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// NotificationService delivers appointment events in the background. Notify never blocks and
// never reports failure to the caller; delivery problems are logged and counted.
type NotificationService struct {
	publisher eventPublisher
	queue     *jobs.Queue[models.AppointmentEvent]
	metrics   *MetricsService
	logger    *zap.Logger
	enabled   bool
}

// NewNotificationService wires the publisher behind a retrying worker queue.
func NewNotificationService(publisher eventPublisher, cfg NotificationConfig, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		enabled:   cfg.Enabled && publisher != nil,
	}
	s.queue = jobs.NewQueue("appointment-notifications", s.deliver, jobs.QueueConfig[models.AppointmentEvent]{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnDrop: func(job jobs.Job[models.AppointmentEvent], err error) {
			s.metrics.RecordNotification("dropped")
		},
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop halts the workers; undelivered events are abandoned.
func (s *NotificationService) Stop() {
	if s == nil {
		return
	}
	s.queue.Stop()
}

// Notify schedules delivery of event.
func (s *NotificationService) Notify(event models.AppointmentEvent) {
	if s == nil || !s.enabled {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := s.queue.TryEnqueue(jobs.Job[models.AppointmentEvent]{ID: event.ID, Type: notificationJobType, Payload: event}); err != nil {
		s.metrics.RecordNotification("dropped")
		s.logger.Warn("appointment notification not queued",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.String("appointment_id", event.AppointmentID),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job[models.AppointmentEvent]) error {
	event := job.Payload
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal appointment event: %w", err)
	}
	err = s.publisher.Publish(ctx, events.Message{
		ID:   event.ID,
		Type: event.Type,
		Key:  event.AppointmentID,
		Body: body,
	})
	if err != nil {
		s.metrics.RecordNotification("failed")
		return err
	}
	s.metrics.RecordNotification("sent")
	return nil
}
