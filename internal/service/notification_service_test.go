package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarsit/tarsit-api/internal/models"
	"github.com/tarsit/tarsit-api/pkg/events"
)

type publisherStub struct {
	mu       sync.Mutex
	messages []events.Message
	failures int
}

func (p *publisherStub) Publish(ctx context.Context, msg events.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *publisherStub) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func (p *publisherStub) last() events.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages[len(p.messages)-1]
}

func TestNotificationServiceDeliversWithRetry(t *testing.T) {
	pub := &publisherStub{failures: 1}
	svc := NewNotificationService(pub, NotificationConfig{Enabled: true, Workers: 1, MaxRetries: 2, RetryDelay: 5 * time.Millisecond}, NewMetricsService(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	svc.Notify(models.AppointmentEvent{Type: models.EventAppointmentConfirmed, AppointmentID: "appt-1", Status: models.AppointmentStatusConfirmed})

	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)
	msg := pub.last()
	assert.Equal(t, "appt-1", msg.Key)
	assert.Equal(t, models.EventAppointmentConfirmed, msg.Type)
	assert.NotEmpty(t, msg.ID)

	var decoded models.AppointmentEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, models.AppointmentStatusConfirmed, decoded.Status)
	assert.False(t, decoded.OccurredAt.IsZero())
}

func TestNotificationServiceDisabledIsNoop(t *testing.T) {
	pub := &publisherStub{}
	svc := NewNotificationService(pub, NotificationConfig{Enabled: false}, nil, nil)
	svc.Start(context.Background())
	svc.Notify(models.AppointmentEvent{Type: models.EventAppointmentCreated, AppointmentID: "appt-1"})
	svc.Stop()
	assert.Equal(t, 0, pub.count())

	var nilSvc *NotificationService
	nilSvc.Notify(models.AppointmentEvent{})
	nilSvc.Stop()
}

func TestNotificationServiceNotStartedDropsQuietly(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewNotificationService(&publisherStub{}, NotificationConfig{Enabled: true}, metrics, nil)
	svc.Notify(models.AppointmentEvent{Type: models.EventAppointmentCreated, AppointmentID: "appt-1"})
	assert.Equal(t, uint64(1), metrics.Snapshot().NotificationsDropped)
}
