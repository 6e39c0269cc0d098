package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaPublisherValidates(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "topic")
	assert.Error(t, err)
	_, err = NewKafkaPublisher([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "tarsit.appointments")
	require.NoError(t, err)
	assert.Equal(t, "tarsit.appointments", p.writer.Topic)
	require.NoError(t, p.Close())
}

func TestKafkaPublisherPingReportsUnreachableBroker(t *testing.T) {
	p, err := NewKafkaPublisher([]string{"127.0.0.1:1"}, "tarsit.appointments")
	require.NoError(t, err)
	defer p.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = p.Ping(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestLogPublisherNeverFails(t *testing.T) {
	p := NewLogPublisher(nil)
	require.NoError(t, p.Publish(context.Background(), Message{ID: "evt-1", Type: "appointment.created", Key: "appt-1", Body: []byte(`{}`)}))
	require.NoError(t, p.Close())
}
