package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

type fakeWriter struct {
	calls int
	msgs  []kafka.Message
	err   error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.calls++
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_MensajeConLlaveYHeaders(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, logger.Nop())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), ports.Event{
		Type:       ports.EventStockMoved,
		CompanyID:  "c1",
		Key:        "prod-1",
		Payload:    map[string]string{"movement_id": "m1"},
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "prod-1", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, ports.EventStockMoved, string(msg.Headers[0].Value))

	var env map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "c1", env["company_id"])
	assert.Equal(t, "m1", env["payload"].(map[string]any)["movement_id"])
}

func TestKafkaPublisher_SinEventosNoEscribe(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, logger.Nop())
	require.NoError(t, p.Publish(context.Background()))
	assert.Zero(t, w.calls)
}

func TestKafkaPublisher_BreakerSeAbreTrasFallos(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	p := newKafkaPublisher(w, logger.Nop())
	ev := ports.Event{Type: ports.EventApprovalResolved, CompanyID: "c1", Key: "a1"}

	for i := 0; i < 3; i++ {
		require.Error(t, p.Publish(context.Background(), ev))
	}
	assert.Equal(t, 3, w.calls)

	err := p.Publish(context.Background(), ev)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, w.calls, "con el breaker abierto no se llama al broker")
}
