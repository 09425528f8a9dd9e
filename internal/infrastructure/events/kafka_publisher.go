// Package events publica los eventos de dominio en Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"

	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/pkg/config"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// messageWriter lo que se usa de *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// envelope formato JSON del valor del mensaje.
type envelope struct {
	Type       string    `json:"type"`
	CompanyID  string    `json:"company_id"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// KafkaPublisher escribe eventos en un tópico. Tras fallos consecutivos el breaker se abre
// y los eventos se descartan sin esperar al broker hasta que vuelva a semiabrirse.
type KafkaPublisher struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewKafkaPublisher construye el publicador sobre los brokers configurados.
func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return newKafkaPublisher(w, log)
}

func newKafkaPublisher(w messageWriter, log *logger.Logger) *KafkaPublisher {
	st := gobreaker.Settings{
		Name:        "kafka-events",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del circuit breaker")
		},
	}
	return &KafkaPublisher{writer: w, breaker: gobreaker.NewCircuitBreaker[struct{}](st)}
}

// Publish escribe los eventos en un solo lote. La llave del mensaje es Event.Key
// para que los eventos de una misma entidad caigan en la misma partición.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...ports.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(envelope{
			Type:       e.Type,
			CompanyID:  e.CompanyID,
			Key:        e.Key,
			Payload:    e.Payload,
			OccurredAt: e.OccurredAt,
		})
		if err != nil {
			return fmt.Errorf("events: codificar %s: %w", e.Type, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.Key),
			Value: value,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(e.Type)},
				{Key: "company_id", Value: []byte(e.CompanyID)},
			},
			Time: e.OccurredAt,
		})
	}

	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msgs...)
	})
	if err != nil {
		return fmt.Errorf("events: publicar %d eventos: %w", len(msgs), err)
	}
	return nil
}

// Close libera el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
