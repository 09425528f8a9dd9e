package shared

import (
	"context"
	"time"

	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// Events acumula eventos durante la transacción; se publican solo después del commit.
type Events struct {
	list []ports.Event
}

// Add agrega un evento.
func (e *Events) Add(eventType, companyID, key string, payload any) {
	e.list = append(e.list, ports.Event{
		Type:       eventType,
		CompanyID:  companyID,
		Key:        key,
		Payload:    payload,
		OccurredAt: Now(),
	})
}

// Flush publica lo acumulado. Un fallo se registra como warning y no se propaga.
func (e *Events) Flush(ctx context.Context, pub ports.EventPublisher, log *logger.Logger) {
	if pub == nil || len(e.list) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := pub.Publish(ctx, e.list...); err != nil {
		log.Warn().Err(err).Int("events", len(e.list)).Str("type", e.list[0].Type).Msg("no se pudieron publicar eventos de dominio")
	}
	e.list = nil
}
