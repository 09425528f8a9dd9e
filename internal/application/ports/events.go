package ports

import (
	"context"
	"time"
)

// Tipos de evento de dominio publicados tras el commit.
const (
	EventStockMoved          = "stock.moved"
	EventSalesOrderStatus    = "sales_order.status_changed"
	EventPurchaseOrderStatus = "purchase_order.status_changed"
	EventApprovalResolved    = "approval.resolved"
)

// Event evento de dominio. Key agrupa por entidad para conservar el orden en la partición.
type Event struct {
	Type       string
	CompanyID  string
	Key        string
	Payload    any
	OccurredAt time.Time
}

// EventPublisher publica eventos de dominio. Un fallo no revierte la operación ya confirmada.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NoopPublisher descarta los eventos (sin brokers configurados).
type NoopPublisher struct{}

// Publish no hace nada.
func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }
