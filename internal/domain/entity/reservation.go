package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva.
const (
	ReservationActive   = "ACTIVE"
	ReservationConsumed = "CONSUMED"
	ReservationReleased = "RELEASED"
)

// StockReservation cantidad apartada de un bucket para una línea de venta.
type StockReservation struct {
	ID               string
	CompanyID        string
	SalesOrderID     string
	SalesOrderItemID string
	StockItemID      string
	Seq              int // posición en el plan FEFO de la orden; Ship consume en este orden
	Quantity         decimal.Decimal
	ShippedQuantity  decimal.Decimal
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Remaining cantidad reservada aún no despachada.
func (r *StockReservation) Remaining() decimal.Decimal {
	return r.Quantity.Sub(r.ShippedQuantity)
}
