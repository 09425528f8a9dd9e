package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la orden de venta.
const (
	SalesOrderDraft              = "DRAFT"
	SalesOrderConfirmed          = "CONFIRMED"
	SalesOrderPartiallyFulfilled = "PARTIALLY_FULFILLED"
	SalesOrderFulfilled          = "FULFILLED"
	SalesOrderCancelled          = "CANCELLED"
)

var salesOrderTransitions = map[string][]string{
	SalesOrderDraft:              {SalesOrderConfirmed, SalesOrderCancelled},
	SalesOrderConfirmed:          {SalesOrderPartiallyFulfilled, SalesOrderFulfilled, SalesOrderCancelled},
	SalesOrderPartiallyFulfilled: {SalesOrderPartiallyFulfilled, SalesOrderFulfilled, SalesOrderCancelled},
}

// SalesOrder cabecera de una orden de venta. Las líneas se despachan desde una sola bodega.
type SalesOrder struct {
	ID           string
	CompanyID    string
	Number       string
	CustomerName string
	WarehouseID  string
	Status       string
	Notes        string
	Total        decimal.Decimal
	Items        []*SalesOrderItem
	CreatedBy    string
	ConfirmedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SalesOrderItem línea de la orden. ShippedQuantity acumula los despachos.
type SalesOrderItem struct {
	ID              string
	SalesOrderID    string
	ProductID       string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	ShippedQuantity decimal.Decimal
}

// Pending cantidad aún no despachada.
func (i *SalesOrderItem) Pending() decimal.Decimal {
	return i.Quantity.Sub(i.ShippedQuantity)
}

// CanTransition informa si la orden puede pasar al estado indicado.
func (o *SalesOrder) CanTransition(to string) bool {
	return allowed(salesOrderTransitions, o.Status, to)
}

// FulfillmentStatus calcula el estado según lo despachado.
func (o *SalesOrder) FulfillmentStatus() string {
	shipped, pending := false, false
	for _, it := range o.Items {
		if it.ShippedQuantity.IsPositive() {
			shipped = true
		}
		if it.Pending().IsPositive() {
			pending = true
		}
	}
	switch {
	case !pending:
		return SalesOrderFulfilled
	case shipped:
		return SalesOrderPartiallyFulfilled
	default:
		return SalesOrderConfirmed
	}
}

// ItemByID busca una línea por ID.
func (o *SalesOrder) ItemByID(id string) *SalesOrderItem {
	for _, it := range o.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func allowed(table map[string][]string, from, to string) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}
