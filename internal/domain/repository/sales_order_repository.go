package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// OrderFilter filtros comunes de listados de órdenes.
type OrderFilter struct {
	CompanyID string
	Status    string
	Limit     int
	Offset    int
}

// SalesOrderRepository persistencia de órdenes de venta con sus líneas.
type SalesOrderRepository interface {
	Create(ctx context.Context, order *entity.SalesOrder) error
	GetByID(ctx context.Context, companyID, id string) (*entity.SalesOrder, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.SalesOrder, error)
	// Update guarda estado, totales y el despachado de cada línea.
	Update(ctx context.Context, order *entity.SalesOrder) error
	List(ctx context.Context, f OrderFilter) ([]*entity.SalesOrder, error)
}

// ShipmentRepository despachos de órdenes de venta.
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *entity.Shipment) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Shipment, error)
	ListBySalesOrder(ctx context.Context, companyID, salesOrderID string) ([]*entity.Shipment, error)
}
