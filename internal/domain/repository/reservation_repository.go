package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// ReservationRepository reservas que respaldan las líneas de venta.
type ReservationRepository interface {
	Create(ctx context.Context, r *entity.StockReservation) error
	Update(ctx context.Context, r *entity.StockReservation) error
	// ListActiveByOrder reservas ACTIVE de la orden en orden de creación.
	ListActiveByOrder(ctx context.Context, companyID, salesOrderID string) ([]*entity.StockReservation, error)
	CountActiveByStockItem(ctx context.Context, companyID, stockItemID string) (int, error)
}
