package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// AdjustmentRepository ajustes de inventario.
type AdjustmentRepository interface {
	Create(ctx context.Context, a *entity.InventoryAdjustment) error
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.InventoryAdjustment, error)
	Update(ctx context.Context, a *entity.InventoryAdjustment) error
	List(ctx context.Context, f OrderFilter) ([]*entity.InventoryAdjustment, error)
}

// TransferRepository traslados entre bodegas o ubicaciones.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.StockTransfer) error
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockTransfer, error)
	Update(ctx context.Context, t *entity.StockTransfer) error
	List(ctx context.Context, f OrderFilter) ([]*entity.StockTransfer, error)
}
