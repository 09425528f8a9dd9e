package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// StockItemRepository puerto del ledger de buckets.
// Las lecturas ForUpdate bloquean la fila (SELECT FOR UPDATE) y solo tienen sentido dentro de una tx.
type StockItemRepository interface {
	Create(ctx context.Context, item *entity.StockItem) error
	GetByID(ctx context.Context, companyID, id string) (*entity.StockItem, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockItem, error)
	// FindByKeyForUpdate busca el bucket exacto (producto, bodega, ubicación, lote, serial).
	FindByKeyForUpdate(ctx context.Context, companyID string, key entity.BucketKey) (*entity.StockItem, error)
	// Save persiste cantidad, reservado, costo, estado y vencimiento.
	Save(ctx context.Context, item *entity.StockItem) error
	// TryReserve suma qty al reservado solo si sigue valiendo expectedReserved y hay disponible.
	// Devuelve false si otra operación cambió la fila.
	TryReserve(ctx context.Context, companyID, id string, expectedReserved, qty decimal.Decimal) (bool, error)
	// ListAllocatable buckets AVAILABLE con disponible > 0 en orden FEFO.
	ListAllocatable(ctx context.Context, companyID, productID, warehouseID string) ([]*entity.StockItem, error)
	// ListByProduct buckets de un producto; warehouseID vacío = todas las bodegas.
	ListByProduct(ctx context.Context, companyID, productID, warehouseID string) ([]*entity.StockItem, error)
	// SumOnHand cantidad total en mano del producto en toda la empresa.
	SumOnHand(ctx context.Context, companyID, productID string) (decimal.Decimal, error)
	// SerialInStock indica si el serial ya existe con cantidad > 0.
	SerialInStock(ctx context.Context, companyID, productID, serial string) (bool, error)
}
