package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// PurchaseOrderRepository persistencia de órdenes de compra con sus líneas.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	// Update guarda estado, aprobador y lo recibido de cada línea.
	Update(ctx context.Context, order *entity.PurchaseOrder) error
	List(ctx context.Context, f OrderFilter) ([]*entity.PurchaseOrder, error)
}

// GoodsReceiptRepository recepciones de mercancía.
type GoodsReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.GoodsReceipt) error
	ListByPurchaseOrder(ctx context.Context, companyID, purchaseOrderID string) ([]*entity.GoodsReceipt, error)
}
