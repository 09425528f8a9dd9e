package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var (
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
	_ repository.GoodsReceiptRepository  = (*ReceiptRepo)(nil)
)

const purchaseOrderSelect = `
	SELECT id, company_id, number, supplier_name, warehouse_id, status, notes, total, created_by,
	       COALESCE(approved_by::text, ''), created_at, updated_at
	FROM purchase_orders`

// PurchaseOrderRepo órdenes de compra con sus líneas.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador de órdenes de compra.
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (id, company_id, number, supplier_name, warehouse_id, status, notes, total,
			created_by, approved_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.CompanyID, o.Number, o.SupplierName, o.WarehouseID, o.Status, o.Notes, o.Total,
		o.CreatedBy, nullable(o.ApprovedBy), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for i, it := range o.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_order_items (id, purchase_order_id, product_id, quantity, unit_cost, received_quantity, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, o.ID, it.ProductID, it.Quantity, it.UnitCost, it.ReceivedQuantity, i,
		)
		if err != nil {
			return fmt.Errorf("insert purchase order item: %w", err)
		}
	}
	return nil
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, purchaseOrderSelect+` WHERE company_id = $1 AND id = $2`, companyID, id)
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, purchaseOrderSelect+` WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
}

func (r *PurchaseOrderRepo) Update(ctx context.Context, o *entity.PurchaseOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET status = $3, notes = $4, total = $5, approved_by = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2`,
		o.CompanyID, o.ID, o.Status, o.Notes, o.Total, nullable(o.ApprovedBy), o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	for _, it := range o.Items {
		if _, err := r.q.Exec(ctx,
			`UPDATE purchase_order_items SET received_quantity = $3 WHERE purchase_order_id = $1 AND id = $2`,
			o.ID, it.ID, it.ReceivedQuantity,
		); err != nil {
			return fmt.Errorf("update purchase order item: %w", err)
		}
	}
	return nil
}

func (r *PurchaseOrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.PurchaseOrder, error) {
	query := purchaseOrderSelect + `
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC LIMIT NULLIF($3, 0) OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.CompanyID, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	list, err := collect(rows, scanPurchaseOrder)
	if err != nil {
		return nil, fmt.Errorf("scan purchase orders: %w", err)
	}
	for _, o := range list {
		if o.Items, err = r.items(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *PurchaseOrderRepo) get(ctx context.Context, query string, args ...any) (*entity.PurchaseOrder, error) {
	o, err := scanPurchaseOrder(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PurchaseOrderRepo) items(ctx context.Context, orderID string) ([]*entity.PurchaseOrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_order_id, product_id, quantity, unit_cost, received_quantity
		FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list purchase order items: %w", err)
	}
	return collect(rows, func(s scanner) (*entity.PurchaseOrderItem, error) {
		var it entity.PurchaseOrderItem
		err := s.Scan(&it.ID, &it.PurchaseOrderID, &it.ProductID, &it.Quantity, &it.UnitCost, &it.ReceivedQuantity)
		return &it, err
	})
}

func scanPurchaseOrder(s scanner) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	err := s.Scan(
		&o.ID, &o.CompanyID, &o.Number, &o.SupplierName, &o.WarehouseID, &o.Status, &o.Notes, &o.Total,
		&o.CreatedBy, &o.ApprovedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ReceiptRepo recepciones de mercancía con sus líneas.
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador de recepciones.
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

func (r *ReceiptRepo) Create(ctx context.Context, g *entity.GoodsReceipt) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO goods_receipts (id, company_id, number, purchase_order_id, warehouse_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, g.CompanyID, g.Number, g.PurchaseOrderID, g.WarehouseID, g.CreatedBy, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert goods receipt: %w", err)
	}
	for i, l := range g.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO goods_receipt_lines (id, goods_receipt_id, purchase_order_item_id, stock_item_id, product_id,
				location_id, batch_number, serial_number, expiry_date, quantity, unit_cost, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			l.ID, g.ID, l.PurchaseOrderItemID, l.StockItemID, l.ProductID,
			nullable(l.LocationID), l.BatchNumber, l.SerialNumber, l.ExpiryDate, l.Quantity, l.UnitCost, i,
		)
		if err != nil {
			return fmt.Errorf("insert goods receipt line: %w", err)
		}
	}
	return nil
}

func (r *ReceiptRepo) ListByPurchaseOrder(ctx context.Context, companyID, purchaseOrderID string) ([]*entity.GoodsReceipt, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, number, purchase_order_id, warehouse_id, created_by, created_at
		FROM goods_receipts WHERE company_id = $1 AND purchase_order_id = $2
		ORDER BY created_at, number`, companyID, purchaseOrderID)
	if err != nil {
		return nil, fmt.Errorf("list goods receipts: %w", err)
	}
	list, err := collect(rows, func(s scanner) (*entity.GoodsReceipt, error) {
		var g entity.GoodsReceipt
		err := s.Scan(&g.ID, &g.CompanyID, &g.Number, &g.PurchaseOrderID, &g.WarehouseID, &g.CreatedBy, &g.CreatedAt)
		return &g, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan goods receipts: %w", err)
	}
	for _, g := range list {
		if g.Lines, err = r.lines(ctx, g.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *ReceiptRepo) lines(ctx context.Context, receiptID string) ([]*entity.GoodsReceiptLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, goods_receipt_id, purchase_order_item_id, stock_item_id, product_id,
		       COALESCE(location_id::text, ''), batch_number, serial_number, expiry_date, quantity, unit_cost
		FROM goods_receipt_lines WHERE goods_receipt_id = $1 ORDER BY position`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("list goods receipt lines: %w", err)
	}
	return collect(rows, func(s scanner) (*entity.GoodsReceiptLine, error) {
		var l entity.GoodsReceiptLine
		err := s.Scan(
			&l.ID, &l.GoodsReceiptID, &l.PurchaseOrderItemID, &l.StockItemID, &l.ProductID,
			&l.LocationID, &l.BatchNumber, &l.SerialNumber, &l.ExpiryDate, &l.Quantity, &l.UnitCost,
		)
		return &l, err
	})
}
