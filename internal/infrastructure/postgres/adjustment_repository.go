package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var (
	_ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)
	_ repository.TransferRepository   = (*TransferRepo)(nil)
)

const adjustmentSelect = `
	SELECT id, company_id, number, COALESCE(stock_item_id::text, ''), product_id, warehouse_id,
	       COALESCE(location_id::text, ''), batch_number, serial_number, expiry_date,
	       quantity_before, quantity_after, unit_cost, reason, status, requested_by,
	       COALESCE(approved_by::text, ''), approved_at, created_at, updated_at
	FROM inventory_adjustments`

// AdjustmentRepo ajustes de inventario sobre PostgreSQL.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador de ajustes.
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

func (r *AdjustmentRepo) Create(ctx context.Context, a *entity.InventoryAdjustment) error {
	query := `
		INSERT INTO inventory_adjustments (id, company_id, number, stock_item_id, product_id, warehouse_id,
			location_id, batch_number, serial_number, expiry_date, quantity_before, quantity_after, unit_cost,
			reason, status, requested_by, approved_by, approved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.CompanyID, a.Number, nullable(a.StockItemID), a.ProductID, a.WarehouseID,
		nullable(a.LocationID), a.BatchNumber, a.SerialNumber, a.ExpiryDate, a.QuantityBefore, a.QuantityAfter, a.UnitCost,
		a.Reason, a.Status, a.RequestedBy, nullable(a.ApprovedBy), a.ApprovedAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert adjustment: %w", err)
	}
	return nil
}

func (r *AdjustmentRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.InventoryAdjustment, error) {
	a, err := scanAdjustment(r.q.QueryRow(ctx, adjustmentSelect+` WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}
	return a, nil
}

func (r *AdjustmentRepo) Update(ctx context.Context, a *entity.InventoryAdjustment) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_adjustments
		SET stock_item_id = $3, status = $4, approved_by = $5, approved_at = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2`,
		a.CompanyID, a.ID, nullable(a.StockItemID), a.Status, nullable(a.ApprovedBy), a.ApprovedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update adjustment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AdjustmentRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.InventoryAdjustment, error) {
	query := adjustmentSelect + `
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC LIMIT NULLIF($3, 0) OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.CompanyID, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	return collect(rows, scanAdjustment)
}

func scanAdjustment(s scanner) (*entity.InventoryAdjustment, error) {
	var a entity.InventoryAdjustment
	err := s.Scan(
		&a.ID, &a.CompanyID, &a.Number, &a.StockItemID, &a.ProductID, &a.WarehouseID,
		&a.LocationID, &a.BatchNumber, &a.SerialNumber, &a.ExpiryDate,
		&a.QuantityBefore, &a.QuantityAfter, &a.UnitCost, &a.Reason, &a.Status, &a.RequestedBy,
		&a.ApprovedBy, &a.ApprovedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const transferSelect = `
	SELECT id, company_id, number, source_stock_item_id, product_id, from_warehouse_id,
	       COALESCE(from_location_id::text, ''), to_warehouse_id, COALESCE(to_location_id::text, ''),
	       COALESCE(dest_stock_item_id::text, ''), quantity, status, notes, requested_by,
	       COALESCE(approved_by::text, ''), completed_at, created_at, updated_at
	FROM stock_transfers`

// TransferRepo traslados sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traslados.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

func (r *TransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (id, company_id, number, source_stock_item_id, product_id, from_warehouse_id,
			from_location_id, to_warehouse_id, to_location_id, dest_stock_item_id, quantity, status, notes,
			requested_by, approved_by, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.CompanyID, t.Number, t.SourceStockItemID, t.ProductID, t.FromWarehouseID,
		nullable(t.FromLocationID), t.ToWarehouseID, nullable(t.ToLocationID), nullable(t.DestStockItemID),
		t.Quantity, t.Status, t.Notes, t.RequestedBy, nullable(t.ApprovedBy), t.CompletedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockTransfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, transferSelect+` WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

func (r *TransferRepo) Update(ctx context.Context, t *entity.StockTransfer) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_transfers
		SET dest_stock_item_id = $3, status = $4, approved_by = $5, completed_at = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2`,
		t.CompanyID, t.ID, nullable(t.DestStockItemID), t.Status, nullable(t.ApprovedBy), t.CompletedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TransferRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.StockTransfer, error) {
	query := transferSelect + `
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC LIMIT NULLIF($3, 0) OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.CompanyID, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	return collect(rows, scanTransfer)
}

func scanTransfer(s scanner) (*entity.StockTransfer, error) {
	var t entity.StockTransfer
	err := s.Scan(
		&t.ID, &t.CompanyID, &t.Number, &t.SourceStockItemID, &t.ProductID, &t.FromWarehouseID,
		&t.FromLocationID, &t.ToWarehouseID, &t.ToLocationID,
		&t.DestStockItemID, &t.Quantity, &t.Status, &t.Notes, &t.RequestedBy,
		&t.ApprovedBy, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
