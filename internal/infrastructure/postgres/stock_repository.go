package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

const stockItemSelect = `
	SELECT id, company_id, product_id, warehouse_id, COALESCE(location_id::text, ''), batch_number, serial_number,
	       expiry_date, quantity, reserved_quantity, unit_cost, status, created_at, updated_at
	FROM stock_items`

// StockItemRepo buckets del ledger sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador de buckets.
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

func (r *StockItemRepo) Create(ctx context.Context, s *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (id, company_id, product_id, warehouse_id, location_id, batch_number, serial_number,
			expiry_date, quantity, reserved_quantity, unit_cost, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.CompanyID, s.ProductID, s.WarehouseID, nullable(s.LocationID), s.BatchNumber, s.SerialNumber,
		s.ExpiryDate, s.Quantity, s.ReservedQuantity, s.UnitCost, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

func (r *StockItemRepo) GetByID(ctx context.Context, companyID, id string) (*entity.StockItem, error) {
	return r.getOne(ctx, stockItemSelect+` WHERE company_id = $1 AND id = $2`, companyID, id)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
func (r *StockItemRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockItem, error) {
	return r.getOne(ctx, stockItemSelect+` WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
}

func (r *StockItemRepo) FindByKeyForUpdate(ctx context.Context, companyID string, key entity.BucketKey) (*entity.StockItem, error) {
	query := stockItemSelect + `
		WHERE company_id = $1 AND product_id = $2 AND warehouse_id = $3
		  AND location_id IS NOT DISTINCT FROM $4::uuid
		  AND batch_number = $5 AND serial_number = $6
		FOR UPDATE`
	return r.getOne(ctx, query,
		companyID, key.ProductID, key.WarehouseID, nullable(key.LocationID), key.BatchNumber, key.SerialNumber,
	)
}

func (r *StockItemRepo) Save(ctx context.Context, s *entity.StockItem) error {
	if !s.Valid() {
		return domain.ErrInvalidInput
	}
	query := `
		UPDATE stock_items
		SET quantity = $3, reserved_quantity = $4, unit_cost = $5, status = $6, expiry_date = $7, updated_at = $8
		WHERE company_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		s.CompanyID, s.ID, s.Quantity, s.ReservedQuantity, s.UnitCost, s.Status, s.ExpiryDate, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TryReserve update optimista: solo aplica si el reservado sigue siendo expectedReserved.
func (r *StockItemRepo) TryReserve(ctx context.Context, companyID, id string, expectedReserved, qty decimal.Decimal) (bool, error) {
	query := `
		UPDATE stock_items
		SET reserved_quantity = reserved_quantity + $4, updated_at = now()
		WHERE company_id = $1 AND id = $2
		  AND reserved_quantity = $3
		  AND quantity - reserved_quantity >= $4
		  AND status = 'AVAILABLE'`
	tag, err := r.q.Exec(ctx, query, companyID, id, expectedReserved, qty)
	if err != nil {
		return false, fmt.Errorf("reserve stock item: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_items WHERE company_id = $1 AND id = $2)`, companyID, id,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check stock item: %w", err)
	}
	if !exists {
		return false, domain.ErrNotFound
	}
	return false, nil
}

// ListAllocatable FEFO: vencimiento ascendente (sin vencimiento al final) y luego antigüedad.
func (r *StockItemRepo) ListAllocatable(ctx context.Context, companyID, productID, warehouseID string) ([]*entity.StockItem, error) {
	query := stockItemSelect + `
		WHERE company_id = $1 AND product_id = $2
		  AND ($3 = '' OR warehouse_id::text = $3)
		  AND status = 'AVAILABLE' AND quantity - reserved_quantity > 0
		ORDER BY expiry_date ASC NULLS LAST, created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, companyID, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list allocatable: %w", err)
	}
	return collect(rows, scanStockItem)
}

func (r *StockItemRepo) ListByProduct(ctx context.Context, companyID, productID, warehouseID string) ([]*entity.StockItem, error) {
	query := stockItemSelect + `
		WHERE company_id = $1 AND product_id = $2 AND ($3 = '' OR warehouse_id::text = $3)
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, companyID, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	return collect(rows, scanStockItem)
}

func (r *StockItemRepo) SumOnHand(ctx context.Context, companyID, productID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_items WHERE company_id = $1 AND product_id = $2`,
		companyID, productID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum on hand: %w", err)
	}
	return total, nil
}

func (r *StockItemRepo) SerialInStock(ctx context.Context, companyID, productID, serial string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM stock_items
			WHERE company_id = $1 AND product_id = $2 AND serial_number = $3 AND quantity > 0
		)`, companyID, productID, serial,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("serial in stock: %w", err)
	}
	return exists, nil
}

func (r *StockItemRepo) getOne(ctx context.Context, query string, args ...any) (*entity.StockItem, error) {
	s, err := scanStockItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return s, nil
}

func scanStockItem(sc scanner) (*entity.StockItem, error) {
	var s entity.StockItem
	err := sc.Scan(
		&s.ID, &s.CompanyID, &s.ProductID, &s.WarehouseID, &s.LocationID, &s.BatchNumber, &s.SerialNumber,
		&s.ExpiryDate, &s.Quantity, &s.ReservedQuantity, &s.UnitCost, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
