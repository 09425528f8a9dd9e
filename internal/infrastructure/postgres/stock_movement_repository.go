package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo kardex append-only sobre PostgreSQL.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del kardex.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, company_id, stock_item_id, product_id, warehouse_id, location_id,
			batch_number, serial_number, type, quantity, quantity_before, quantity_after, unit_cost,
			reference_type, reference_id, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.StockItemID, m.ProductID, m.WarehouseID, nullable(m.LocationID),
		m.BatchNumber, m.SerialNumber, m.Type, m.Quantity, m.QuantityBefore, m.QuantityAfter, m.UnitCost,
		m.ReferenceType, m.ReferenceID, m.Notes, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// List movimientos más recientes primero y el total que cumple el filtro (para paginar).
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	where := movementWhere(f)

	countSQL, countArgs, err := dialect.From("stock_movements").
		Select(goqu.COUNT("*")).Where(where...).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build movement count: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	ds := dialect.From("stock_movements").Select(
		"id", "company_id", "stock_item_id", "product_id", "warehouse_id",
		goqu.COALESCE(goqu.L("location_id::text"), "").As("location_id"),
		"batch_number", "serial_number", "type", "quantity", "quantity_before", "quantity_after", "unit_cost",
		"reference_type", "reference_id", "notes", "created_by", "created_at",
	).Where(where...).Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit))
	}
	if f.Offset > 0 {
		ds = ds.Offset(uint(f.Offset))
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build movement list: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	list, err := collect(rows, func(s scanner) (*entity.StockMovement, error) {
		var m entity.StockMovement
		err := s.Scan(
			&m.ID, &m.CompanyID, &m.StockItemID, &m.ProductID, &m.WarehouseID, &m.LocationID,
			&m.BatchNumber, &m.SerialNumber, &m.Type, &m.Quantity, &m.QuantityBefore, &m.QuantityAfter, &m.UnitCost,
			&m.ReferenceType, &m.ReferenceID, &m.Notes, &m.CreatedBy, &m.CreatedAt,
		)
		return &m, err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan movements: %w", err)
	}
	return list, total, nil
}

func movementWhere(f repository.MovementFilter) []exp.Expression {
	where := []exp.Expression{goqu.C("company_id").Eq(f.CompanyID)}
	if f.ProductID != "" {
		where = append(where, goqu.C("product_id").Eq(f.ProductID))
	}
	if f.WarehouseID != "" {
		where = append(where, goqu.C("warehouse_id").Eq(f.WarehouseID))
	}
	if f.Type != "" {
		where = append(where, goqu.C("type").Eq(f.Type))
	}
	if f.From != nil {
		where = append(where, goqu.C("created_at").Gte(*f.From))
	}
	if f.To != nil {
		where = append(where, goqu.C("created_at").Lte(*f.To))
	}
	return where
}
