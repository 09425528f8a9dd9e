package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

const reservationSelect = `
	SELECT id, company_id, sales_order_id, sales_order_item_id, stock_item_id, seq, quantity, shipped_quantity,
	       status, created_at, updated_at
	FROM stock_reservations`

// ReservationRepo reservas de venta sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador de reservas.
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

func (r *ReservationRepo) Create(ctx context.Context, res *entity.StockReservation) error {
	query := `
		INSERT INTO stock_reservations (id, company_id, sales_order_id, sales_order_item_id, stock_item_id, seq,
			quantity, shipped_quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.CompanyID, res.SalesOrderID, res.SalesOrderItemID, res.StockItemID, res.Seq,
		res.Quantity, res.ShippedQuantity, res.Status, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepo) Update(ctx context.Context, res *entity.StockReservation) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_reservations SET shipped_quantity = $3, status = $4, updated_at = $5
		WHERE company_id = $1 AND id = $2`,
		res.CompanyID, res.ID, res.ShippedQuantity, res.Status, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReservationRepo) ListActiveByOrder(ctx context.Context, companyID, salesOrderID string) ([]*entity.StockReservation, error) {
	query := reservationSelect + `
		WHERE company_id = $1 AND sales_order_id = $2 AND status = 'ACTIVE'
		ORDER BY seq, id`
	rows, err := r.q.Query(ctx, query, companyID, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return collect(rows, func(s scanner) (*entity.StockReservation, error) {
		var res entity.StockReservation
		err := s.Scan(
			&res.ID, &res.CompanyID, &res.SalesOrderID, &res.SalesOrderItemID, &res.StockItemID, &res.Seq,
			&res.Quantity, &res.ShippedQuantity, &res.Status, &res.CreatedAt, &res.UpdatedAt,
		)
		return &res, err
	})
}

func (r *ReservationRepo) CountActiveByStockItem(ctx context.Context, companyID, stockItemID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM stock_reservations WHERE company_id = $1 AND stock_item_id = $2 AND status = 'ACTIVE'`,
		companyID, stockItemID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	return n, nil
}
