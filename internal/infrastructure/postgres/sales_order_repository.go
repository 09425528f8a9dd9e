package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var (
	_ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)
	_ repository.ShipmentRepository   = (*ShipmentRepo)(nil)
)

const salesOrderSelect = `
	SELECT id, company_id, number, customer_name, warehouse_id, status, notes, total, created_by,
	       confirmed_at, created_at, updated_at
	FROM sales_orders`

// SalesOrderRepo órdenes de venta con sus líneas.
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador de órdenes de venta.
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

func (r *SalesOrderRepo) Create(ctx context.Context, o *entity.SalesOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales_orders (id, company_id, number, customer_name, warehouse_id, status, notes, total,
			created_by, confirmed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.CompanyID, o.Number, o.CustomerName, o.WarehouseID, o.Status, o.Notes, o.Total,
		o.CreatedBy, o.ConfirmedAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sales order: %w", err)
	}
	for i, it := range o.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sales_order_items (id, sales_order_id, product_id, quantity, unit_price, shipped_quantity, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, o.ID, it.ProductID, it.Quantity, it.UnitPrice, it.ShippedQuantity, i,
		)
		if err != nil {
			return fmt.Errorf("insert sales order item: %w", err)
		}
	}
	return nil
}

func (r *SalesOrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.SalesOrder, error) {
	return r.get(ctx, salesOrderSelect+` WHERE company_id = $1 AND id = $2`, companyID, id)
}

func (r *SalesOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.SalesOrder, error) {
	return r.get(ctx, salesOrderSelect+` WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
}

func (r *SalesOrderRepo) Update(ctx context.Context, o *entity.SalesOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales_orders SET status = $3, notes = $4, total = $5, confirmed_at = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2`,
		o.CompanyID, o.ID, o.Status, o.Notes, o.Total, o.ConfirmedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sales order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	for _, it := range o.Items {
		if _, err := r.q.Exec(ctx,
			`UPDATE sales_order_items SET shipped_quantity = $3 WHERE sales_order_id = $1 AND id = $2`,
			o.ID, it.ID, it.ShippedQuantity,
		); err != nil {
			return fmt.Errorf("update sales order item: %w", err)
		}
	}
	return nil
}

func (r *SalesOrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.SalesOrder, error) {
	query := salesOrderSelect + `
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC LIMIT NULLIF($3, 0) OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.CompanyID, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list sales orders: %w", err)
	}
	list, err := collect(rows, scanSalesOrder)
	if err != nil {
		return nil, fmt.Errorf("scan sales orders: %w", err)
	}
	for _, o := range list {
		if o.Items, err = r.items(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *SalesOrderRepo) get(ctx context.Context, query string, args ...any) (*entity.SalesOrder, error) {
	o, err := scanSalesOrder(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	if o.Items, err = r.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *SalesOrderRepo) items(ctx context.Context, orderID string) ([]*entity.SalesOrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sales_order_id, product_id, quantity, unit_price, shipped_quantity
		FROM sales_order_items WHERE sales_order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list sales order items: %w", err)
	}
	return collect(rows, func(s scanner) (*entity.SalesOrderItem, error) {
		var it entity.SalesOrderItem
		err := s.Scan(&it.ID, &it.SalesOrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.ShippedQuantity)
		return &it, err
	})
}

func scanSalesOrder(s scanner) (*entity.SalesOrder, error) {
	var o entity.SalesOrder
	err := s.Scan(
		&o.ID, &o.CompanyID, &o.Number, &o.CustomerName, &o.WarehouseID, &o.Status, &o.Notes, &o.Total,
		&o.CreatedBy, &o.ConfirmedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ShipmentRepo despachos con sus líneas por bucket.
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador de despachos.
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

func (r *ShipmentRepo) Create(ctx context.Context, sh *entity.Shipment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO shipments (id, company_id, number, sales_order_id, warehouse_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sh.ID, sh.CompanyID, sh.Number, sh.SalesOrderID, sh.WarehouseID, sh.CreatedBy, sh.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}
	for i, l := range sh.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO shipment_lines (id, shipment_id, sales_order_item_id, stock_item_id, product_id,
				batch_number, serial_number, quantity, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, sh.ID, l.SalesOrderItemID, l.StockItemID, l.ProductID, l.BatchNumber, l.SerialNumber, l.Quantity, i,
		)
		if err != nil {
			return fmt.Errorf("insert shipment line: %w", err)
		}
	}
	return nil
}

func (r *ShipmentRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Shipment, error) {
	rows, err := r.q.Query(ctx, shipmentSelect+` WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	list, err := r.withLines(ctx, rows)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *ShipmentRepo) ListBySalesOrder(ctx context.Context, companyID, salesOrderID string) ([]*entity.Shipment, error) {
	rows, err := r.q.Query(ctx,
		shipmentSelect+` WHERE company_id = $1 AND sales_order_id = $2 ORDER BY created_at, number`,
		companyID, salesOrderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	return r.withLines(ctx, rows)
}

const shipmentSelect = `SELECT id, company_id, number, sales_order_id, warehouse_id, created_by, created_at FROM shipments`

// withLines lee las cabeceras (cerrando rows) y luego carga las líneas de cada despacho.
func (r *ShipmentRepo) withLines(ctx context.Context, rows pgx.Rows) ([]*entity.Shipment, error) {
	list, err := collect(rows, func(s scanner) (*entity.Shipment, error) {
		var sh entity.Shipment
		err := s.Scan(&sh.ID, &sh.CompanyID, &sh.Number, &sh.SalesOrderID, &sh.WarehouseID, &sh.CreatedBy, &sh.CreatedAt)
		return &sh, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan shipment: %w", err)
	}
	for _, sh := range list {
		lines, err := r.q.Query(ctx, `
			SELECT id, shipment_id, sales_order_item_id, stock_item_id, product_id, batch_number, serial_number, quantity
			FROM shipment_lines WHERE shipment_id = $1 ORDER BY position`, sh.ID)
		if err != nil {
			return nil, fmt.Errorf("list shipment lines: %w", err)
		}
		sh.Lines, err = collect(lines, func(s scanner) (*entity.ShipmentLine, error) {
			var l entity.ShipmentLine
			err := s.Scan(&l.ID, &l.ShipmentID, &l.SalesOrderItemID, &l.StockItemID, &l.ProductID, &l.BatchNumber, &l.SerialNumber, &l.Quantity)
			return &l, err
		})
		if err != nil {
			return nil, fmt.Errorf("scan shipment lines: %w", err)
		}
	}
	return list, nil
}
