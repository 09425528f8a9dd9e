package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes y tablero.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

func stockReportDataset() *goqu.SelectDataset {
	return dialect.From(goqu.T("stock_items").As("s")).
		Join(goqu.T("products").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("s.product_id")))).
		Join(goqu.T("warehouses").As("w"), goqu.On(goqu.I("w.id").Eq(goqu.I("s.warehouse_id")))).
		Select(
			"s.id", "s.product_id", "p.sku", "p.name", "s.warehouse_id", "w.name",
			goqu.COALESCE(goqu.L("s.location_id::text"), ""),
			"s.batch_number", "s.serial_number", "s.expiry_date", "s.status",
			"s.quantity", "s.reserved_quantity", goqu.L("s.quantity - s.reserved_quantity"),
		)
}

// StockOnHand existencias por bucket (cantidad distinta de cero) con filtros opcionales.
func (r *ReportRepo) StockOnHand(ctx context.Context, f repository.StockReportFilter) ([]repository.StockReportRow, error) {
	ds := stockReportDataset().
		Where(goqu.I("s.company_id").Eq(f.CompanyID), goqu.I("s.quantity").Neq(0)).
		Order(goqu.I("p.sku").Asc(), goqu.I("w.name").Asc(), goqu.I("s.id").Asc())
	if f.WarehouseID != "" {
		ds = ds.Where(goqu.I("s.warehouse_id").Eq(f.WarehouseID))
	}
	if f.ProductID != "" {
		ds = ds.Where(goqu.I("s.product_id").Eq(f.ProductID))
	}
	if f.LocationID != "" {
		ds = ds.Where(goqu.I("s.location_id").Eq(f.LocationID))
	}
	if f.Status != "" {
		ds = ds.Where(goqu.I("s.status").Eq(f.Status))
	}
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit))
	}
	if f.Offset > 0 {
		ds = ds.Offset(uint(f.Offset))
	}
	return r.stockRows(ctx, ds, "stock on hand")
}

// Expiring buckets con existencias cuyo vencimiento es anterior a before.
func (r *ReportRepo) Expiring(ctx context.Context, companyID string, before time.Time) ([]repository.StockReportRow, error) {
	ds := stockReportDataset().
		Where(
			goqu.I("s.company_id").Eq(companyID),
			goqu.I("s.quantity").Gt(0),
			goqu.I("s.expiry_date").IsNotNull(),
			goqu.I("s.expiry_date").Lt(before),
		).
		Order(goqu.I("s.expiry_date").Asc(), goqu.I("s.id").Asc())
	return r.stockRows(ctx, ds, "expiring stock")
}

func (r *ReportRepo) stockRows(ctx context.Context, ds *goqu.SelectDataset, what string) ([]repository.StockReportRow, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", what, err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", what, err)
	}
	defer rows.Close()
	var out []repository.StockReportRow
	for rows.Next() {
		var row repository.StockReportRow
		if err := rows.Scan(
			&row.StockItemID, &row.ProductID, &row.SKU, &row.ProductName, &row.WarehouseID, &row.WarehouseName,
			&row.LocationID, &row.BatchNumber, &row.SerialNumber, &row.ExpiryDate, &row.Status,
			&row.Quantity, &row.Reserved, &row.Available,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Valuation Σ cantidad × costo promedio del producto, por bodega.
func (r *ReportRepo) Valuation(ctx context.Context, companyID string) ([]repository.ValuationRow, error) {
	const query = `
	SELECT w.id, w.name, COALESCE(SUM(s.quantity), 0), COALESCE(SUM(s.quantity * p.cost), 0)
	FROM stock_items s
	JOIN products   p ON p.id = s.product_id
	JOIN warehouses w ON w.id = s.warehouse_id
	WHERE s.company_id = $1
	GROUP BY w.id, w.name
	ORDER BY w.name`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("report valuation: %w", err)
	}
	defer rows.Close()
	var out []repository.ValuationRow
	for rows.Next() {
		var row repository.ValuationRow
		if err := rows.Scan(&row.WarehouseID, &row.WarehouseName, &row.Quantity, &row.Value); err != nil {
			return nil, fmt.Errorf("scan valuation: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// BelowReorderPoint productos con punto de reorden cuyo stock está por debajo.
// UnitsSold = unidades despachadas desde since (los SALES_SHIPMENT se guardan en negativo).
func (r *ReportRepo) BelowReorderPoint(ctx context.Context, companyID, warehouseID string, since time.Time) ([]repository.ReorderCandidate, error) {
	const query = `
	WITH on_hand AS (
	    SELECT product_id, SUM(quantity) AS qty
	    FROM stock_items
	    WHERE company_id = $1 AND ($2 = '' OR warehouse_id::text = $2)
	    GROUP BY product_id
	), sold AS (
	    SELECT product_id, -SUM(quantity) AS qty
	    FROM stock_movements
	    WHERE company_id = $1 AND type = 'SALES_SHIPMENT' AND created_at >= $3
	      AND ($2 = '' OR warehouse_id::text = $2)
	    GROUP BY product_id
	)
	SELECT p.id, p.sku, p.name, COALESCE(oh.qty, 0), p.reorder_point, p.cost, p.price, COALESCE(sd.qty, 0)
	FROM products p
	LEFT JOIN on_hand oh ON oh.product_id = p.id
	LEFT JOIN sold    sd ON sd.product_id = p.id
	WHERE p.company_id = $1 AND p.reorder_point > 0 AND COALESCE(oh.qty, 0) < p.reorder_point
	ORDER BY p.sku`
	rows, err := r.q.Query(ctx, query, companyID, warehouseID, since)
	if err != nil {
		return nil, fmt.Errorf("report reorder: %w", err)
	}
	defer rows.Close()
	var out []repository.ReorderCandidate
	for rows.Next() {
		var c repository.ReorderCandidate
		if err := rows.Scan(&c.ProductID, &c.SKU, &c.Name, &c.OnHand, &c.ReorderPoint, &c.Cost, &c.Price, &c.UnitsSold); err != nil {
			return nil, fmt.Errorf("scan reorder: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Dashboard contadores del tablero en una sola ida a la base.
func (r *ReportRepo) Dashboard(ctx context.Context, companyID string) (*repository.DashboardCounts, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*) FROM approval_requests WHERE company_id = $1 AND status = 'PENDING'),
	    (SELECT COUNT(*) FROM sales_orders WHERE company_id = $1 AND status IN ('CONFIRMED', 'PARTIALLY_FULFILLED')),
	    (SELECT COUNT(*) FROM purchase_orders
	      WHERE company_id = $1 AND status IN ('PENDING_APPROVAL', 'APPROVED', 'PARTIALLY_RECEIVED')),
	    (SELECT COUNT(*) FROM products p
	      WHERE p.company_id = $1 AND p.reorder_point > 0
	        AND COALESCE((SELECT SUM(s.quantity) FROM stock_items s WHERE s.product_id = p.id), 0) < p.reorder_point),
	    (SELECT COALESCE(SUM(s.quantity * p.cost), 0)
	       FROM stock_items s JOIN products p ON p.id = s.product_id WHERE s.company_id = $1)`
	c := &repository.DashboardCounts{StockValue: decimal.Zero}
	err := r.q.QueryRow(ctx, query, companyID).Scan(
		&c.PendingApprovals, &c.OpenSalesOrders, &c.OpenPurchaseOrders, &c.LowStockProducts, &c.StockValue,
	)
	if err != nil {
		return nil, fmt.Errorf("report dashboard: %w", err)
	}
	return c, nil
}
