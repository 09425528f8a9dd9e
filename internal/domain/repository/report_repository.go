package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StockReportFilter filtros del reporte de existencias.
type StockReportFilter struct {
	CompanyID   string
	WarehouseID string
	ProductID   string
	LocationID  string
	Status      string
	Limit       int
	Offset      int
}

// StockReportRow fila de existencias por bucket.
type StockReportRow struct {
	StockItemID   string
	ProductID     string
	SKU           string
	ProductName   string
	WarehouseID   string
	WarehouseName string
	LocationID    string
	BatchNumber   string
	SerialNumber  string
	ExpiryDate    *time.Time
	Status        string
	Quantity      decimal.Decimal
	Reserved      decimal.Decimal
	Available     decimal.Decimal
}

// ValuationRow valor del inventario por bodega (cantidad × costo promedio del producto).
type ValuationRow struct {
	WarehouseID   string
	WarehouseName string
	Quantity      decimal.Decimal
	Value         decimal.Decimal
}

// ReorderCandidate producto bajo su punto de reorden.
type ReorderCandidate struct {
	ProductID    string
	SKU          string
	Name         string
	OnHand       decimal.Decimal
	ReorderPoint decimal.Decimal
	Cost         decimal.Decimal
	Price        decimal.Decimal
	UnitsSold    decimal.Decimal // despachado desde "since"
}

// DashboardCounts contadores del tablero.
type DashboardCounts struct {
	PendingApprovals   int
	OpenSalesOrders    int
	OpenPurchaseOrders int
	LowStockProducts   int
	StockValue         decimal.Decimal
}

// ReportRepository consultas de lectura para reportes.
type ReportRepository interface {
	StockOnHand(ctx context.Context, f StockReportFilter) ([]StockReportRow, error)
	Valuation(ctx context.Context, companyID string) ([]ValuationRow, error)
	Expiring(ctx context.Context, companyID string, before time.Time) ([]StockReportRow, error)
	// BelowReorderPoint productos cuyo stock (en la bodega o en toda la empresa si warehouseID
	// está vacío) está por debajo del punto de reorden.
	BelowReorderPoint(ctx context.Context, companyID, warehouseID string, since time.Time) ([]ReorderCandidate, error)
	Dashboard(ctx context.Context, companyID string) (*DashboardCounts, error)
}
