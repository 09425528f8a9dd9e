package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// StockReportItem fila del reporte de existencias.
type StockReportItem struct {
	StockItemID   string          `json:"stock_item_id"`
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	LocationID    string          `json:"location_id,omitempty"`
	BatchNumber   string          `json:"batch_number,omitempty"`
	SerialNumber  string          `json:"serial_number,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	Status        string          `json:"status"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reserved      decimal.Decimal `json:"reserved"`
	Available     decimal.Decimal `json:"available"`
}

// StockReportResponse reporte de existencias.
type StockReportResponse struct {
	Items []StockReportItem `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ValuationItem valor por bodega.
type ValuationItem struct {
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	Value         decimal.Decimal `json:"value"`
}

// ValuationResponse valorización del inventario.
type ValuationResponse struct {
	Warehouses []ValuationItem `json:"warehouses"`
	Total      decimal.Decimal `json:"total"`
}

// ExpiringResponse buckets que vencen dentro de la ventana pedida.
type ExpiringResponse struct {
	Days  int               `json:"days"`
	Items []StockReportItem `json:"items"`
}

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	PendingApprovals   int             `json:"pending_approvals"`
	OpenSalesOrders    int             `json:"open_sales_orders"`
	OpenPurchaseOrders int             `json:"open_purchase_orders"`
	LowStockProducts   int             `json:"low_stock_products"`
	ExpiringSoon       int             `json:"expiring_soon"`
	StockValue         decimal.Decimal `json:"stock_value"`
	DateLabel          string          `json:"date_label"`
	GeneratedAt        time.Time       `json:"generated_at"`
}

// AuditLogResponse fila de auditoría.
type AuditLogResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuditLogListResponse lista paginada de auditoría.
type AuditLogListResponse struct {
	Items []AuditLogResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
