package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrderItemRequest línea de una orden de venta. UnitPrice nil toma el precio del producto.
type SalesOrderItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateSalesOrderRequest body para POST /api/sales-orders.
type CreateSalesOrderRequest struct {
	CustomerName string                  `json:"customer_name"`
	WarehouseID  string                  `json:"warehouse_id"`
	Notes        string                  `json:"notes,omitempty"`
	Items        []SalesOrderItemRequest `json:"items"`
}

// ShipLineRequest cantidad a despachar de una línea.
type ShipLineRequest struct {
	SalesOrderItemID string          `json:"sales_order_item_id"`
	Quantity         decimal.Decimal `json:"quantity"`
}

// ShipSalesOrderRequest body para POST /api/sales-orders/:id/ship.
type ShipSalesOrderRequest struct {
	Lines []ShipLineRequest `json:"lines"`
}

// SalesOrderItemResponse línea con lo despachado.
type SalesOrderItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	ShippedQuantity decimal.Decimal `json:"shipped_quantity"`
}

// SalesOrderResponse salida de una orden de venta.
type SalesOrderResponse struct {
	ID           string                   `json:"id"`
	Number       string                   `json:"number"`
	CustomerName string                   `json:"customer_name"`
	WarehouseID  string                   `json:"warehouse_id"`
	Status       string                   `json:"status"`
	Notes        string                   `json:"notes,omitempty"`
	Total        decimal.Decimal          `json:"total"`
	Items        []SalesOrderItemResponse `json:"items"`
	CreatedBy    string                   `json:"created_by"`
	ConfirmedAt  *time.Time               `json:"confirmed_at,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

// SalesOrderListResponse lista paginada de órdenes de venta.
type SalesOrderListResponse struct {
	Items []SalesOrderResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// ShipmentLineResponse línea despachada a nivel de bucket.
type ShipmentLineResponse struct {
	SalesOrderItemID string          `json:"sales_order_item_id"`
	StockItemID      string          `json:"stock_item_id"`
	ProductID        string          `json:"product_id"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	SerialNumber     string          `json:"serial_number,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
}

// ShipmentResponse salida de un despacho.
type ShipmentResponse struct {
	ID           string                 `json:"id"`
	Number       string                 `json:"number"`
	SalesOrderID string                 `json:"sales_order_id"`
	WarehouseID  string                 `json:"warehouse_id"`
	Lines        []ShipmentLineResponse `json:"lines"`
	CreatedBy    string                 `json:"created_by"`
	CreatedAt    time.Time              `json:"created_at"`
}

// PackingSlipDTO datos para renderizar la lista de empaque en PDF.
type PackingSlipDTO struct {
	CompanyName    string
	CompanyNIT     string
	ShipmentNumber string
	OrderNumber    string
	CustomerName   string
	WarehouseName  string
	Date           time.Time
	Lines          []PackingSlipLine
}

// PackingSlipLine línea de la lista de empaque.
type PackingSlipLine struct {
	SKU          string
	Name         string
	BatchNumber  string
	SerialNumber string
	Quantity     decimal.Decimal
}
