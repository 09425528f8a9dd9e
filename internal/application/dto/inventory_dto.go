package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveStockRequest body para POST /api/inventory/receipts (entrada manual).
type ReceiveStockRequest struct {
	ProductID    string          `json:"product_id"`
	WarehouseID  string          `json:"warehouse_id"`
	LocationID   string          `json:"location_id,omitempty"`
	BatchNumber  string          `json:"batch_number,omitempty"`
	SerialNumber string          `json:"serial_number,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Notes        string          `json:"notes,omitempty"`
}

// AdjustStockRequest body para POST /api/inventory/adjustments.
// Con StockItemID ajusta un bucket existente; sin él crea uno nuevo con la llave indicada.
type AdjustStockRequest struct {
	StockItemID  string          `json:"stock_item_id,omitempty"`
	ProductID    string          `json:"product_id,omitempty"`
	WarehouseID  string          `json:"warehouse_id,omitempty"`
	LocationID   string          `json:"location_id,omitempty"`
	BatchNumber  string          `json:"batch_number,omitempty"`
	SerialNumber string          `json:"serial_number,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	NewQuantity  decimal.Decimal `json:"new_quantity"`
	Reason       string          `json:"reason"`
}

// TransferStockRequest body para POST /api/inventory/transfers.
type TransferStockRequest struct {
	StockItemID   string          `json:"stock_item_id"`
	ToWarehouseID string          `json:"to_warehouse_id"`
	ToLocationID  string          `json:"to_location_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	Notes         string          `json:"notes,omitempty"`
}

// ChangeStockStatusRequest body para PATCH /api/inventory/stock-items/:id/status.
type ChangeStockStatusRequest struct {
	Status string `json:"status"`
}

// StockItemResponse salida de un bucket.
type StockItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	WarehouseID      string          `json:"warehouse_id"`
	LocationID       string          `json:"location_id,omitempty"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	SerialNumber     string          `json:"serial_number,omitempty"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	Available        decimal.Decimal `json:"available"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Status           string          `json:"status"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AvailabilityResponse existencias de un producto con totales.
type AvailabilityResponse struct {
	ProductID string              `json:"product_id"`
	OnHand    decimal.Decimal     `json:"on_hand"`
	Reserved  decimal.Decimal     `json:"reserved"`
	Available decimal.Decimal     `json:"available"`
	Items     []StockItemResponse `json:"items"`
}

// MovementResponse fila del kardex.
type MovementResponse struct {
	ID             string          `json:"id"`
	StockItemID    string          `json:"stock_item_id"`
	ProductID      string          `json:"product_id"`
	WarehouseID    string          `json:"warehouse_id"`
	LocationID     string          `json:"location_id,omitempty"`
	BatchNumber    string          `json:"batch_number,omitempty"`
	SerialNumber   string          `json:"serial_number,omitempty"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	ReferenceType  string          `json:"reference_type"`
	ReferenceID    string          `json:"reference_id"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MovementListResponse historial paginado.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// AdjustmentResponse salida de un ajuste (aplicado o pendiente de aprobación).
type AdjustmentResponse struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	StockItemID       string          `json:"stock_item_id"`
	ProductID         string          `json:"product_id"`
	WarehouseID       string          `json:"warehouse_id"`
	QuantityBefore    decimal.Decimal `json:"quantity_before"`
	QuantityAfter     decimal.Decimal `json:"quantity_after"`
	Reason            string          `json:"reason"`
	Status            string          `json:"status"`
	ApprovalRequestID string          `json:"approval_request_id,omitempty"`
	RequestedBy       string          `json:"requested_by"`
	ApprovedBy        string          `json:"approved_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	SourceStockItemID string          `json:"source_stock_item_id"`
	DestStockItemID   string          `json:"dest_stock_item_id,omitempty"`
	ProductID         string          `json:"product_id"`
	FromWarehouseID   string          `json:"from_warehouse_id"`
	ToWarehouseID     string          `json:"to_warehouse_id"`
	ToLocationID      string          `json:"to_location_id,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	Status            string          `json:"status"`
	ApprovalRequestID string          `json:"approval_request_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un SKU bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	ReorderPoint       decimal.Decimal `json:"reorder_point"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // ReorderPoint * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	GrossMarginPct     decimal.Decimal `json:"gross_margin_pct"`     // (precio - costo) / precio * 100
	UnitsSoldLast90d   decimal.Decimal `json:"units_sold_last_90d"`  // volumen despachado reciente
	Priority           int             `json:"priority"`             // 1 = más urgente
}
