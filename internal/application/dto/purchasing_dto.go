package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderItemRequest línea de una orden de compra.
type PurchaseOrderItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierName string                     `json:"supplier_name"`
	WarehouseID  string                     `json:"warehouse_id"`
	Notes        string                     `json:"notes,omitempty"`
	Items        []PurchaseOrderItemRequest `json:"items"`
}

// ReceiveLineRequest cantidad recibida de una línea, con su trazabilidad.
type ReceiveLineRequest struct {
	PurchaseOrderItemID string          `json:"purchase_order_item_id"`
	Quantity            decimal.Decimal `json:"quantity"`
	LocationID          string          `json:"location_id,omitempty"`
	BatchNumber         string          `json:"batch_number,omitempty"`
	SerialNumber        string          `json:"serial_number,omitempty"`
	ExpiryDate          *time.Time      `json:"expiry_date,omitempty"`
}

// ReceivePurchaseOrderRequest body para POST /api/purchase-orders/:id/receive.
type ReceivePurchaseOrderRequest struct {
	Lines []ReceiveLineRequest `json:"lines"`
}

// PurchaseOrderItemResponse línea con lo recibido.
type PurchaseOrderItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// PurchaseOrderResponse salida de una orden de compra.
type PurchaseOrderResponse struct {
	ID                string                      `json:"id"`
	Number            string                      `json:"number"`
	SupplierName      string                      `json:"supplier_name"`
	WarehouseID       string                      `json:"warehouse_id"`
	Status            string                      `json:"status"`
	Notes             string                      `json:"notes,omitempty"`
	Total             decimal.Decimal             `json:"total"`
	Items             []PurchaseOrderItemResponse `json:"items"`
	CreatedBy         string                      `json:"created_by"`
	ApprovedBy        string                      `json:"approved_by,omitempty"`
	ApprovalRequestID string                      `json:"approval_request_id,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// PurchaseOrderListResponse lista paginada de órdenes de compra.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// GoodsReceiptResponse salida de una recepción.
type GoodsReceiptResponse struct {
	ID              string                     `json:"id"`
	Number          string                     `json:"number"`
	PurchaseOrderID string                     `json:"purchase_order_id"`
	WarehouseID     string                     `json:"warehouse_id"`
	Lines           []GoodsReceiptLineResponse `json:"lines"`
	CreatedBy       string                     `json:"created_by"`
	CreatedAt       time.Time                  `json:"created_at"`
}

// GoodsReceiptLineResponse línea recibida.
type GoodsReceiptLineResponse struct {
	PurchaseOrderItemID string          `json:"purchase_order_item_id"`
	StockItemID         string          `json:"stock_item_id"`
	ProductID           string          `json:"product_id"`
	BatchNumber         string          `json:"batch_number,omitempty"`
	SerialNumber        string          `json:"serial_number,omitempty"`
	ExpiryDate          *time.Time      `json:"expiry_date,omitempty"`
	Quantity            decimal.Decimal `json:"quantity"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
}
