package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// KitComponentRequest componente por unidad de kit.
type KitComponentRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateKitRequest body para POST /api/kits.
type CreateKitRequest struct {
	ProductID  string                `json:"product_id"`
	Name       string                `json:"name"`
	Components []KitComponentRequest `json:"components"`
}

// KitResponse salida de un kit.
type KitResponse struct {
	ID         string                `json:"id"`
	ProductID  string                `json:"product_id"`
	Name       string                `json:"name"`
	Components []KitComponentRequest `json:"components"`
	CreatedAt  time.Time             `json:"created_at"`
}

// AssembleRequest body para POST /api/kits/:id/assemble.
type AssembleRequest struct {
	WarehouseID string          `json:"warehouse_id"`
	LocationID  string          `json:"location_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// DisassembleRequest body para POST /api/kits/:id/disassemble.
type DisassembleRequest struct {
	StockItemID string          `json:"stock_item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// AssemblyOrderResponse salida de un ensamble o desensamble.
type AssemblyOrderResponse struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	KitID       string          `json:"kit_id"`
	Type        string          `json:"type"`
	WarehouseID string          `json:"warehouse_id"`
	LocationID  string          `json:"location_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}
