package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del kardex.
const (
	MovementPurchaseReceipt = "PURCHASE_RECEIPT"
	MovementSalesShipment   = "SALES_SHIPMENT"
	MovementTransferOut     = "TRANSFER_OUT"
	MovementTransferIn      = "TRANSFER_IN"
	MovementAdjustment      = "ADJUSTMENT"
	MovementAssemblyConsume = "ASSEMBLY_CONSUME"
	MovementAssemblyProduce = "ASSEMBLY_PRODUCE"
)

// Tipos de documento que originan un movimiento.
const (
	RefPurchaseOrder = "PURCHASE_ORDER"
	RefGoodsReceipt  = "GOODS_RECEIPT"
	RefSalesOrder    = "SALES_ORDER"
	RefShipment      = "SHIPMENT"
	RefTransfer      = "TRANSFER"
	RefAdjustment    = "ADJUSTMENT"
	RefAssembly      = "ASSEMBLY"
	RefManual        = "MANUAL"
)

// StockMovement fila inmutable por cada cambio de cantidad de un bucket.
type StockMovement struct {
	ID             string
	CompanyID      string
	StockItemID    string
	ProductID      string
	WarehouseID    string
	LocationID     string
	BatchNumber    string
	SerialNumber   string
	Type           string
	Quantity       decimal.Decimal // positivo entrada, negativo salida
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	UnitCost       decimal.Decimal
	ReferenceType  string
	ReferenceID    string
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
}

// IsValidMovementType informa si el tipo existe.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementPurchaseReceipt, MovementSalesShipment, MovementTransferOut, MovementTransferIn,
		MovementAdjustment, MovementAssemblyConsume, MovementAssemblyProduce:
		return true
	}
	return false
}
