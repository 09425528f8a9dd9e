package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados compartidos por las mutaciones sujetas a aprobación (ajustes y traslados).
const (
	MutationPendingApproval = "PENDING_APPROVAL"
	MutationApplied         = "APPLIED"
	MutationCompleted       = "COMPLETED"
	MutationRejected        = "REJECTED"
)

// InventoryAdjustment ajuste de cantidad de un bucket con foto antes/después.
// Si StockItemID está vacío el ajuste crea un bucket nuevo con la llave indicada.
type InventoryAdjustment struct {
	ID             string
	CompanyID      string
	Number         string
	StockItemID    string
	ProductID      string
	WarehouseID    string
	LocationID     string
	BatchNumber    string
	SerialNumber   string
	ExpiryDate     *time.Time
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	UnitCost       decimal.Decimal
	Reason         string
	Status         string
	RequestedBy    string
	ApprovedBy     string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Delta diferencia aplicada por el ajuste.
func (a *InventoryAdjustment) Delta() decimal.Decimal {
	return a.QuantityAfter.Sub(a.QuantityBefore)
}

// StockTransfer traslado de cantidad desde un bucket a otra bodega/ubicación.
type StockTransfer struct {
	ID                string
	CompanyID         string
	Number            string
	SourceStockItemID string
	ProductID         string
	FromWarehouseID   string
	FromLocationID    string
	ToWarehouseID     string
	ToLocationID      string
	DestStockItemID   string
	Quantity          decimal.Decimal
	Status            string
	Notes             string
	RequestedBy       string
	ApprovedBy        string
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
