package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la orden de compra.
const (
	PurchaseOrderDraft             = "DRAFT"
	PurchaseOrderPendingApproval   = "PENDING_APPROVAL"
	PurchaseOrderApproved          = "APPROVED"
	PurchaseOrderRejected          = "REJECTED"
	PurchaseOrderPartiallyReceived = "PARTIALLY_RECEIVED"
	PurchaseOrderReceived          = "RECEIVED"
	PurchaseOrderCancelled         = "CANCELLED"
)

var purchaseOrderTransitions = map[string][]string{
	PurchaseOrderDraft:             {PurchaseOrderPendingApproval, PurchaseOrderApproved, PurchaseOrderCancelled},
	PurchaseOrderPendingApproval:   {PurchaseOrderApproved, PurchaseOrderRejected, PurchaseOrderCancelled},
	PurchaseOrderApproved:          {PurchaseOrderPartiallyReceived, PurchaseOrderReceived, PurchaseOrderCancelled},
	PurchaseOrderPartiallyReceived: {PurchaseOrderPartiallyReceived, PurchaseOrderReceived},
}

// PurchaseOrder cabecera de una orden de compra a proveedor.
type PurchaseOrder struct {
	ID           string
	CompanyID    string
	Number       string
	SupplierName string
	WarehouseID  string
	Status       string
	Notes        string
	Total        decimal.Decimal
	Items        []*PurchaseOrderItem
	CreatedBy    string
	ApprovedBy   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PurchaseOrderItem línea de compra. ReceivedQuantity acumula las recepciones.
type PurchaseOrderItem struct {
	ID               string
	PurchaseOrderID  string
	ProductID        string
	Quantity         decimal.Decimal
	UnitCost         decimal.Decimal
	ReceivedQuantity decimal.Decimal
}

// Pending cantidad pendiente de recibir.
func (i *PurchaseOrderItem) Pending() decimal.Decimal {
	return i.Quantity.Sub(i.ReceivedQuantity)
}

// CanTransition informa si la orden puede pasar al estado indicado.
func (o *PurchaseOrder) CanTransition(to string) bool {
	return allowed(purchaseOrderTransitions, o.Status, to)
}

// ReceiptStatus calcula el estado según lo recibido.
func (o *PurchaseOrder) ReceiptStatus() string {
	for _, it := range o.Items {
		if it.Pending().GreaterThan(decimal.Zero) {
			return PurchaseOrderPartiallyReceived
		}
	}
	return PurchaseOrderReceived
}

// ItemByID busca una línea por ID.
func (o *PurchaseOrder) ItemByID(id string) *PurchaseOrderItem {
	for _, it := range o.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// HasReceipts indica si ya se recibió mercancía.
func (o *PurchaseOrder) HasReceipts() bool {
	for _, it := range o.Items {
		if it.ReceivedQuantity.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}

// GoodsReceipt recepción de mercancía contra una orden de compra.
type GoodsReceipt struct {
	ID              string
	CompanyID       string
	Number          string
	PurchaseOrderID string
	WarehouseID     string
	Lines           []*GoodsReceiptLine
	CreatedBy       string
	CreatedAt       time.Time
}

// GoodsReceiptLine línea recibida a nivel de bucket.
type GoodsReceiptLine struct {
	ID                  string
	GoodsReceiptID      string
	PurchaseOrderItemID string
	StockItemID         string
	ProductID           string
	LocationID          string
	BatchNumber         string
	SerialNumber        string
	ExpiryDate          *time.Time
	Quantity            decimal.Decimal
	UnitCost            decimal.Decimal
}
