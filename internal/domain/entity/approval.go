package entity

import "time"

// Tipos de entidad que pasan por aprobación.
const (
	ApprovalEntityAdjustment    = "ADJUSTMENT"
	ApprovalEntityTransfer      = "TRANSFER"
	ApprovalEntityPurchaseOrder = "PURCHASE_ORDER"
)

// Estados de una solicitud de aprobación.
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// ApprovalRequest solicitud que exige un segundo actor antes de aplicar la mutación.
type ApprovalRequest struct {
	ID          string
	CompanyID   string
	EntityType  string
	EntityID    string
	Summary     string
	Status      string
	RequestedBy string
	ReviewedBy  string
	Comment     string
	CreatedAt   time.Time
	ReviewedAt  *time.Time
}
