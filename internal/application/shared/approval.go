package shared

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// ApprovalPolicy umbrales que envían una mutación a aprobación. Cero desactiva la regla.
type ApprovalPolicy struct {
	AdjustmentQuantity decimal.Decimal
	AdjustmentValue    decimal.Decimal
	TransferQuantity   decimal.Decimal
	PurchaseOrderTotal decimal.Decimal
}

// AdjustmentNeedsApproval |delta| >= umbral de cantidad o |delta|*costo >= umbral de valor.
func (p ApprovalPolicy) AdjustmentNeedsApproval(delta, unitCost decimal.Decimal) bool {
	abs := delta.Abs()
	if reached(abs, p.AdjustmentQuantity) {
		return true
	}
	return reached(abs.Mul(unitCost), p.AdjustmentValue)
}

// TransferNeedsApproval cantidad >= umbral de traslado.
func (p ApprovalPolicy) TransferNeedsApproval(qty decimal.Decimal) bool {
	return reached(qty, p.TransferQuantity)
}

// PurchaseOrderNeedsApproval total >= umbral de compra.
func (p ApprovalPolicy) PurchaseOrderNeedsApproval(total decimal.Decimal) bool {
	return reached(total, p.PurchaseOrderTotal)
}

func reached(v, threshold decimal.Decimal) bool {
	return threshold.IsPositive() && v.GreaterThanOrEqual(threshold)
}

// RequestApproval crea la solicitud PENDING para la entidad indicada.
func RequestApproval(ctx context.Context, r ports.TxRepos, actor Actor, entityType, entityID, summary string) (*entity.ApprovalRequest, error) {
	req := &entity.ApprovalRequest{
		ID:          NewID(),
		CompanyID:   actor.CompanyID,
		EntityType:  entityType,
		EntityID:    entityID,
		Summary:     summary,
		Status:      entity.ApprovalPending,
		RequestedBy: actor.UserID,
		CreatedAt:   Now(),
	}
	if err := r.Approvals.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}
