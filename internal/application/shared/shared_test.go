package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/rbac"
)

func TestApprovalPolicy_Umbrales(t *testing.T) {
	p := ApprovalPolicy{
		AdjustmentQuantity: decimal.NewFromInt(10),
		AdjustmentValue:    decimal.NewFromInt(1000),
		TransferQuantity:   decimal.NewFromInt(50),
	}

	assert.False(t, p.AdjustmentNeedsApproval(decimal.NewFromInt(-9), decimal.NewFromInt(100)))
	assert.True(t, p.AdjustmentNeedsApproval(decimal.NewFromInt(-10), decimal.Zero))
	assert.True(t, p.AdjustmentNeedsApproval(decimal.NewFromInt(5), decimal.NewFromInt(200)))
	assert.True(t, p.TransferNeedsApproval(decimal.NewFromInt(50)))
	assert.False(t, p.TransferNeedsApproval(decimal.NewFromInt(49)))
	// umbral en cero desactiva la regla
	assert.False(t, p.PurchaseOrderNeedsApproval(decimal.NewFromInt(1_000_000)))
}

func TestActor_Require(t *testing.T) {
	vendedor := Actor{Role: entity.RoleVendedor}
	assert.NoError(t, vendedor.Require(rbac.SalesWrite))
	assert.ErrorIs(t, vendedor.Require(rbac.ApprovalsReview), domain.ErrForbidden)
}
