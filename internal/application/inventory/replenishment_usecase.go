package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// idealStockFactor stock ideal = punto de reorden × 1.5.
var idealStockFactor = decimal.NewFromFloat(1.5)

// ReplenishmentUseCase genera la lista de reposición para una bodega o para toda la empresa.
// Prioriza por margen unitario y volumen despachado en los últimos 90 días.
type ReplenishmentUseCase struct {
	reports repository.ReportRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(reports repository.ReportRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{reports: reports}
}

// GenerateReplenishmentList devuelve los productos bajo punto de reorden con la cantidad
// sugerida de pedido y su prioridad. warehouseID vacío considera el stock global.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, companyID, warehouseID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	since := time.Now().AddDate(0, 0, -90)
	rawItems, err := uc.reports.BelowReorderPoint(ctx, companyID, warehouseID, since)
	if err != nil {
		return nil, err
	}
	if len(rawItems) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	hundred := decimal.NewFromInt(100)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rawItems))
	for _, item := range rawItems {
		idealStock := item.ReorderPoint.Mul(idealStockFactor)
		suggestedQty := idealStock.Sub(item.OnHand)
		if suggestedQty.IsNegative() {
			suggestedQty = decimal.Zero
		}
		var marginPct decimal.Decimal
		if item.Price.IsPositive() {
			marginPct = item.Price.Sub(item.Cost).Div(item.Price).Mul(hundred).Round(2)
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          item.ProductID,
			SKU:                item.SKU,
			ProductName:        item.Name,
			CurrentStock:       item.OnHand,
			ReorderPoint:       item.ReorderPoint,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggestedQty,
			UnitCost:           item.Cost,
			EstimatedOrderCost: suggestedQty.Mul(item.Cost),
			GrossMarginPct:     marginPct,
			UnitsSoldLast90d:   item.UnitsSold,
		})
	}

	// mayor margen, luego mayor volumen, luego mayor déficit bajo el reorden
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.GrossMarginPct.Equal(b.GrossMarginPct) {
			return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
		}
		if !a.UnitsSoldLast90d.Equal(b.UnitsSoldLast90d) {
			return a.UnitsSoldLast90d.GreaterThan(b.UnitsSoldLast90d)
		}
		return a.ReorderPoint.Sub(a.CurrentStock).GreaterThan(b.ReorderPoint.Sub(b.CurrentStock))
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
