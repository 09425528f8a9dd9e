package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// Allocation cantidad a tomar de un bucket.
type Allocation struct {
	Item     *entity.StockItem
	Quantity decimal.Decimal
}

// SortFEFO ordena por vencimiento ascendente (sin vencimiento al final) y luego por antigüedad.
func SortFEFO(items []*entity.StockItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.ExpiryDate != nil && b.ExpiryDate == nil:
			return true
		case a.ExpiryDate == nil && b.ExpiryDate != nil:
			return false
		case a.ExpiryDate != nil && b.ExpiryDate != nil && !a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// PlanFEFO arma el plan de asignación greedy sobre los buckets asignables.
// Si no alcanza devuelve ErrInsufficientStock y ningún plan parcial.
func PlanFEFO(items []*entity.StockItem, qty decimal.Decimal) ([]Allocation, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	candidates := make([]*entity.StockItem, 0, len(items))
	for _, it := range items {
		if it.Allocatable() {
			candidates = append(candidates, it)
		}
	}
	SortFEFO(candidates)

	remaining := qty
	plan := make([]Allocation, 0, len(candidates))
	for _, it := range candidates {
		if remaining.IsZero() {
			break
		}
		take := decimal.Min(it.Available(), remaining)
		plan = append(plan, Allocation{Item: it, Quantity: take})
		remaining = remaining.Sub(take)
	}
	if remaining.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInsufficientStock
	}
	return plan, nil
}
