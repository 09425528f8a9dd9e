package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/inventory"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	// 10 a 100 + 30 a 200 = (1000 + 6000) / 40 = 175
	got := inventory.CostCalculator(d("10"), d("100"), d("30"), d("200"))
	assert.True(t, got.Equal(d("175")), got.String())
}

func TestCostCalculator_SinStockPrevio(t *testing.T) {
	got := inventory.CostCalculator(decimal.Zero, d("999"), d("5"), d("12.5"))
	assert.True(t, got.Equal(d("12.5")), got.String())
}

func TestCostCalculator_StockNegativoSeTrataComoCero(t *testing.T) {
	got := inventory.CostCalculator(d("-3"), d("50"), d("2"), d("10"))
	assert.True(t, got.Equal(d("10")), got.String())
}

func TestCostCalculator_RedondeaACuatroDecimales(t *testing.T) {
	got := inventory.CostCalculator(d("1"), d("1"), d("2"), d("2"))
	assert.Equal(t, "1.6667", got.String())
}

func TestAssemblyUnitCost_SumaComponentes(t *testing.T) {
	got := inventory.AssemblyUnitCost(
		map[string]decimal.Decimal{"a": d("2"), "b": d("0.5")},
		map[string]decimal.Decimal{"a": d("10"), "b": d("4")},
	)
	assert.True(t, got.Equal(d("22")), got.String())
}

func bucket(id string, qty, reserved string, expiry *time.Time, created time.Time) *entity.StockItem {
	return &entity.StockItem{
		ID:               id,
		Quantity:         d(qty),
		ReservedQuantity: d(reserved),
		ExpiryDate:       expiry,
		Status:           entity.StockStatusAvailable,
		CreatedAt:        created,
	}
}

func TestPlanFEFO_PrimeroLoQueVenceAntes(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	soon := base.AddDate(0, 1, 0)
	later := base.AddDate(0, 6, 0)

	items := []*entity.StockItem{
		bucket("sin-venc", "10", "0", nil, base),
		bucket("tarde", "5", "0", &later, base),
		bucket("pronto", "3", "1", &soon, base.Add(time.Hour)),
	}
	plan, err := inventory.PlanFEFO(items, d("9"))
	require.NoError(t, err)
	require.Len(t, plan, 3)

	assert.Equal(t, "pronto", plan[0].Item.ID)
	assert.True(t, plan[0].Quantity.Equal(d("2")))
	assert.Equal(t, "tarde", plan[1].Item.ID)
	assert.True(t, plan[1].Quantity.Equal(d("5")))
	assert.Equal(t, "sin-venc", plan[2].Item.ID)
	assert.True(t, plan[2].Quantity.Equal(d("2")))
}

func TestPlanFEFO_EmpateDesempataPorAntiguedad(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []*entity.StockItem{
		bucket("nuevo", "5", "0", nil, base.Add(time.Hour)),
		bucket("viejo", "5", "0", nil, base),
	}
	plan, err := inventory.PlanFEFO(items, d("1"))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "viejo", plan[0].Item.ID)
}

func TestPlanFEFO_IgnoraBucketsNoAsignables(t *testing.T) {
	base := time.Now()
	cuarentena := bucket("q", "50", "0", nil, base)
	cuarentena.Status = entity.StockStatusQuarantine
	items := []*entity.StockItem{
		cuarentena,
		bucket("reservado", "4", "4", nil, base),
		bucket("ok", "2", "0", nil, base),
	}
	_, err := inventory.PlanFEFO(items, d("3"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	plan, err := inventory.PlanFEFO(items, d("2"))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "ok", plan[0].Item.ID)
}

func TestPlanFEFO_CantidadInvalida(t *testing.T) {
	_, err := inventory.PlanFEFO(nil, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateTracking(t *testing.T) {
	expiry := time.Now().AddDate(0, 3, 0)
	one := decimal.NewFromInt(1)

	tests := []struct {
		name    string
		product entity.Product
		batch   string
		serial  string
		expiry  *time.Time
		qty     decimal.Decimal
		wantErr error
	}{
		{"sin trazabilidad", entity.Product{SKU: "A"}, "", "", nil, d("7"), nil},
		{"lote faltante", entity.Product{SKU: "B", TrackBatch: true}, "", "", nil, one, domain.ErrTrackingRequired},
		{"serial faltante", entity.Product{SKU: "C", TrackSerial: true}, "", "", nil, one, domain.ErrTrackingRequired},
		{"serial con cantidad mayor a uno", entity.Product{SKU: "C", TrackSerial: true}, "", "S1", nil, d("2"), domain.ErrInvalidInput},
		{"serial en producto sin serial", entity.Product{SKU: "A"}, "", "S1", nil, one, domain.ErrInvalidInput},
		{"vencimiento faltante", entity.Product{SKU: "D", TrackExpiry: true}, "L1", "", nil, one, domain.ErrTrackingRequired},
		{"completo", entity.Product{SKU: "E", TrackBatch: true, TrackSerial: true, TrackExpiry: true}, "L1", "S1", &expiry, one, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inventory.ValidateTracking(&tt.product, tt.batch, tt.serial, tt.expiry, tt.qty)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
