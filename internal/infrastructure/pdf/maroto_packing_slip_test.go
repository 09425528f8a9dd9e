package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
)

func TestPackingSlipGenerator_GeneraPDF(t *testing.T) {
	g := NewPackingSlipGenerator()
	out, err := g.Generate(&dto.PackingSlipDTO{
		CompanyName:    "Bodegas del Norte SAS",
		CompanyNIT:     "900123456-7",
		ShipmentNumber: "SH-000001",
		OrderNumber:    "SO-000001",
		CustomerName:   "Ferretería Central",
		WarehouseName:  "Principal",
		Date:           time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Lines: []dto.PackingSlipLine{
			{SKU: "TOR-01", Name: "Tornillo", BatchNumber: "L1", Quantity: decimal.NewFromInt(1200)},
			{SKU: "TAL-01", Name: "Taladro", SerialNumber: "SN-9", Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPackingSlipGenerator_FormatoCantidades(t *testing.T) {
	g := NewPackingSlipGenerator()
	assert.Equal(t, "1.200", g.quantity(decimal.NewFromInt(1200)))
	assert.Equal(t, "2,50", g.quantity(decimal.RequireFromString("2.5")))
}
