// Package pdf genera la lista de empaque de un despacho con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + NIT  │  N° Despacho + Fecha         │
//	│  ORDEN: N° Orden / Cliente / Bodega                         │
//	│  TABLA: SKU | Producto | Lote | Serial | Cantidad           │
//	│  FOOTER: QR del despacho + firmas                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
)

var _ ports.PackingSlipGenerator = (*PackingSlipGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// PackingSlipGenerator implementa ports.PackingSlipGenerator usando Maroto v2.
type PackingSlipGenerator struct {
	printer *message.Printer
}

// NewPackingSlipGenerator construye el generador (cantidades con separadores es-CO).
func NewPackingSlipGenerator() *PackingSlipGenerator {
	return &PackingSlipGenerator{printer: message.NewPrinter(language.LatinAmericanSpanish)}
}

// Generate genera el PDF y devuelve sus bytes.
func (g *PackingSlipGenerator) Generate(slip *dto.PackingSlipDTO) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Lista de empaque "+slip.ShipmentNumber, true).
		WithAuthor(slip.CompanyName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(slip))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(orderRow(slip))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.lineRows(slip.Lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(slip.Lines))

	m.AddRows(line.NewRow(4))
	m.AddRows(footerRow(slip))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar lista de empaque: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(slip *dto.PackingSlipDTO) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(slip.CompanyName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("NIT: "+slip.CompanyNIT, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("LISTA DE EMPAQUE", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(slip.ShipmentNumber, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+slip.Date.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

func orderRow(slip *dto.PackingSlipDTO) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("ORDEN "+slip.OrderNumber, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(slip.CustomerName, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Bodega: "+nonEmpty(slip.WarehouseName, "-"), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Lote", 2, align.Left),
		h("Serial", 2, align.Left),
		h("Cantidad", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func (g *PackingSlipGenerator) lineRows(lines []dto.PackingSlipLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for _, l := range lines {
		out = append(out, row.New(7).Add(
			cell(l.SKU, 2, align.Left),
			cell(l.Name, 4, align.Left),
			cell(nonEmpty(l.BatchNumber, "-"), 2, align.Left),
			cell(nonEmpty(l.SerialNumber, "-"), 2, align.Left),
			cell(g.quantity(l.Quantity), 2, align.Right),
		))
	}
	return out
}

func (g *PackingSlipGenerator) totalRow(lines []dto.PackingSlipLine) core.Row {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Quantity)
	}
	return row.New(8).Add(
		col.New(8),
		col.New(2).Add(text.New("Total unidades:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1})),
		col.New(2).Add(text.New(g.quantity(total), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1, Right: 1})),
	)
}

func footerRow(slip *dto.PackingSlipDTO) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(slip.ShipmentNumber, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Recibido por: ______________________________", props.Text{Size: 9, Top: 8, Left: 3}),
			text.New("Despachado por: ____________________________", props.Text{Size: 9, Top: 20, Left: 3}),
			text.New("Verifique lotes y seriales contra esta lista al recibir.", props.Text{Size: 7, Top: 32, Left: 3, Color: colorGray}),
		),
	)
}

// quantity formatea con separador de miles; decimales solo si la cantidad es fraccionaria.
func (g *PackingSlipGenerator) quantity(q decimal.Decimal) string {
	if q.Equal(q.Truncate(0)) {
		return g.printer.Sprintf("%d", q.IntPart())
	}
	f, _ := q.Round(2).Float64()
	return g.printer.Sprintf("%.2f", f)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
