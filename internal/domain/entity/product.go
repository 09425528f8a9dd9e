package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo (multi-bodega).
// Cost es promedio ponderado calculado desde las entradas; el stock vive en StockItem por bucket.
type Product struct {
	ID           string
	CompanyID    string
	SKU          string // código único por empresa
	Name         string
	Description  string
	Price        decimal.Decimal // precio de venta
	Cost         decimal.Decimal // costo promedio ponderado (inicia en 0)
	UnitMeasure  string
	ReorderPoint decimal.Decimal
	TrackBatch   bool // exige número de lote en cada entrada
	TrackSerial  bool // cada unidad tiene serial propio (bucket de cantidad 1)
	TrackExpiry  bool // exige fecha de vencimiento; se despacha por FEFO
	IsKit        bool
	Attributes   json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
