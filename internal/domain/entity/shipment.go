package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shipment despacho de una orden de venta (uno por llamada a Ship).
type Shipment struct {
	ID           string
	CompanyID    string
	Number       string
	SalesOrderID string
	WarehouseID  string
	Lines        []*ShipmentLine
	CreatedBy    string
	CreatedAt    time.Time
}

// ShipmentLine línea a nivel de bucket (conserva lote y serial despachados).
type ShipmentLine struct {
	ID               string
	ShipmentID       string
	SalesOrderItemID string
	StockItemID      string
	ProductID        string
	BatchNumber      string
	SerialNumber     string
	Quantity         decimal.Decimal
}
