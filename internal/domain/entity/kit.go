package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kit lista de materiales de un producto ensamblado.
type Kit struct {
	ID         string
	CompanyID  string
	ProductID  string // producto resultante (IsKit = true)
	Name       string
	Components []*KitComponent
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// KitComponent cantidad de un componente por unidad de kit.
type KitComponent struct {
	ID        string
	KitID     string
	ProductID string
	Quantity  decimal.Decimal
}

// Tipos de orden de ensamble.
const (
	AssemblyAssemble    = "ASSEMBLE"
	AssemblyDisassemble = "DISASSEMBLE"
)

// AssemblyOrder registro de un ensamble o desensamble ya ejecutado.
type AssemblyOrder struct {
	ID          string
	CompanyID   string
	Number      string
	KitID       string
	Type        string
	WarehouseID string
	LocationID  string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
}
