package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un bucket de stock. Solo AVAILABLE se asigna a pedidos.
const (
	StockStatusAvailable  = "AVAILABLE"
	StockStatusQuarantine = "QUARANTINE"
	StockStatusDamaged    = "DAMAGED"
)

// BucketKey identifica un bucket: producto + bodega + ubicación + lote + serial.
// LocationID, BatchNumber y SerialNumber vacíos significan "sin ubicación / sin lote / sin serial".
type BucketKey struct {
	ProductID    string
	WarehouseID  string
	LocationID   string
	BatchNumber  string
	SerialNumber string
}

// StockItem es la fila de cantidades de un bucket.
// Invariantes: 0 <= ReservedQuantity <= Quantity.
type StockItem struct {
	ID               string
	CompanyID        string
	ProductID        string
	WarehouseID      string
	LocationID       string
	BatchNumber      string
	SerialNumber     string
	ExpiryDate       *time.Time
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
	UnitCost         decimal.Decimal
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Key devuelve la llave del bucket.
func (s *StockItem) Key() BucketKey {
	return BucketKey{
		ProductID:    s.ProductID,
		WarehouseID:  s.WarehouseID,
		LocationID:   s.LocationID,
		BatchNumber:  s.BatchNumber,
		SerialNumber: s.SerialNumber,
	}
}

// Available cantidad libre para reservar o mover.
func (s *StockItem) Available() decimal.Decimal {
	return s.Quantity.Sub(s.ReservedQuantity)
}

// Allocatable indica si el bucket puede participar en una asignación FEFO.
func (s *StockItem) Allocatable() bool {
	return s.Status == StockStatusAvailable && s.Available().GreaterThan(decimal.Zero)
}

// Valid verifica las invariantes de cantidades.
func (s *StockItem) Valid() bool {
	if s.Quantity.IsNegative() || s.ReservedQuantity.IsNegative() {
		return false
	}
	return s.ReservedQuantity.LessThanOrEqual(s.Quantity)
}

// IsValidStockStatus informa si el estado existe.
func IsValidStockStatus(status string) bool {
	switch status {
	case StockStatusAvailable, StockStatusQuarantine, StockStatusDamaged:
		return true
	}
	return false
}
