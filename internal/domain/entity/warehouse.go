package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacena inventario (multi-bodega).
type Warehouse struct {
	ID        string
	CompanyID string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location representa una ubicación física (pasillo/estante/posición) dentro de una bodega.
type Location struct {
	ID          string
	CompanyID   string
	WarehouseID string
	Code        string // ej. A-01-03
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
