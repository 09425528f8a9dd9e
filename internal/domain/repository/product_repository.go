package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	CompanyID string
	Search    string // coincide con SKU o nombre
	Limit     int
	Offset    int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción; serializa el
	// recálculo del costo promedio entre entradas concurrentes.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// UpdateCost actualiza solo el costo promedio (motor de inventario).
	UpdateCost(ctx context.Context, companyID, productID string, cost decimal.Decimal) error
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, error)
}
