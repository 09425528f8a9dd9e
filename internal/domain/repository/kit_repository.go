package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// KitRepository listas de materiales.
type KitRepository interface {
	Create(ctx context.Context, kit *entity.Kit) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Kit, error)
	GetByProduct(ctx context.Context, companyID, productID string) (*entity.Kit, error)
	List(ctx context.Context, companyID string) ([]*entity.Kit, error)
}

// AssemblyRepository registro de ensambles y desensambles.
type AssemblyRepository interface {
	Create(ctx context.Context, order *entity.AssemblyOrder) error
	ListByKit(ctx context.Context, companyID, kitID string) ([]*entity.AssemblyOrder, error)
}
