package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// ApprovalRepository solicitudes de aprobación.
type ApprovalRepository interface {
	Create(ctx context.Context, req *entity.ApprovalRequest) error
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.ApprovalRequest, error)
	Update(ctx context.Context, req *entity.ApprovalRequest) error
	List(ctx context.Context, f OrderFilter) ([]*entity.ApprovalRequest, error)
	// ListPendingForEntity solicitudes PENDING de una entidad, bloqueadas para actualizar.
	ListPendingForEntity(ctx context.Context, companyID, entityType, entityID string) ([]*entity.ApprovalRequest, error)
}
