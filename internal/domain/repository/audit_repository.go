package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// AuditFilter filtros de consulta de auditoría.
type AuditFilter struct {
	CompanyID  string
	UserID     string
	EntityType string
	EntityID   string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// AuditLogRepository bitácora append-only.
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	List(ctx context.Context, f AuditFilter) ([]*entity.AuditLog, error)
}

// SequenceRepository consecutivos por empresa y prefijo (PO, SO, SH, GR, AS, AJ, TR).
type SequenceRepository interface {
	Next(ctx context.Context, companyID, prefix string) (int64, error)
}
