package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var (
	_ repository.ApprovalRepository = (*ApprovalRepo)(nil)
	_ repository.AuditLogRepository = (*AuditLogRepo)(nil)
	_ repository.SequenceRepository = (*SequenceRepo)(nil)
)

const approvalSelect = `
	SELECT id, company_id, entity_type, entity_id, summary, status, requested_by,
	       COALESCE(reviewed_by::text, ''), comment, created_at, reviewed_at
	FROM approval_requests`

// ApprovalRepo solicitudes de aprobación sobre PostgreSQL.
type ApprovalRepo struct {
	q Querier
}

// NewApprovalRepository construye el adaptador de aprobaciones.
func NewApprovalRepository(q Querier) *ApprovalRepo {
	return &ApprovalRepo{q: q}
}

func (r *ApprovalRepo) Create(ctx context.Context, a *entity.ApprovalRequest) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO approval_requests (id, company_id, entity_type, entity_id, summary, status, requested_by,
			reviewed_by, comment, created_at, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.CompanyID, a.EntityType, a.EntityID, a.Summary, a.Status, a.RequestedBy,
		nullable(a.ReviewedBy), a.Comment, a.CreatedAt, a.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("insert approval request: %w", err)
	}
	return nil
}

func (r *ApprovalRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.ApprovalRequest, error) {
	a, err := scanApproval(r.q.QueryRow(ctx, approvalSelect+` WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get approval request: %w", err)
	}
	return a, nil
}

func (r *ApprovalRepo) Update(ctx context.Context, a *entity.ApprovalRequest) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE approval_requests SET status = $3, reviewed_by = $4, comment = $5, reviewed_at = $6
		WHERE company_id = $1 AND id = $2`,
		a.CompanyID, a.ID, a.Status, nullable(a.ReviewedBy), a.Comment, a.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("update approval request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ApprovalRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.ApprovalRequest, error) {
	query := approvalSelect + `
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC LIMIT NULLIF($3, 0) OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.CompanyID, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list approval requests: %w", err)
	}
	return collect(rows, scanApproval)
}

func (r *ApprovalRepo) ListPendingForEntity(ctx context.Context, companyID, entityType, entityID string) ([]*entity.ApprovalRequest, error) {
	query := approvalSelect + `
		WHERE company_id = $1 AND entity_type = $2 AND entity_id = $3 AND status = 'PENDING'
		ORDER BY created_at, id FOR UPDATE`
	rows, err := r.q.Query(ctx, query, companyID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list pending approvals: %w", err)
	}
	return collect(rows, scanApproval)
}

func scanApproval(s scanner) (*entity.ApprovalRequest, error) {
	var a entity.ApprovalRequest
	err := s.Scan(&a.ID, &a.CompanyID, &a.EntityType, &a.EntityID, &a.Summary, &a.Status, &a.RequestedBy,
		&a.ReviewedBy, &a.Comment, &a.CreatedAt, &a.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AuditLogRepo bitácora append-only.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador de auditoría.
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

func (r *AuditLogRepo) Create(ctx context.Context, l *entity.AuditLog) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_logs (id, company_id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.CompanyID, l.UserID, l.Action, l.EntityType, l.EntityID, l.Details, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (r *AuditLogRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	where := []exp.Expression{goqu.C("company_id").Eq(f.CompanyID)}
	if f.UserID != "" {
		where = append(where, goqu.C("user_id").Eq(f.UserID))
	}
	if f.EntityType != "" {
		where = append(where, goqu.C("entity_type").Eq(f.EntityType))
	}
	if f.EntityID != "" {
		where = append(where, goqu.C("entity_id").Eq(f.EntityID))
	}
	if f.From != nil {
		where = append(where, goqu.C("created_at").Gte(*f.From))
	}
	if f.To != nil {
		where = append(where, goqu.C("created_at").Lte(*f.To))
	}
	ds := dialect.From("audit_logs").
		Select("id", "company_id", "user_id", "action", "entity_type", "entity_id", "details", "created_at").
		Where(where...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit))
	}
	if f.Offset > 0 {
		ds = ds.Offset(uint(f.Offset))
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build audit query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return collect(rows, func(s scanner) (*entity.AuditLog, error) {
		var l entity.AuditLog
		err := s.Scan(&l.ID, &l.CompanyID, &l.UserID, &l.Action, &l.EntityType, &l.EntityID, &l.Details, &l.CreatedAt)
		return &l, err
	})
}

// SequenceRepo consecutivos por empresa y prefijo. El upsert bloquea la fila hasta el commit,
// así dos transacciones nunca obtienen el mismo número.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador de consecutivos.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

func (r *SequenceRepo) Next(ctx context.Context, companyID, prefix string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO document_sequences (company_id, prefix, value) VALUES ($1, $2, 1)
		ON CONFLICT (company_id, prefix) DO UPDATE SET value = document_sequences.value + 1
		RETURNING value`, companyID, prefix,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", prefix, err)
	}
	return n, nil
}
