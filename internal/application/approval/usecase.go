package approval

import (
	"context"
	"fmt"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/rbac"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// UseCase revisión de solicitudes de aprobación. Aprobar aplica la mutación retenida
// en la misma transacción.
type UseCase struct {
	store  ports.Store
	ledger *inventory.Ledger
	events ports.EventPublisher
	log    *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(store ports.Store, ledger *inventory.Ledger, events ports.EventPublisher, log *logger.Logger) *UseCase {
	return &UseCase{store: store, ledger: ledger, events: events, log: log}
}

// List solicitudes filtradas por estado (vacío = todas).
func (uc *UseCase) List(ctx context.Context, f repository.OrderFilter) (*dto.ApprovalListResponse, error) {
	if f.Status != "" && f.Status != entity.ApprovalPending && f.Status != entity.ApprovalApproved && f.Status != entity.ApprovalRejected {
		return nil, fmt.Errorf("%w: estado %s", domain.ErrInvalidInput, f.Status)
	}
	list, err := uc.store.Repos().Approvals.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.ApprovalListResponse{
		Items: make([]dto.ApprovalResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}
	for _, a := range list {
		out.Items = append(out.Items, *ToApprovalResponse(a))
	}
	return out, nil
}

// Approve aprueba la solicitud y aplica la mutación: ajuste, traslado u orden de compra.
func (uc *UseCase) Approve(ctx context.Context, actor shared.Actor, id string, in dto.ReviewApprovalRequest) (*dto.ApprovalResponse, error) {
	return uc.review(ctx, actor, id, in.Comment, true)
}

// Reject rechaza la solicitud y marca la entidad como REJECTED. El comentario es obligatorio.
func (uc *UseCase) Reject(ctx context.Context, actor shared.Actor, id string, in dto.ReviewApprovalRequest) (*dto.ApprovalResponse, error) {
	if in.Comment == "" {
		return nil, fmt.Errorf("%w: el rechazo requiere comentario", domain.ErrInvalidInput)
	}
	return uc.review(ctx, actor, id, in.Comment, false)
}

func (uc *UseCase) review(ctx context.Context, actor shared.Actor, id, comment string, approve bool) (*dto.ApprovalResponse, error) {
	if err := actor.Require(rbac.ApprovalsReview); err != nil {
		return nil, err
	}
	var req *entity.ApprovalRequest
	var ev shared.Events
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		var err error
		req, err = r.Approvals.GetForUpdate(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.Status != entity.ApprovalPending {
			return fmt.Errorf("%w: la solicitud ya está %s", domain.ErrInvalidTransition, req.Status)
		}
		if req.RequestedBy == actor.UserID {
			return domain.ErrSelfApproval
		}

		switch req.EntityType {
		case entity.ApprovalEntityAdjustment:
			err = uc.resolveAdjustment(ctx, r, actor, req.EntityID, approve, &ev)
		case entity.ApprovalEntityTransfer:
			err = uc.resolveTransfer(ctx, r, actor, req.EntityID, approve, &ev)
		case entity.ApprovalEntityPurchaseOrder:
			err = uc.resolvePurchaseOrder(ctx, r, actor, req.EntityID, approve, &ev)
		default:
			err = fmt.Errorf("%w: tipo de entidad %s", domain.ErrInvalidInput, req.EntityType)
		}
		if err != nil {
			return err
		}

		now := shared.Now()
		req.Status = entity.ApprovalRejected
		action := "approval.reject"
		if approve {
			req.Status = entity.ApprovalApproved
			action = "approval.approve"
		}
		req.ReviewedBy = actor.UserID
		req.ReviewedAt = &now
		req.Comment = comment
		if err := r.Approvals.Update(ctx, req); err != nil {
			return err
		}
		ev.Add(ports.EventApprovalResolved, actor.CompanyID, req.ID, map[string]any{
			"id":          req.ID,
			"entity_type": req.EntityType,
			"entity_id":   req.EntityID,
			"status":      req.Status,
		})
		return shared.Audit(ctx, r, actor, action, "approval_request", req.ID, map[string]string{
			"entity_type": req.EntityType,
			"entity_id":   req.EntityID,
			"comment":     comment,
		})
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	return ToApprovalResponse(req), nil
}

func (uc *UseCase) resolveAdjustment(ctx context.Context, r ports.TxRepos, actor shared.Actor, id string, approve bool, ev *shared.Events) error {
	adj, err := r.Adjustments.GetForUpdate(ctx, actor.CompanyID, id)
	if err != nil {
		return err
	}
	if adj == nil {
		return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, id)
	}
	if adj.Status != entity.MutationPendingApproval {
		return fmt.Errorf("%w: ajuste en %s", domain.ErrInvalidTransition, adj.Status)
	}
	now := shared.Now()
	adj.ApprovedBy = actor.UserID
	adj.ApprovedAt = &now
	if approve {
		if err := uc.ledger.ApplyAdjustment(ctx, r, actor, adj); err != nil {
			return err
		}
		ev.Add(ports.EventStockMoved, actor.CompanyID, adj.ProductID, map[string]any{
			"stock_item_id": adj.StockItemID,
			"type":          entity.MovementAdjustment,
			"quantity":      adj.Delta(),
		})
	} else {
		adj.Status = entity.MutationRejected
		adj.UpdatedAt = now
	}
	return r.Adjustments.Update(ctx, adj)
}

func (uc *UseCase) resolveTransfer(ctx context.Context, r ports.TxRepos, actor shared.Actor, id string, approve bool, ev *shared.Events) error {
	t, err := r.Transfers.GetForUpdate(ctx, actor.CompanyID, id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, id)
	}
	if t.Status != entity.MutationPendingApproval {
		return fmt.Errorf("%w: traslado en %s", domain.ErrInvalidTransition, t.Status)
	}
	t.ApprovedBy = actor.UserID
	if approve {
		if err := uc.ledger.ExecuteTransfer(ctx, r, actor, t); err != nil {
			return err
		}
		ev.Add(ports.EventStockMoved, actor.CompanyID, t.ProductID, map[string]any{
			"stock_item_id": t.SourceStockItemID,
			"dest_item_id":  t.DestStockItemID,
			"type":          entity.MovementTransferOut,
			"quantity":      t.Quantity,
		})
	} else {
		t.Status = entity.MutationRejected
		t.UpdatedAt = shared.Now()
	}
	return r.Transfers.Update(ctx, t)
}

func (uc *UseCase) resolvePurchaseOrder(ctx context.Context, r ports.TxRepos, actor shared.Actor, id string, approve bool, ev *shared.Events) error {
	order, err := r.PurchaseOrders.GetForUpdate(ctx, actor.CompanyID, id)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, id)
	}
	next := entity.PurchaseOrderRejected
	if approve {
		next = entity.PurchaseOrderApproved
		order.ApprovedBy = actor.UserID
	}
	if order.Status != entity.PurchaseOrderPendingApproval || !order.CanTransition(next) {
		return fmt.Errorf("%w: orden de compra en %s", domain.ErrInvalidTransition, order.Status)
	}
	order.Status = next
	order.UpdatedAt = shared.Now()
	if err := r.PurchaseOrders.Update(ctx, order); err != nil {
		return err
	}
	ev.Add(ports.EventPurchaseOrderStatus, actor.CompanyID, order.ID, map[string]any{
		"id":     order.ID,
		"number": order.Number,
		"status": order.Status,
	})
	return nil
}

// ToApprovalResponse convierte la solicitud a DTO.
func ToApprovalResponse(a *entity.ApprovalRequest) *dto.ApprovalResponse {
	return &dto.ApprovalResponse{
		ID:          a.ID,
		EntityType:  a.EntityType,
		EntityID:    a.EntityID,
		Summary:     a.Summary,
		Status:      a.Status,
		RequestedBy: a.RequestedBy,
		ReviewedBy:  a.ReviewedBy,
		Comment:     a.Comment,
		CreatedAt:   a.CreatedAt,
		ReviewedAt:  a.ReviewedAt,
	}
}
