package purchasing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// UseCase flujo de órdenes de compra: crear, enviar (aprobación por monto), recibir y cancelar.
type UseCase struct {
	store  ports.Store
	ledger *inventory.Ledger
	policy shared.ApprovalPolicy
	events ports.EventPublisher
	log    *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(store ports.Store, ledger *inventory.Ledger, policy shared.ApprovalPolicy, events ports.EventPublisher, log *logger.Logger) *UseCase {
	return &UseCase{store: store, ledger: ledger, policy: policy, events: events, log: log}
}

// Create registra la orden de compra en DRAFT.
func (uc *UseCase) Create(ctx context.Context, actor shared.Actor, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if in.WarehouseID == "" || in.SupplierName == "" || len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: proveedor, bodega e ítems son obligatorios", domain.ErrInvalidInput)
	}
	var order *entity.PurchaseOrder
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		wh, err := r.Warehouses.GetByID(ctx, actor.CompanyID, in.WarehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, in.WarehouseID)
		}
		now := shared.Now()
		order = &entity.PurchaseOrder{
			ID:           shared.NewID(),
			CompanyID:    actor.CompanyID,
			SupplierName: in.SupplierName,
			WarehouseID:  in.WarehouseID,
			Status:       entity.PurchaseOrderDraft,
			Notes:        in.Notes,
			Total:        decimal.Zero,
			CreatedBy:    actor.UserID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		for _, it := range in.Items {
			if !it.Quantity.IsPositive() || it.UnitCost.IsNegative() {
				return fmt.Errorf("%w: cantidad > 0 y costo >= 0", domain.ErrInvalidInput)
			}
			product, err := r.Products.GetByID(ctx, actor.CompanyID, it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
			}
			order.Items = append(order.Items, &entity.PurchaseOrderItem{
				ID:               shared.NewID(),
				PurchaseOrderID:  order.ID,
				ProductID:        product.ID,
				Quantity:         it.Quantity,
				UnitCost:         it.UnitCost,
				ReceivedQuantity: decimal.Zero,
			})
			order.Total = order.Total.Add(it.Quantity.Mul(it.UnitCost))
		}
		order.Number, err = shared.NextNumber(ctx, r, actor.CompanyID, shared.PrefixPurchaseOrder)
		if err != nil {
			return err
		}
		if err := r.PurchaseOrders.Create(ctx, order); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "purchase_order.create", "purchase_order", order.ID, in)
	})
	if err != nil {
		return nil, err
	}
	return ToPurchaseOrderResponse(order), nil
}

// Submit envía la orden: queda APPROVED o, si el total alcanza el umbral, PENDING_APPROVAL.
func (uc *UseCase) Submit(ctx context.Context, actor shared.Actor, id string) (*dto.PurchaseOrderResponse, error) {
	var order *entity.PurchaseOrder
	var approvalID string
	var ev shared.Events
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		var err error
		order, err = uc.lockOrder(ctx, r, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if order.Status != entity.PurchaseOrderDraft {
			return fmt.Errorf("%w: solo se envía una orden en DRAFT (actual %s)", domain.ErrInvalidTransition, order.Status)
		}
		order.UpdatedAt = shared.Now()
		if uc.policy.PurchaseOrderNeedsApproval(order.Total) {
			order.Status = entity.PurchaseOrderPendingApproval
			req, err := shared.RequestApproval(ctx, r, actor, entity.ApprovalEntityPurchaseOrder, order.ID,
				fmt.Sprintf("Orden de compra %s a %s por %s", order.Number, order.SupplierName, order.Total.StringFixed(2)))
			if err != nil {
				return err
			}
			approvalID = req.ID
		} else {
			order.Status = entity.PurchaseOrderApproved
			order.ApprovedBy = actor.UserID
		}
		if err := r.PurchaseOrders.Update(ctx, order); err != nil {
			return err
		}
		ev.Add(ports.EventPurchaseOrderStatus, actor.CompanyID, order.ID, statusPayload(order))
		return shared.Audit(ctx, r, actor, "purchase_order.submit", "purchase_order", order.ID, map[string]string{"status": order.Status})
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	out := ToPurchaseOrderResponse(order)
	out.ApprovalRequestID = approvalID
	return out, nil
}

// Receive registra mercancía recibida contra las líneas (APPROVED o PARTIALLY_RECEIVED).
// Cada línea entra al ledger al costo unitario de la orden.
func (uc *UseCase) Receive(ctx context.Context, actor shared.Actor, id string, in dto.ReceivePurchaseOrderRequest) (*dto.GoodsReceiptResponse, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: sin líneas para recibir", domain.ErrInvalidInput)
	}
	var receipt *entity.GoodsReceipt
	var ev shared.Events
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		order, err := uc.lockOrder(ctx, r, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if order.Status != entity.PurchaseOrderApproved && order.Status != entity.PurchaseOrderPartiallyReceived {
			return fmt.Errorf("%w: no se recibe una orden en %s", domain.ErrInvalidTransition, order.Status)
		}
		now := shared.Now()
		receipt = &entity.GoodsReceipt{
			ID:              shared.NewID(),
			CompanyID:       actor.CompanyID,
			PurchaseOrderID: order.ID,
			WarehouseID:     order.WarehouseID,
			CreatedBy:       actor.UserID,
			CreatedAt:       now,
		}
		for _, l := range in.Lines {
			item := order.ItemByID(l.PurchaseOrderItemID)
			if item == nil {
				return fmt.Errorf("%w: línea %s", domain.ErrNotFound, l.PurchaseOrderItemID)
			}
			if !l.Quantity.IsPositive() {
				return fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidInput)
			}
			if l.Quantity.GreaterThan(item.Pending()) {
				return fmt.Errorf("%w: línea %s pendiente %s, recibido %s", domain.ErrOverReceipt, item.ID, item.Pending(), l.Quantity)
			}
			stock, err := uc.ledger.Receive(ctx, r, actor, inventory.ReceiveInput{
				ProductID:     item.ProductID,
				WarehouseID:   order.WarehouseID,
				LocationID:    l.LocationID,
				BatchNumber:   l.BatchNumber,
				SerialNumber:  l.SerialNumber,
				ExpiryDate:    l.ExpiryDate,
				Quantity:      l.Quantity,
				UnitCost:      item.UnitCost,
				MovementType:  entity.MovementPurchaseReceipt,
				ReferenceType: entity.RefGoodsReceipt,
				ReferenceID:   receipt.ID,
			})
			if err != nil {
				return err
			}
			item.ReceivedQuantity = item.ReceivedQuantity.Add(l.Quantity)
			receipt.Lines = append(receipt.Lines, &entity.GoodsReceiptLine{
				ID:                  shared.NewID(),
				GoodsReceiptID:      receipt.ID,
				PurchaseOrderItemID: item.ID,
				StockItemID:         stock.ID,
				ProductID:           item.ProductID,
				LocationID:          stock.LocationID,
				BatchNumber:         stock.BatchNumber,
				SerialNumber:        stock.SerialNumber,
				ExpiryDate:          stock.ExpiryDate,
				Quantity:            l.Quantity,
				UnitCost:            item.UnitCost,
			})
			ev.Add(ports.EventStockMoved, actor.CompanyID, item.ProductID, map[string]any{
				"stock_item_id": stock.ID,
				"type":          entity.MovementPurchaseReceipt,
				"quantity":      l.Quantity,
				"receipt_id":    receipt.ID,
			})
		}
		next := order.ReceiptStatus()
		if !order.CanTransition(next) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, order.Status, next)
		}
		order.Status = next
		order.UpdatedAt = now
		receipt.Number, err = shared.NextNumber(ctx, r, actor.CompanyID, shared.PrefixGoodsReceipt)
		if err != nil {
			return err
		}
		if err := r.Receipts.Create(ctx, receipt); err != nil {
			return err
		}
		if err := r.PurchaseOrders.Update(ctx, order); err != nil {
			return err
		}
		ev.Add(ports.EventPurchaseOrderStatus, actor.CompanyID, order.ID, statusPayload(order))
		return shared.Audit(ctx, r, actor, "purchase_order.receive", "goods_receipt", receipt.ID, in)
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	return ToGoodsReceiptResponse(receipt), nil
}

// Cancel cancela la orden mientras no se haya recibido nada. Una solicitud de aprobación
// pendiente queda rechazada.
func (uc *UseCase) Cancel(ctx context.Context, actor shared.Actor, id string) (*dto.PurchaseOrderResponse, error) {
	var order *entity.PurchaseOrder
	var ev shared.Events
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		var err error
		order, err = uc.lockOrder(ctx, r, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if !order.CanTransition(entity.PurchaseOrderCancelled) || order.HasReceipts() {
			return fmt.Errorf("%w: no se cancela una orden en %s", domain.ErrInvalidTransition, order.Status)
		}
		if order.Status == entity.PurchaseOrderPendingApproval {
			if err := closePendingApproval(ctx, r, actor, order.ID); err != nil {
				return err
			}
		}
		order.Status = entity.PurchaseOrderCancelled
		order.UpdatedAt = shared.Now()
		if err := r.PurchaseOrders.Update(ctx, order); err != nil {
			return err
		}
		ev.Add(ports.EventPurchaseOrderStatus, actor.CompanyID, order.ID, statusPayload(order))
		return shared.Audit(ctx, r, actor, "purchase_order.cancel", "purchase_order", order.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	return ToPurchaseOrderResponse(order), nil
}

func closePendingApproval(ctx context.Context, r ports.TxRepos, actor shared.Actor, orderID string) error {
	pending, err := r.Approvals.ListPendingForEntity(ctx, actor.CompanyID, entity.ApprovalEntityPurchaseOrder, orderID)
	if err != nil {
		return err
	}
	now := shared.Now()
	for _, req := range pending {
		req.Status = entity.ApprovalRejected
		req.ReviewedBy = actor.UserID
		req.Comment = "orden cancelada"
		req.ReviewedAt = &now
		if err := r.Approvals.Update(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// GetByID obtiene una orden con sus líneas.
func (uc *UseCase) GetByID(ctx context.Context, companyID, id string) (*dto.PurchaseOrderResponse, error) {
	order, err := uc.store.Repos().PurchaseOrders.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return ToPurchaseOrderResponse(order), nil
}

// List lista órdenes de compra por estado.
func (uc *UseCase) List(ctx context.Context, f repository.OrderFilter) (*dto.PurchaseOrderListResponse, error) {
	list, err := uc.store.Repos().PurchaseOrders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.PurchaseOrderListResponse{
		Items: make([]dto.PurchaseOrderResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}
	for _, o := range list {
		out.Items = append(out.Items, *ToPurchaseOrderResponse(o))
	}
	return out, nil
}

// ListReceipts recepciones de una orden.
func (uc *UseCase) ListReceipts(ctx context.Context, companyID, orderID string) ([]dto.GoodsReceiptResponse, error) {
	list, err := uc.store.Repos().Receipts.ListByPurchaseOrder(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GoodsReceiptResponse, 0, len(list))
	for _, g := range list {
		out = append(out, *ToGoodsReceiptResponse(g))
	}
	return out, nil
}

func (uc *UseCase) lockOrder(ctx context.Context, r ports.TxRepos, companyID, id string) (*entity.PurchaseOrder, error) {
	order, err := r.PurchaseOrders.GetForUpdate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func statusPayload(o *entity.PurchaseOrder) map[string]any {
	return map[string]any{"id": o.ID, "number": o.Number, "status": o.Status}
}

// ToPurchaseOrderResponse convierte la orden a DTO.
func ToPurchaseOrderResponse(o *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	out := &dto.PurchaseOrderResponse{
		ID:           o.ID,
		Number:       o.Number,
		SupplierName: o.SupplierName,
		WarehouseID:  o.WarehouseID,
		Status:       o.Status,
		Notes:        o.Notes,
		Total:        o.Total,
		Items:        make([]dto.PurchaseOrderItemResponse, 0, len(o.Items)),
		CreatedBy:    o.CreatedBy,
		ApprovedBy:   o.ApprovedBy,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.PurchaseOrderItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			Quantity:         it.Quantity,
			UnitCost:         it.UnitCost,
			ReceivedQuantity: it.ReceivedQuantity,
		})
	}
	return out
}

// ToGoodsReceiptResponse convierte la recepción a DTO.
func ToGoodsReceiptResponse(g *entity.GoodsReceipt) *dto.GoodsReceiptResponse {
	out := &dto.GoodsReceiptResponse{
		ID:              g.ID,
		Number:          g.Number,
		PurchaseOrderID: g.PurchaseOrderID,
		WarehouseID:     g.WarehouseID,
		Lines:           make([]dto.GoodsReceiptLineResponse, 0, len(g.Lines)),
		CreatedBy:       g.CreatedBy,
		CreatedAt:       g.CreatedAt,
	}
	for _, l := range g.Lines {
		out.Lines = append(out.Lines, dto.GoodsReceiptLineResponse{
			PurchaseOrderItemID: l.PurchaseOrderItemID,
			StockItemID:         l.StockItemID,
			ProductID:           l.ProductID,
			BatchNumber:         l.BatchNumber,
			SerialNumber:        l.SerialNumber,
			ExpiryDate:          l.ExpiryDate,
			Quantity:            l.Quantity,
			UnitCost:            l.UnitCost,
		})
	}
	return out
}
