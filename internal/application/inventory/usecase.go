package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/inventory"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// UseCase operaciones del ledger expuestas a la API: entradas manuales, ajustes, traslados,
// cambio de estado y consultas de existencias. Todas las escrituras corren en una transacción.
type UseCase struct {
	store  ports.Store
	ledger *Ledger
	policy shared.ApprovalPolicy
	events ports.EventPublisher
	log    *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(store ports.Store, ledger *Ledger, policy shared.ApprovalPolicy, events ports.EventPublisher, log *logger.Logger) *UseCase {
	return &UseCase{store: store, ledger: ledger, policy: policy, events: events, log: log}
}

// ReceiveStock entrada manual de mercancía (sin orden de compra).
func (uc *UseCase) ReceiveStock(ctx context.Context, actor shared.Actor, in dto.ReceiveStockRequest) (*dto.StockItemResponse, error) {
	if in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	var ev shared.Events
	var item *entity.StockItem
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		var err error
		item, err = uc.ledger.Receive(ctx, r, actor, ReceiveInput{
			ProductID:     in.ProductID,
			WarehouseID:   in.WarehouseID,
			LocationID:    in.LocationID,
			BatchNumber:   in.BatchNumber,
			SerialNumber:  in.SerialNumber,
			ExpiryDate:    in.ExpiryDate,
			Quantity:      in.Quantity,
			UnitCost:      in.UnitCost,
			MovementType:  entity.MovementPurchaseReceipt,
			ReferenceType: entity.RefManual,
			Notes:         in.Notes,
		})
		if err != nil {
			return err
		}
		ev.Add(ports.EventStockMoved, actor.CompanyID, item.ProductID, stockMovedPayload(item, entity.MovementPurchaseReceipt, in.Quantity))
		return shared.Audit(ctx, r, actor, "inventory.receive", "stock_item", item.ID, in)
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	return ToStockItemResponse(item), nil
}

// AdjustStock fija la cantidad de un bucket (o crea uno nuevo). Si el cambio supera los umbrales
// queda PENDING_APPROVAL con una solicitud de aprobación; si no, se aplica de inmediato.
func (uc *UseCase) AdjustStock(ctx context.Context, actor shared.Actor, in dto.AdjustStockRequest) (*dto.AdjustmentResponse, error) {
	if in.NewQuantity.IsNegative() || in.Reason == "" {
		return nil, fmt.Errorf("%w: cantidad nueva >= 0 y motivo son obligatorios", domain.ErrInvalidInput)
	}
	var ev shared.Events
	var adj *entity.InventoryAdjustment
	var approvalID string
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		var err error
		adj, err = uc.buildAdjustment(ctx, r, actor, in)
		if err != nil {
			return err
		}
		adj.Number, err = shared.NextNumber(ctx, r, actor.CompanyID, shared.PrefixAdjustment)
		if err != nil {
			return err
		}

		if uc.policy.AdjustmentNeedsApproval(adj.Delta(), adj.UnitCost) {
			adj.Status = entity.MutationPendingApproval
			if err := r.Adjustments.Create(ctx, adj); err != nil {
				return err
			}
			req, err := shared.RequestApproval(ctx, r, actor, entity.ApprovalEntityAdjustment, adj.ID,
				fmt.Sprintf("Ajuste %s: %s → %s (%s)", adj.Number, adj.QuantityBefore, adj.QuantityAfter, adj.Reason))
			if err != nil {
				return err
			}
			approvalID = req.ID
			return shared.Audit(ctx, r, actor, "inventory.adjust.requested", "adjustment", adj.ID, in)
		}

		adj.Status = entity.MutationPendingApproval
		if err := r.Adjustments.Create(ctx, adj); err != nil {
			return err
		}
		if err := uc.ledger.ApplyAdjustment(ctx, r, actor, adj); err != nil {
			return err
		}
		if err := r.Adjustments.Update(ctx, adj); err != nil {
			return err
		}
		ev.Add(ports.EventStockMoved, actor.CompanyID, adj.ProductID, map[string]any{
			"stock_item_id": adj.StockItemID,
			"type":          entity.MovementAdjustment,
			"quantity":      adj.Delta(),
		})
		return shared.Audit(ctx, r, actor, "inventory.adjust", "adjustment", adj.ID, in)
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	out := toAdjustmentResponse(adj)
	out.ApprovalRequestID = approvalID
	return out, nil
}

func (uc *UseCase) buildAdjustment(ctx context.Context, r ports.TxRepos, actor shared.Actor, in dto.AdjustStockRequest) (*entity.InventoryAdjustment, error) {
	now := shared.Now()
	adj := &entity.InventoryAdjustment{
		ID:            shared.NewID(),
		CompanyID:     actor.CompanyID,
		QuantityAfter: in.NewQuantity,
		Reason:        in.Reason,
		RequestedBy:   actor.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.StockItemID != "" {
		item, err := r.StockItems.GetForUpdate(ctx, actor.CompanyID, in.StockItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrNotFound
		}
		if in.NewQuantity.LessThan(item.ReservedQuantity) {
			return nil, domain.ErrReservedStock
		}
		adj.StockItemID = item.ID
		adj.ProductID = item.ProductID
		adj.WarehouseID = item.WarehouseID
		adj.LocationID = item.LocationID
		adj.BatchNumber = item.BatchNumber
		adj.SerialNumber = item.SerialNumber
		adj.ExpiryDate = item.ExpiryDate
		adj.QuantityBefore = item.Quantity
		adj.UnitCost = item.UnitCost
		return adj, nil
	}

	// bucket nuevo: se valida como una entrada
	product, err := r.Products.GetByID(ctx, actor.CompanyID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if !in.NewQuantity.IsPositive() {
		return nil, fmt.Errorf("%w: un bucket nuevo necesita cantidad positiva", domain.ErrInvalidInput)
	}
	if err := uc.ledger.checkPlace(ctx, r, actor.CompanyID, in.WarehouseID, in.LocationID); err != nil {
		return nil, err
	}
	qtyForTracking := in.NewQuantity
	if product.TrackSerial {
		qtyForTracking = decimal.NewFromInt(1)
		if !in.NewQuantity.Equal(qtyForTracking) {
			return nil, fmt.Errorf("%w: un producto serializado entra de a una unidad", domain.ErrInvalidInput)
		}
	}
	if err := inventory.ValidateTracking(product, in.BatchNumber, in.SerialNumber, in.ExpiryDate, qtyForTracking); err != nil {
		return nil, err
	}
	in.BatchNumber = bucketBatch(in.BatchNumber, in.ExpiryDate)
	if product.TrackSerial {
		if err := checkSerialFree(ctx, r, actor.CompanyID, product.ID, in.SerialNumber); err != nil {
			return nil, err
		}
	}
	existing, err := r.StockItems.FindByKeyForUpdate(ctx, actor.CompanyID, entity.BucketKey{
		ProductID:    product.ID,
		WarehouseID:  in.WarehouseID,
		LocationID:   in.LocationID,
		BatchNumber:  in.BatchNumber,
		SerialNumber: in.SerialNumber,
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el bucket ya existe (%s), ajústelo por su ID", domain.ErrDuplicate, existing.ID)
	}
	adj.ProductID = product.ID
	adj.WarehouseID = in.WarehouseID
	adj.LocationID = in.LocationID
	adj.BatchNumber = in.BatchNumber
	adj.SerialNumber = in.SerialNumber
	adj.ExpiryDate = in.ExpiryDate
	adj.QuantityBefore = decimal.Zero
	adj.UnitCost = product.Cost
	return adj, nil
}

// TransferStock traslada cantidad de un bucket a otra bodega o ubicación.
// Por encima del umbral de traslado queda PENDING_APPROVAL.
func (uc *UseCase) TransferStock(ctx context.Context, actor shared.Actor, in dto.TransferStockRequest) (*dto.TransferResponse, error) {
	if in.StockItemID == "" || in.ToWarehouseID == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	var ev shared.Events
	var t *entity.StockTransfer
	var approvalID string
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		src, err := r.StockItems.GetForUpdate(ctx, actor.CompanyID, in.StockItemID)
		if err != nil {
			return err
		}
		if src == nil {
			return domain.ErrNotFound
		}
		if src.WarehouseID == in.ToWarehouseID && src.LocationID == in.ToLocationID {
			return fmt.Errorf("%w: origen y destino son iguales", domain.ErrInvalidInput)
		}
		if err := uc.ledger.checkPlace(ctx, r, actor.CompanyID, in.ToWarehouseID, in.ToLocationID); err != nil {
			return err
		}
		if src.Available().LessThan(in.Quantity) {
			return domain.ErrInsufficientStock
		}
		now := shared.Now()
		t = &entity.StockTransfer{
			ID:                shared.NewID(),
			CompanyID:         actor.CompanyID,
			SourceStockItemID: src.ID,
			ProductID:         src.ProductID,
			FromWarehouseID:   src.WarehouseID,
			FromLocationID:    src.LocationID,
			ToWarehouseID:     in.ToWarehouseID,
			ToLocationID:      in.ToLocationID,
			Quantity:          in.Quantity,
			Status:            entity.MutationPendingApproval,
			Notes:             in.Notes,
			RequestedBy:       actor.UserID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		t.Number, err = shared.NextNumber(ctx, r, actor.CompanyID, shared.PrefixTransfer)
		if err != nil {
			return err
		}
		if err := r.Transfers.Create(ctx, t); err != nil {
			return err
		}

		if uc.policy.TransferNeedsApproval(in.Quantity) {
			req, err := shared.RequestApproval(ctx, r, actor, entity.ApprovalEntityTransfer, t.ID,
				fmt.Sprintf("Traslado %s: %s unidades a bodega %s", t.Number, t.Quantity, t.ToWarehouseID))
			if err != nil {
				return err
			}
			approvalID = req.ID
			return shared.Audit(ctx, r, actor, "inventory.transfer.requested", "transfer", t.ID, in)
		}

		if err := uc.ledger.ExecuteTransfer(ctx, r, actor, t); err != nil {
			return err
		}
		if err := r.Transfers.Update(ctx, t); err != nil {
			return err
		}
		ev.Add(ports.EventStockMoved, actor.CompanyID, t.ProductID, map[string]any{
			"transfer_id": t.ID,
			"type":        entity.MovementTransferOut,
			"from":        t.FromWarehouseID,
			"to":          t.ToWarehouseID,
			"quantity":    t.Quantity,
		})
		return shared.Audit(ctx, r, actor, "inventory.transfer", "transfer", t.ID, in)
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	out := toTransferResponse(t)
	out.ApprovalRequestID = approvalID
	return out, nil
}

// ChangeStatus mueve un bucket entre AVAILABLE, QUARANTINE y DAMAGED.
// Un bucket con reservas activas no puede salir de AVAILABLE.
func (uc *UseCase) ChangeStatus(ctx context.Context, actor shared.Actor, stockItemID, status string) (*dto.StockItemResponse, error) {
	if !entity.IsValidStockStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	var item *entity.StockItem
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		var err error
		item, err = r.StockItems.GetForUpdate(ctx, actor.CompanyID, stockItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.Status == status {
			return nil
		}
		if item.Status == entity.StockStatusAvailable {
			n, err := r.Reservations.CountActiveByStockItem(ctx, actor.CompanyID, item.ID)
			if err != nil {
				return err
			}
			if n > 0 || item.ReservedQuantity.IsPositive() {
				return fmt.Errorf("%w: el bucket tiene reservas activas", domain.ErrConflict)
			}
		}
		from := item.Status
		item.Status = status
		item.UpdatedAt = shared.Now()
		if err := r.StockItems.Save(ctx, item); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "inventory.status", "stock_item", item.ID, map[string]string{"from": from, "to": status})
	})
	if err != nil {
		return nil, err
	}
	return ToStockItemResponse(item), nil
}

// GetStockItem devuelve un bucket.
func (uc *UseCase) GetStockItem(ctx context.Context, companyID, id string) (*dto.StockItemResponse, error) {
	item, err := uc.store.Repos().StockItems.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return ToStockItemResponse(item), nil
}

// Availability existencias por bucket y totales de un producto; warehouseID vacío = todas las bodegas.
func (uc *UseCase) Availability(ctx context.Context, companyID, productID, warehouseID string) (*dto.AvailabilityResponse, error) {
	repos := uc.store.Repos()
	product, err := repos.Products.GetByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	items, err := repos.StockItems.ListByProduct(ctx, companyID, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	out := &dto.AvailabilityResponse{
		ProductID: productID,
		OnHand:    decimal.Zero,
		Reserved:  decimal.Zero,
		Available: decimal.Zero,
		Items:     make([]dto.StockItemResponse, 0, len(items)),
	}
	for _, it := range items {
		out.OnHand = out.OnHand.Add(it.Quantity)
		out.Reserved = out.Reserved.Add(it.ReservedQuantity)
		if it.Status == entity.StockStatusAvailable {
			out.Available = out.Available.Add(it.Available())
		}
		out.Items = append(out.Items, *ToStockItemResponse(it))
	}
	return out, nil
}

// ListMovements historial del kardex con filtros y paginación.
func (uc *UseCase) ListMovements(ctx context.Context, f repository.MovementFilter) (*dto.MovementListResponse, error) {
	if f.Type != "" && !entity.IsValidMovementType(f.Type) {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, f.Type)
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	list, total, err := uc.store.Repos().Movements.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.MovementResponse{
			ID:             m.ID,
			StockItemID:    m.StockItemID,
			ProductID:      m.ProductID,
			WarehouseID:    m.WarehouseID,
			LocationID:     m.LocationID,
			BatchNumber:    m.BatchNumber,
			SerialNumber:   m.SerialNumber,
			Type:           m.Type,
			Quantity:       m.Quantity,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			UnitCost:       m.UnitCost,
			ReferenceType:  m.ReferenceType,
			ReferenceID:    m.ReferenceID,
			CreatedBy:      m.CreatedBy,
			CreatedAt:      m.CreatedAt,
		})
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// ListAdjustments ajustes por estado.
func (uc *UseCase) ListAdjustments(ctx context.Context, f repository.OrderFilter) ([]dto.AdjustmentResponse, error) {
	list, err := uc.store.Repos().Adjustments.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AdjustmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, *toAdjustmentResponse(a))
	}
	return out, nil
}

// ListTransfers traslados por estado.
func (uc *UseCase) ListTransfers(ctx context.Context, f repository.OrderFilter) ([]dto.TransferResponse, error) {
	list, err := uc.store.Repos().Transfers.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTransferResponse(t))
	}
	return out, nil
}

func stockMovedPayload(item *entity.StockItem, movementType string, qty decimal.Decimal) map[string]any {
	return map[string]any{
		"stock_item_id": item.ID,
		"warehouse_id":  item.WarehouseID,
		"type":          movementType,
		"quantity":      qty,
		"on_hand":       item.Quantity,
	}
}

// ToStockItemResponse convierte un bucket a DTO.
func ToStockItemResponse(s *entity.StockItem) *dto.StockItemResponse {
	return &dto.StockItemResponse{
		ID:               s.ID,
		ProductID:        s.ProductID,
		WarehouseID:      s.WarehouseID,
		LocationID:       s.LocationID,
		BatchNumber:      s.BatchNumber,
		SerialNumber:     s.SerialNumber,
		ExpiryDate:       s.ExpiryDate,
		Quantity:         s.Quantity,
		ReservedQuantity: s.ReservedQuantity,
		Available:        s.Available(),
		UnitCost:         s.UnitCost,
		Status:           s.Status,
		UpdatedAt:        s.UpdatedAt,
	}
}

func toAdjustmentResponse(a *entity.InventoryAdjustment) *dto.AdjustmentResponse {
	return &dto.AdjustmentResponse{
		ID:             a.ID,
		Number:         a.Number,
		StockItemID:    a.StockItemID,
		ProductID:      a.ProductID,
		WarehouseID:    a.WarehouseID,
		QuantityBefore: a.QuantityBefore,
		QuantityAfter:  a.QuantityAfter,
		Reason:         a.Reason,
		Status:         a.Status,
		RequestedBy:    a.RequestedBy,
		ApprovedBy:     a.ApprovedBy,
		CreatedAt:      a.CreatedAt,
	}
}

func toTransferResponse(t *entity.StockTransfer) *dto.TransferResponse {
	return &dto.TransferResponse{
		ID:                t.ID,
		Number:            t.Number,
		SourceStockItemID: t.SourceStockItemID,
		DestStockItemID:   t.DestStockItemID,
		ProductID:         t.ProductID,
		FromWarehouseID:   t.FromWarehouseID,
		ToWarehouseID:     t.ToWarehouseID,
		ToLocationID:      t.ToLocationID,
		Quantity:          t.Quantity,
		Status:            t.Status,
		CreatedAt:         t.CreatedAt,
	}
}
