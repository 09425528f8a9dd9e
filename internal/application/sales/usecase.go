package sales

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

// UseCase flujo de órdenes de venta: crear, confirmar (reserva FEFO), despachar y cancelar.
type UseCase struct {
	store  ports.Store
	ledger *inventory.Ledger
	slips  ports.PackingSlipGenerator
	events ports.EventPublisher
	log    *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(store ports.Store, ledger *inventory.Ledger, slips ports.PackingSlipGenerator, events ports.EventPublisher, log *logger.Logger) *UseCase {
	return &UseCase{store: store, ledger: ledger, slips: slips, events: events, log: log}
}

// Create registra la orden en DRAFT. Sin precio unitario se toma el precio del producto.
func (uc *UseCase) Create(ctx context.Context, actor shared.Actor, in dto.CreateSalesOrderRequest) (*dto.SalesOrderResponse, error) {
	if in.WarehouseID == "" || len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: bodega e ítems son obligatorios", domain.ErrInvalidInput)
	}
	var order *entity.SalesOrder
	var ev shared.Events
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		wh, err := r.Warehouses.GetByID(ctx, actor.CompanyID, in.WarehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, in.WarehouseID)
		}
		now := shared.Now()
		order = &entity.SalesOrder{
			ID:           shared.NewID(),
			CompanyID:    actor.CompanyID,
			CustomerName: in.CustomerName,
			WarehouseID:  in.WarehouseID,
			Status:       entity.SalesOrderDraft,
			Notes:        in.Notes,
			Total:        decimal.Zero,
			CreatedBy:    actor.UserID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		for _, it := range in.Items {
			if !it.Quantity.IsPositive() {
				return fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidInput)
			}
			product, err := r.Products.GetByID(ctx, actor.CompanyID, it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
			}
			price := product.Price
			if it.UnitPrice != nil {
				price = *it.UnitPrice
			}
			if price.IsNegative() {
				return fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
			}
			order.Items = append(order.Items, &entity.SalesOrderItem{
				ID:              shared.NewID(),
				SalesOrderID:    order.ID,
				ProductID:       product.ID,
				Quantity:        it.Quantity,
				UnitPrice:       price,
				ShippedQuantity: decimal.Zero,
			})
			order.Total = order.Total.Add(it.Quantity.Mul(price))
		}
		order.Number, err = shared.NextNumber(ctx, r, actor.CompanyID, shared.PrefixSalesOrder)
		if err != nil {
			return err
		}
		if err := r.SalesOrders.Create(ctx, order); err != nil {
			return err
		}
		ev.Add(ports.EventSalesOrderStatus, actor.CompanyID, order.ID, statusPayload(order))
		return shared.Audit(ctx, r, actor, "sales_order.create", "sales_order", order.ID, in)
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	return ToSalesOrderResponse(order), nil
}

// Confirm reserva stock FEFO para cada línea en la bodega de la orden. Todo o nada:
// si una línea no alcanza se revierte la transacción completa.
func (uc *UseCase) Confirm(ctx context.Context, actor shared.Actor, id string) (*dto.SalesOrderResponse, error) {
	var order *entity.SalesOrder
	var ev shared.Events
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		var err error
		order, err = uc.lockOrder(ctx, r, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if order.Status != entity.SalesOrderDraft {
			return fmt.Errorf("%w: solo se confirma una orden en DRAFT (actual %s)", domain.ErrInvalidTransition, order.Status)
		}
		now := shared.Now()
		seq := 0
		for _, item := range order.Items {
			plan, err := uc.ledger.Allocate(ctx, r, actor.CompanyID, item.ProductID, order.WarehouseID, item.Quantity)
			if err != nil {
				return err
			}
			for _, a := range plan {
				if err := uc.ledger.Reserve(ctx, r, actor.CompanyID, a.Item.ID, a.Quantity); err != nil {
					return err
				}
				seq++
				res := &entity.StockReservation{
					ID:               shared.NewID(),
					CompanyID:        actor.CompanyID,
					SalesOrderID:     order.ID,
					SalesOrderItemID: item.ID,
					StockItemID:      a.Item.ID,
					Seq:              seq,
					Quantity:         a.Quantity,
					ShippedQuantity:  decimal.Zero,
					Status:           entity.ReservationActive,
					CreatedAt:        now,
					UpdatedAt:        now,
				}
				if err := r.Reservations.Create(ctx, res); err != nil {
					return err
				}
			}
		}
		order.Status = entity.SalesOrderConfirmed
		order.ConfirmedAt = &now
		order.UpdatedAt = now
		if err := r.SalesOrders.Update(ctx, order); err != nil {
			return err
		}
		ev.Add(ports.EventSalesOrderStatus, actor.CompanyID, order.ID, statusPayload(order))
		return shared.Audit(ctx, r, actor, "sales_order.confirm", "sales_order", order.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	return ToSalesOrderResponse(order), nil
}

// Ship despacha cantidades de las líneas consumiendo sus reservas en el orden del plan FEFO.
// Cada línea admite como máximo lo reservado menos lo ya despachado.
func (uc *UseCase) Ship(ctx context.Context, actor shared.Actor, id string, in dto.ShipSalesOrderRequest) (*dto.ShipmentResponse, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: sin líneas para despachar", domain.ErrInvalidInput)
	}
	var shipment *entity.Shipment
	var ev shared.Events
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		order, err := uc.lockOrder(ctx, r, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if order.Status != entity.SalesOrderConfirmed && order.Status != entity.SalesOrderPartiallyFulfilled {
			return fmt.Errorf("%w: no se despacha una orden en %s", domain.ErrInvalidTransition, order.Status)
		}

		// cantidades por línea (líneas repetidas se suman)
		requested := make(map[string]decimal.Decimal, len(in.Lines))
		var lineOrder []string
		for _, l := range in.Lines {
			if !l.Quantity.IsPositive() {
				return fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidInput)
			}
			if order.ItemByID(l.SalesOrderItemID) == nil {
				return fmt.Errorf("%w: línea %s", domain.ErrNotFound, l.SalesOrderItemID)
			}
			if _, seen := requested[l.SalesOrderItemID]; !seen {
				lineOrder = append(lineOrder, l.SalesOrderItemID)
			}
			requested[l.SalesOrderItemID] = requested[l.SalesOrderItemID].Add(l.Quantity)
		}

		reservations, err := r.Reservations.ListActiveByOrder(ctx, actor.CompanyID, order.ID)
		if err != nil {
			return err
		}

		now := shared.Now()
		shipment = &entity.Shipment{
			ID:           shared.NewID(),
			CompanyID:    actor.CompanyID,
			SalesOrderID: order.ID,
			WarehouseID:  order.WarehouseID,
			CreatedBy:    actor.UserID,
			CreatedAt:    now,
		}
		for _, itemID := range lineOrder {
			item := order.ItemByID(itemID)
			remaining := requested[itemID]
			reserved := decimal.Zero
			for _, res := range reservations {
				if res.SalesOrderItemID == itemID {
					reserved = reserved.Add(res.Remaining())
				}
			}
			if remaining.GreaterThan(reserved) {
				return fmt.Errorf("%w: línea %s pide %s y tiene %s reservado", domain.ErrOverShipment, itemID, remaining, reserved)
			}
			for _, res := range reservations {
				if res.SalesOrderItemID != itemID || res.Status != entity.ReservationActive || remaining.IsZero() {
					continue
				}
				take := decimal.Min(res.Remaining(), remaining)
				stock, err := uc.ledger.ConsumeReserved(ctx, r, actor, res, take, entity.RefShipment, shipment.ID)
				if err != nil {
					return err
				}
				shipment.Lines = append(shipment.Lines, &entity.ShipmentLine{
					ID:               shared.NewID(),
					ShipmentID:       shipment.ID,
					SalesOrderItemID: itemID,
					StockItemID:      stock.ID,
					ProductID:        stock.ProductID,
					BatchNumber:      stock.BatchNumber,
					SerialNumber:     stock.SerialNumber,
					Quantity:         take,
				})
				remaining = remaining.Sub(take)
			}
			item.ShippedQuantity = item.ShippedQuantity.Add(requested[itemID])
		}

		next := order.FulfillmentStatus()
		if !order.CanTransition(next) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, order.Status, next)
		}
		order.Status = next
		order.UpdatedAt = now
		shipment.Number, err = shared.NextNumber(ctx, r, actor.CompanyID, shared.PrefixShipment)
		if err != nil {
			return err
		}
		if err := r.Shipments.Create(ctx, shipment); err != nil {
			return err
		}
		if err := r.SalesOrders.Update(ctx, order); err != nil {
			return err
		}
		for _, l := range shipment.Lines {
			ev.Add(ports.EventStockMoved, actor.CompanyID, l.ProductID, map[string]any{
				"stock_item_id": l.StockItemID,
				"type":          entity.MovementSalesShipment,
				"quantity":      l.Quantity.Neg(),
				"shipment_id":   shipment.ID,
			})
		}
		ev.Add(ports.EventSalesOrderStatus, actor.CompanyID, order.ID, statusPayload(order))
		return shared.Audit(ctx, r, actor, "sales_order.ship", "shipment", shipment.ID, in)
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	return ToShipmentResponse(shipment), nil
}

// Cancel libera las reservas activas y pasa la orden a CANCELLED.
// Una orden FULFILLED o ya CANCELLED no se cancela.
func (uc *UseCase) Cancel(ctx context.Context, actor shared.Actor, id string) (*dto.SalesOrderResponse, error) {
	var order *entity.SalesOrder
	var ev shared.Events
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		var err error
		order, err = uc.lockOrder(ctx, r, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if !order.CanTransition(entity.SalesOrderCancelled) {
			return fmt.Errorf("%w: no se cancela una orden en %s", domain.ErrInvalidTransition, order.Status)
		}
		reservations, err := r.Reservations.ListActiveByOrder(ctx, actor.CompanyID, order.ID)
		if err != nil {
			return err
		}
		for _, res := range reservations {
			if err := uc.ledger.Release(ctx, r, res); err != nil {
				return err
			}
		}
		order.Status = entity.SalesOrderCancelled
		order.UpdatedAt = shared.Now()
		if err := r.SalesOrders.Update(ctx, order); err != nil {
			return err
		}
		ev.Add(ports.EventSalesOrderStatus, actor.CompanyID, order.ID, statusPayload(order))
		return shared.Audit(ctx, r, actor, "sales_order.cancel", "sales_order", order.ID, map[string]int{"released": len(reservations)})
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	return ToSalesOrderResponse(order), nil
}

// GetByID obtiene una orden con sus líneas.
func (uc *UseCase) GetByID(ctx context.Context, companyID, id string) (*dto.SalesOrderResponse, error) {
	order, err := uc.store.Repos().SalesOrders.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return ToSalesOrderResponse(order), nil
}

// List lista órdenes por estado con paginación.
func (uc *UseCase) List(ctx context.Context, f repository.OrderFilter) (*dto.SalesOrderListResponse, error) {
	list, err := uc.store.Repos().SalesOrders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.SalesOrderListResponse{
		Items: make([]dto.SalesOrderResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}
	for _, o := range list {
		out.Items = append(out.Items, *ToSalesOrderResponse(o))
	}
	return out, nil
}

// ListShipments despachos de una orden.
func (uc *UseCase) ListShipments(ctx context.Context, companyID, salesOrderID string) ([]dto.ShipmentResponse, error) {
	list, err := uc.store.Repos().Shipments.ListBySalesOrder(ctx, companyID, salesOrderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShipmentResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *ToShipmentResponse(s))
	}
	return out, nil
}

func (uc *UseCase) lockOrder(ctx context.Context, r ports.TxRepos, companyID, id string) (*entity.SalesOrder, error) {
	order, err := r.SalesOrders.GetForUpdate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func statusPayload(o *entity.SalesOrder) map[string]any {
	return map[string]any{"id": o.ID, "number": o.Number, "status": o.Status}
}

// ToSalesOrderResponse convierte la orden a DTO.
func ToSalesOrderResponse(o *entity.SalesOrder) *dto.SalesOrderResponse {
	out := &dto.SalesOrderResponse{
		ID:           o.ID,
		Number:       o.Number,
		CustomerName: o.CustomerName,
		WarehouseID:  o.WarehouseID,
		Status:       o.Status,
		Notes:        o.Notes,
		Total:        o.Total,
		Items:        make([]dto.SalesOrderItemResponse, 0, len(o.Items)),
		CreatedBy:    o.CreatedBy,
		ConfirmedAt:  o.ConfirmedAt,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, dto.SalesOrderItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			ShippedQuantity: it.ShippedQuantity,
		})
	}
	return out
}

// ToShipmentResponse convierte el despacho a DTO.
func ToShipmentResponse(s *entity.Shipment) *dto.ShipmentResponse {
	out := &dto.ShipmentResponse{
		ID:           s.ID,
		Number:       s.Number,
		SalesOrderID: s.SalesOrderID,
		WarehouseID:  s.WarehouseID,
		Lines:        make([]dto.ShipmentLineResponse, 0, len(s.Lines)),
		CreatedBy:    s.CreatedBy,
		CreatedAt:    s.CreatedAt,
	}
	for _, l := range s.Lines {
		out.Lines = append(out.Lines, dto.ShipmentLineResponse{
			SalesOrderItemID: l.SalesOrderItemID,
			StockItemID:      l.StockItemID,
			ProductID:        l.ProductID,
			BatchNumber:      l.BatchNumber,
			SerialNumber:     l.SerialNumber,
			Quantity:         l.Quantity,
		})
	}
	return out
}
