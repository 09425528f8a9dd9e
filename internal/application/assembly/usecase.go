package assembly

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Bodega-api/internal/domain/inventory"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// UseCase kits (lista de materiales) y órdenes de ensamble/desensamble.
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

// CreateKit registra la lista de materiales de un producto marcado como kit.
func (uc *UseCase) CreateKit(ctx context.Context, actor shared.Actor, in dto.CreateKitRequest) (*dto.KitResponse, error) {
	if in.ProductID == "" || len(in.Components) == 0 {
		return nil, fmt.Errorf("%w: producto y componentes son obligatorios", domain.ErrInvalidInput)
	}
	var kit *entity.Kit
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		product, err := r.Products.GetByID(ctx, actor.CompanyID, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		if !product.IsKit {
			return fmt.Errorf("%w: el producto %s no está marcado como kit", domain.ErrInvalidInput, product.SKU)
		}
		existing, err := r.Kits.GetByProduct(ctx, actor.CompanyID, product.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: el producto ya tiene kit", domain.ErrDuplicate)
		}
		now := shared.Now()
		kit = &entity.Kit{
			ID:        shared.NewID(),
			CompanyID: actor.CompanyID,
			ProductID: product.ID,
			Name:      in.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if kit.Name == "" {
			kit.Name = product.Name
		}
		seen := make(map[string]bool, len(in.Components))
		for _, c := range in.Components {
			if c.ProductID == product.ID {
				return fmt.Errorf("%w: el kit no puede ser componente de sí mismo", domain.ErrInvalidInput)
			}
			if seen[c.ProductID] {
				return fmt.Errorf("%w: componente %s repetido", domain.ErrInvalidInput, c.ProductID)
			}
			seen[c.ProductID] = true
			if !c.Quantity.IsPositive() {
				return fmt.Errorf("%w: cantidad de componente debe ser mayor a cero", domain.ErrInvalidInput)
			}
			comp, err := r.Products.GetByID(ctx, actor.CompanyID, c.ProductID)
			if err != nil {
				return err
			}
			if comp == nil {
				return fmt.Errorf("%w: componente %s", domain.ErrNotFound, c.ProductID)
			}
			if comp.TrackSerial {
				return fmt.Errorf("%w: componentes serializados no se ensamblan por lote", domain.ErrInvalidInput)
			}
			kit.Components = append(kit.Components, &entity.KitComponent{
				ID:        shared.NewID(),
				KitID:     kit.ID,
				ProductID: comp.ID,
				Quantity:  c.Quantity,
			})
		}
		if err := r.Kits.Create(ctx, kit); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "kit.create", "kit", kit.ID, in)
	})
	if err != nil {
		return nil, err
	}
	return ToKitResponse(kit), nil
}

// Assemble consume componentes por FEFO y produce el kit al costo de lo consumido.
func (uc *UseCase) Assemble(ctx context.Context, actor shared.Actor, kitID string, in dto.AssembleRequest) (*dto.AssemblyOrderResponse, error) {
	if in.WarehouseID == "" || !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: bodega y cantidad mayor a cero son obligatorias", domain.ErrInvalidInput)
	}
	var order *entity.AssemblyOrder
	var ev shared.Events
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		kit, product, err := uc.loadKit(ctx, r, actor.CompanyID, kitID)
		if err != nil {
			return err
		}
		if product.TrackSerial {
			return fmt.Errorf("%w: un kit serializado no se ensambla por lote", domain.ErrInvalidInput)
		}
		order, err = uc.newOrder(ctx, r, actor, kit, entity.AssemblyAssemble, in.WarehouseID, in.LocationID, in.Quantity)
		if err != nil {
			return err
		}

		total := decimal.Zero
		var earliest *time.Time
		for _, c := range kit.Components {
			need := c.Quantity.Mul(in.Quantity)
			plan, err := uc.ledger.Allocate(ctx, r, actor.CompanyID, c.ProductID, in.WarehouseID, need)
			if err != nil {
				return err
			}
			for _, a := range plan {
				item, err := r.StockItems.GetForUpdate(ctx, actor.CompanyID, a.Item.ID)
				if err != nil {
					return err
				}
				if item == nil {
					return domain.ErrNotFound
				}
				if err := uc.ledger.ConsumeAvailable(ctx, r, actor, item, a.Quantity, entity.MovementAssemblyConsume, entity.RefAssembly, order.ID); err != nil {
					return err
				}
				total = total.Add(a.Quantity.Mul(item.UnitCost))
				if item.ExpiryDate != nil && (earliest == nil || item.ExpiryDate.Before(*earliest)) {
					earliest = item.ExpiryDate
				}
				ev.Add(ports.EventStockMoved, actor.CompanyID, item.ProductID, map[string]any{
					"stock_item_id": item.ID,
					"type":          entity.MovementAssemblyConsume,
					"quantity":      a.Quantity.Neg(),
				})
			}
		}
		order.UnitCost = total.Div(in.Quantity).Round(4)

		rin := inventory.ReceiveInput{
			ProductID:     product.ID,
			WarehouseID:   in.WarehouseID,
			LocationID:    in.LocationID,
			Quantity:      in.Quantity,
			UnitCost:      order.UnitCost,
			MovementType:  entity.MovementAssemblyProduce,
			ReferenceType: entity.RefAssembly,
			ReferenceID:   order.ID,
		}
		if product.TrackBatch {
			rin.BatchNumber = order.Number
		}
		if product.TrackExpiry {
			// el kit vence con su componente más próximo a vencer
			rin.ExpiryDate = earliest
		}
		produced, err := uc.ledger.Receive(ctx, r, actor, rin)
		if err != nil {
			return err
		}
		ev.Add(ports.EventStockMoved, actor.CompanyID, product.ID, map[string]any{
			"stock_item_id": produced.ID,
			"type":          entity.MovementAssemblyProduce,
			"quantity":      in.Quantity,
		})
		if err := r.Assemblies.Create(ctx, order); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "assembly.assemble", "assembly_order", order.ID, in)
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	return ToAssemblyOrderResponse(order), nil
}

// Disassemble consume unidades de un bucket del kit y devuelve los componentes.
// El costo del kit se reparte entre componentes en proporción a su costo promedio.
func (uc *UseCase) Disassemble(ctx context.Context, actor shared.Actor, kitID string, in dto.DisassembleRequest) (*dto.AssemblyOrderResponse, error) {
	if in.StockItemID == "" || !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: bucket y cantidad son obligatorios", domain.ErrInvalidInput)
	}
	var order *entity.AssemblyOrder
	var ev shared.Events
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		kit, _, err := uc.loadKit(ctx, r, actor.CompanyID, kitID)
		if err != nil {
			return err
		}
		item, err := r.StockItems.GetForUpdate(ctx, actor.CompanyID, in.StockItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.ProductID != kit.ProductID {
			return fmt.Errorf("%w: el bucket no es del kit", domain.ErrInvalidInput)
		}
		order, err = uc.newOrder(ctx, r, actor, kit, entity.AssemblyDisassemble, item.WarehouseID, item.LocationID, in.Quantity)
		if err != nil {
			return err
		}
		order.UnitCost = item.UnitCost
		if err := uc.ledger.ConsumeAvailable(ctx, r, actor, item, in.Quantity, entity.MovementAssemblyConsume, entity.RefAssembly, order.ID); err != nil {
			return err
		}
		ev.Add(ports.EventStockMoved, actor.CompanyID, item.ProductID, map[string]any{
			"stock_item_id": item.ID,
			"type":          entity.MovementAssemblyConsume,
			"quantity":      in.Quantity.Neg(),
		})

		costs := make(map[string]decimal.Decimal, len(kit.Components))
		products := make(map[string]*entity.Product, len(kit.Components))
		for _, c := range kit.Components {
			p, err := r.Products.GetByID(ctx, actor.CompanyID, c.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: componente %s", domain.ErrNotFound, c.ProductID)
			}
			products[p.ID] = p
			costs[p.ID] = p.Cost
		}
		for _, c := range kit.Components {
			p := products[c.ProductID]
			rin := inventory.ReceiveInput{
				ProductID:     p.ID,
				WarehouseID:   item.WarehouseID,
				LocationID:    item.LocationID,
				Quantity:      c.Quantity.Mul(in.Quantity),
				UnitCost:      componentCost(kit.Components, costs, c, item.UnitCost),
				MovementType:  entity.MovementAssemblyProduce,
				ReferenceType: entity.RefAssembly,
				ReferenceID:   order.ID,
			}
			if p.TrackBatch {
				rin.BatchNumber = order.Number
			}
			if p.TrackExpiry {
				rin.ExpiryDate = item.ExpiryDate
			}
			back, err := uc.ledger.Receive(ctx, r, actor, rin)
			if err != nil {
				return err
			}
			ev.Add(ports.EventStockMoved, actor.CompanyID, p.ID, map[string]any{
				"stock_item_id": back.ID,
				"type":          entity.MovementAssemblyProduce,
				"quantity":      rin.Quantity,
			})
		}
		if err := r.Assemblies.Create(ctx, order); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "assembly.disassemble", "assembly_order", order.ID, in)
	})
	if err != nil {
		return nil, err
	}
	ev.Flush(ctx, uc.events, uc.log)
	return ToAssemblyOrderResponse(order), nil
}

// componentCost costo unitario de un componente al desarmar un kit de costo kitCost.
func componentCost(components []*entity.KitComponent, costs map[string]decimal.Decimal, c *entity.KitComponent, kitCost decimal.Decimal) decimal.Decimal {
	qty := make(map[string]decimal.Decimal, len(components))
	units := decimal.Zero
	for _, k := range components {
		qty[k.ProductID] = k.Quantity
		units = units.Add(k.Quantity)
	}
	base := domaininv.AssemblyUnitCost(qty, costs)
	if base.IsZero() {
		// sin costos de referencia se reparte por unidades
		return kitCost.Div(units).Round(4)
	}
	return costs[c.ProductID].Mul(kitCost).Div(base).Round(4)
}

// ListKits kits de la empresa.
func (uc *UseCase) ListKits(ctx context.Context, companyID string) ([]dto.KitResponse, error) {
	list, err := uc.store.Repos().Kits.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.KitResponse, 0, len(list))
	for _, k := range list {
		out = append(out, *ToKitResponse(k))
	}
	return out, nil
}

// GetKit obtiene un kit con sus componentes.
func (uc *UseCase) GetKit(ctx context.Context, companyID, id string) (*dto.KitResponse, error) {
	kit, err := uc.store.Repos().Kits.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if kit == nil {
		return nil, domain.ErrNotFound
	}
	return ToKitResponse(kit), nil
}

// ListOrders historial de ensambles de un kit.
func (uc *UseCase) ListOrders(ctx context.Context, companyID, kitID string) ([]dto.AssemblyOrderResponse, error) {
	list, err := uc.store.Repos().Assemblies.ListByKit(ctx, companyID, kitID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AssemblyOrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, *ToAssemblyOrderResponse(o))
	}
	return out, nil
}

func (uc *UseCase) loadKit(ctx context.Context, r ports.TxRepos, companyID, kitID string) (*entity.Kit, *entity.Product, error) {
	kit, err := r.Kits.GetByID(ctx, companyID, kitID)
	if err != nil {
		return nil, nil, err
	}
	if kit == nil {
		return nil, nil, domain.ErrNotFound
	}
	product, err := r.Products.GetByID(ctx, companyID, kit.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, fmt.Errorf("%w: producto del kit", domain.ErrNotFound)
	}
	return kit, product, nil
}

func (uc *UseCase) newOrder(ctx context.Context, r ports.TxRepos, actor shared.Actor, kit *entity.Kit, kind, warehouseID, locationID string, qty decimal.Decimal) (*entity.AssemblyOrder, error) {
	number, err := shared.NextNumber(ctx, r, actor.CompanyID, shared.PrefixAssembly)
	if err != nil {
		return nil, err
	}
	return &entity.AssemblyOrder{
		ID:          shared.NewID(),
		CompanyID:   actor.CompanyID,
		Number:      number,
		KitID:       kit.ID,
		Type:        kind,
		WarehouseID: warehouseID,
		LocationID:  locationID,
		Quantity:    qty,
		UnitCost:    decimal.Zero,
		CreatedBy:   actor.UserID,
		CreatedAt:   shared.Now(),
	}, nil
}

// ToKitResponse convierte el kit a DTO.
func ToKitResponse(k *entity.Kit) *dto.KitResponse {
	out := &dto.KitResponse{
		ID:         k.ID,
		ProductID:  k.ProductID,
		Name:       k.Name,
		Components: make([]dto.KitComponentRequest, 0, len(k.Components)),
		CreatedAt:  k.CreatedAt,
	}
	for _, c := range k.Components {
		out.Components = append(out.Components, dto.KitComponentRequest{ProductID: c.ProductID, Quantity: c.Quantity})
	}
	return out
}

// ToAssemblyOrderResponse convierte la orden a DTO.
func ToAssemblyOrderResponse(o *entity.AssemblyOrder) *dto.AssemblyOrderResponse {
	return &dto.AssemblyOrderResponse{
		ID:          o.ID,
		Number:      o.Number,
		KitID:       o.KitID,
		Type:        o.Type,
		WarehouseID: o.WarehouseID,
		LocationID:  o.LocationID,
		Quantity:    o.Quantity,
		UnitCost:    o.UnitCost,
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt,
	}
}
