package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/inventory"
)

// maxReserveAttempts reintentos del update optimista de reservas.
const maxReserveAttempts = 3

// Ledger operaciones sobre buckets que siempre corren dentro de una transacción abierta
// por el caso de uso que las invoca (ventas, compras, ensambles, aprobaciones).
// Cada cambio de cantidad deja su StockMovement.
type Ledger struct{}

// NewLedger construye el ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// ReceiveInput entrada de mercancía a un bucket.
type ReceiveInput struct {
	ProductID     string
	WarehouseID   string
	LocationID    string
	BatchNumber   string
	SerialNumber  string
	ExpiryDate    *time.Time
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	MovementType  string // PURCHASE_RECEIPT o ASSEMBLY_PRODUCE
	ReferenceType string
	ReferenceID   string
	Notes         string
}

// Receive valida trazabilidad, recalcula el costo promedio del producto y suma al bucket
// (creándolo si no existe).
func (l *Ledger) Receive(ctx context.Context, r ports.TxRepos, actor shared.Actor, in ReceiveInput) (*entity.StockItem, error) {
	if !in.Quantity.IsPositive() || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	// con la fila del producto tomada, costo y stock en mano no cambian hasta el commit
	product, err := r.Products.GetForUpdate(ctx, actor.CompanyID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	if err := l.checkPlace(ctx, r, actor.CompanyID, in.WarehouseID, in.LocationID); err != nil {
		return nil, err
	}
	if err := inventory.ValidateTracking(product, in.BatchNumber, in.SerialNumber, in.ExpiryDate, in.Quantity); err != nil {
		return nil, err
	}
	in.BatchNumber = bucketBatch(in.BatchNumber, in.ExpiryDate)
	if product.TrackSerial {
		if err := checkSerialFree(ctx, r, actor.CompanyID, product.ID, in.SerialNumber); err != nil {
			return nil, err
		}
	}

	// costo promedio ponderado sobre el total en mano de la empresa
	onHand, err := r.StockItems.SumOnHand(ctx, actor.CompanyID, product.ID)
	if err != nil {
		return nil, err
	}
	newCost := inventory.CostCalculator(onHand, product.Cost, in.Quantity, in.UnitCost)
	if err := r.Products.UpdateCost(ctx, actor.CompanyID, product.ID, newCost); err != nil {
		return nil, err
	}

	key := entity.BucketKey{
		ProductID:    product.ID,
		WarehouseID:  in.WarehouseID,
		LocationID:   in.LocationID,
		BatchNumber:  in.BatchNumber,
		SerialNumber: in.SerialNumber,
	}
	item, err := l.lockOrCreate(ctx, r, actor.CompanyID, key, in.ExpiryDate, in.UnitCost, entity.StockStatusAvailable)
	if err != nil {
		return nil, err
	}
	before := item.Quantity
	item.UnitCost = inventory.CostCalculator(before, item.UnitCost, in.Quantity, in.UnitCost)
	item.Quantity = before.Add(in.Quantity)
	if item.ExpiryDate == nil {
		item.ExpiryDate = in.ExpiryDate
	}
	item.UpdatedAt = shared.Now()
	if err := r.StockItems.Save(ctx, item); err != nil {
		return nil, err
	}
	mt := in.MovementType
	if mt == "" {
		mt = entity.MovementPurchaseReceipt
	}
	if err := l.record(ctx, r, actor, item, mt, in.Quantity, before, in.UnitCost, in.ReferenceType, in.ReferenceID, in.Notes); err != nil {
		return nil, err
	}
	return item, nil
}

// Reserve aparta qty del bucket con un update optimista condicionado al reservado leído.
// Si otra operación cambió la fila se relee y reintenta; agotados los intentos devuelve ErrConcurrentUpdate.
func (l *Ledger) Reserve(ctx context.Context, r ports.TxRepos, companyID, stockItemID string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.ErrInvalidInput
	}
	for attempt := 0; attempt < maxReserveAttempts; attempt++ {
		item, err := r.StockItems.GetByID(ctx, companyID, stockItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.Status != entity.StockStatusAvailable || item.Available().LessThan(qty) {
			return domain.ErrInsufficientStock
		}
		ok, err := r.StockItems.TryReserve(ctx, companyID, stockItemID, item.ReservedQuantity, qty)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return domain.ErrConcurrentUpdate
}

// Release libera lo que queda de la reserva y la marca RELEASED.
func (l *Ledger) Release(ctx context.Context, r ports.TxRepos, res *entity.StockReservation) error {
	if res.Status != entity.ReservationActive {
		return nil
	}
	item, err := r.StockItems.GetForUpdate(ctx, res.CompanyID, res.StockItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	item.ReservedQuantity = decimal.Max(item.ReservedQuantity.Sub(res.Remaining()), decimal.Zero)
	item.UpdatedAt = shared.Now()
	if err := r.StockItems.Save(ctx, item); err != nil {
		return err
	}
	res.Status = entity.ReservationReleased
	res.UpdatedAt = item.UpdatedAt
	return r.Reservations.Update(ctx, res)
}

// ConsumeReserved descuenta qty de cantidad y reservado (despacho) y avanza la reserva.
func (l *Ledger) ConsumeReserved(ctx context.Context, r ports.TxRepos, actor shared.Actor, res *entity.StockReservation, qty decimal.Decimal, refType, refID string) (*entity.StockItem, error) {
	if !qty.IsPositive() || qty.GreaterThan(res.Remaining()) {
		return nil, domain.ErrOverShipment
	}
	item, err := r.StockItems.GetForUpdate(ctx, actor.CompanyID, res.StockItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if item.ReservedQuantity.LessThan(qty) || item.Quantity.LessThan(qty) {
		return nil, fmt.Errorf("%w: bucket %s", domain.ErrConflict, item.ID)
	}
	before := item.Quantity
	item.Quantity = item.Quantity.Sub(qty)
	item.ReservedQuantity = item.ReservedQuantity.Sub(qty)
	item.UpdatedAt = shared.Now()
	if err := r.StockItems.Save(ctx, item); err != nil {
		return nil, err
	}
	if err := l.record(ctx, r, actor, item, entity.MovementSalesShipment, qty.Neg(), before, item.UnitCost, refType, refID, ""); err != nil {
		return nil, err
	}
	res.ShippedQuantity = res.ShippedQuantity.Add(qty)
	if !res.Remaining().IsPositive() {
		res.Status = entity.ReservationConsumed
	}
	res.UpdatedAt = item.UpdatedAt
	if err := r.Reservations.Update(ctx, res); err != nil {
		return nil, err
	}
	return item, nil
}

// ConsumeAvailable descuenta qty del disponible (sin reserva previa) de un bucket ya bloqueado.
func (l *Ledger) ConsumeAvailable(ctx context.Context, r ports.TxRepos, actor shared.Actor, item *entity.StockItem, qty decimal.Decimal, movementType, refType, refID string) error {
	if item.Status != entity.StockStatusAvailable || item.Available().LessThan(qty) {
		return domain.ErrInsufficientStock
	}
	before := item.Quantity
	item.Quantity = item.Quantity.Sub(qty)
	item.UpdatedAt = shared.Now()
	if err := r.StockItems.Save(ctx, item); err != nil {
		return err
	}
	return l.record(ctx, r, actor, item, movementType, qty.Neg(), before, item.UnitCost, refType, refID, "")
}

// Allocate arma el plan FEFO de un producto en una bodega.
func (l *Ledger) Allocate(ctx context.Context, r ports.TxRepos, companyID, productID, warehouseID string, qty decimal.Decimal) ([]inventory.Allocation, error) {
	items, err := r.StockItems.ListAllocatable(ctx, companyID, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	plan, err := inventory.PlanFEFO(items, qty)
	if err != nil {
		return nil, fmt.Errorf("producto %s: %w", productID, err)
	}
	return plan, nil
}

// ApplyAdjustment aplica un ajuste. El bucket debe seguir teniendo QuantityBefore;
// si cambió desde que se pidió el ajuste devuelve ErrConflict.
func (l *Ledger) ApplyAdjustment(ctx context.Context, r ports.TxRepos, actor shared.Actor, adj *entity.InventoryAdjustment) error {
	var item *entity.StockItem
	var err error
	if adj.StockItemID != "" {
		item, err = r.StockItems.GetForUpdate(ctx, adj.CompanyID, adj.StockItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
	} else {
		key := entity.BucketKey{
			ProductID:    adj.ProductID,
			WarehouseID:  adj.WarehouseID,
			LocationID:   adj.LocationID,
			BatchNumber:  adj.BatchNumber,
			SerialNumber: adj.SerialNumber,
		}
		item, err = l.lockOrCreate(ctx, r, adj.CompanyID, key, adj.ExpiryDate, adj.UnitCost, entity.StockStatusAvailable)
		if err != nil {
			return err
		}
	}
	if !item.Quantity.Equal(adj.QuantityBefore) {
		return fmt.Errorf("%w: el bucket tiene %s y el ajuste esperaba %s", domain.ErrConflict, item.Quantity, adj.QuantityBefore)
	}
	if adj.QuantityAfter.LessThan(item.ReservedQuantity) {
		return domain.ErrReservedStock
	}
	if item.SerialNumber != "" && adj.QuantityAfter.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: un bucket serializado tiene como máximo una unidad", domain.ErrInvalidInput)
	}
	// el serial pudo entrar por otro bucket mientras el ajuste esperaba aprobación
	if item.SerialNumber != "" && item.Quantity.IsZero() && adj.QuantityAfter.IsPositive() {
		if err := checkSerialFree(ctx, r, adj.CompanyID, item.ProductID, item.SerialNumber); err != nil {
			return err
		}
	}

	item.Quantity = adj.QuantityAfter
	item.UpdatedAt = shared.Now()
	if err := r.StockItems.Save(ctx, item); err != nil {
		return err
	}
	if err := l.record(ctx, r, actor, item, entity.MovementAdjustment, adj.Delta(), adj.QuantityBefore, item.UnitCost, entity.RefAdjustment, adj.ID, adj.Reason); err != nil {
		return err
	}
	adj.StockItemID = item.ID
	adj.Status = entity.MutationApplied
	adj.UpdatedAt = item.UpdatedAt
	return nil
}

// ExecuteTransfer mueve la cantidad al bucket destino (mismo lote, serial y vencimiento).
func (l *Ledger) ExecuteTransfer(ctx context.Context, r ports.TxRepos, actor shared.Actor, t *entity.StockTransfer) error {
	src, err := r.StockItems.GetForUpdate(ctx, t.CompanyID, t.SourceStockItemID)
	if err != nil {
		return err
	}
	if src == nil {
		return domain.ErrNotFound
	}
	key := src.Key()
	key.WarehouseID = t.ToWarehouseID
	key.LocationID = t.ToLocationID
	if key == src.Key() {
		return fmt.Errorf("%w: origen y destino son el mismo bucket", domain.ErrInvalidInput)
	}
	if src.Available().LessThan(t.Quantity) {
		return domain.ErrInsufficientStock
	}
	dst, err := l.lockOrCreate(ctx, r, t.CompanyID, key, src.ExpiryDate, src.UnitCost, src.Status)
	if err != nil {
		return err
	}
	if dst.Status != src.Status {
		return fmt.Errorf("%w: el bucket destino está en estado %s", domain.ErrConflict, dst.Status)
	}
	if dst.SerialNumber != "" && dst.Quantity.IsPositive() {
		return fmt.Errorf("%w: el serial ya está en el destino", domain.ErrConflict)
	}

	now := shared.Now()
	srcBefore, dstBefore := src.Quantity, dst.Quantity
	src.Quantity = src.Quantity.Sub(t.Quantity)
	src.UpdatedAt = now
	dst.UnitCost = inventory.CostCalculator(dstBefore, dst.UnitCost, t.Quantity, src.UnitCost)
	dst.Quantity = dst.Quantity.Add(t.Quantity)
	dst.UpdatedAt = now
	if err := r.StockItems.Save(ctx, src); err != nil {
		return err
	}
	if err := r.StockItems.Save(ctx, dst); err != nil {
		return err
	}
	if err := l.record(ctx, r, actor, src, entity.MovementTransferOut, t.Quantity.Neg(), srcBefore, src.UnitCost, entity.RefTransfer, t.ID, t.Notes); err != nil {
		return err
	}
	if err := l.record(ctx, r, actor, dst, entity.MovementTransferIn, t.Quantity, dstBefore, src.UnitCost, entity.RefTransfer, t.ID, t.Notes); err != nil {
		return err
	}
	t.DestStockItemID = dst.ID
	t.Status = entity.MutationCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}

// checkPlace verifica que la bodega exista y que la ubicación (si viene) pertenezca a ella.
func (l *Ledger) checkPlace(ctx context.Context, r ports.TxRepos, companyID, warehouseID, locationID string) error {
	if warehouseID == "" {
		return fmt.Errorf("%w: bodega requerida", domain.ErrInvalidInput)
	}
	wh, err := r.Warehouses.GetByID(ctx, companyID, warehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	if locationID == "" {
		return nil
	}
	loc, err := r.Locations.GetByID(ctx, companyID, locationID)
	if err != nil {
		return err
	}
	if loc == nil || loc.WarehouseID != warehouseID {
		return fmt.Errorf("%w: ubicación %s no pertenece a la bodega", domain.ErrNotFound, locationID)
	}
	return nil
}

// lockOrCreate bloquea el bucket por llave o crea uno vacío con esa llave.
func (l *Ledger) lockOrCreate(ctx context.Context, r ports.TxRepos, companyID string, key entity.BucketKey, expiry *time.Time, unitCost decimal.Decimal, status string) (*entity.StockItem, error) {
	item, err := r.StockItems.FindByKeyForUpdate(ctx, companyID, key)
	if err != nil {
		return nil, err
	}
	if item != nil {
		return item, nil
	}
	now := shared.Now()
	item = &entity.StockItem{
		ID:               shared.NewID(),
		CompanyID:        companyID,
		ProductID:        key.ProductID,
		WarehouseID:      key.WarehouseID,
		LocationID:       key.LocationID,
		BatchNumber:      key.BatchNumber,
		SerialNumber:     key.SerialNumber,
		ExpiryDate:       expiry,
		Quantity:         decimal.Zero,
		ReservedQuantity: decimal.Zero,
		UnitCost:         unitCost,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := r.StockItems.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (l *Ledger) record(ctx context.Context, r ports.TxRepos, actor shared.Actor, item *entity.StockItem, movementType string, delta, before, unitCost decimal.Decimal, refType, refID, notes string) error {
	if refType == "" {
		refType = entity.RefManual
	}
	return r.Movements.Create(ctx, &entity.StockMovement{
		ID:             shared.NewID(),
		CompanyID:      item.CompanyID,
		StockItemID:    item.ID,
		ProductID:      item.ProductID,
		WarehouseID:    item.WarehouseID,
		LocationID:     item.LocationID,
		BatchNumber:    item.BatchNumber,
		SerialNumber:   item.SerialNumber,
		Type:           movementType,
		Quantity:       delta,
		QuantityBefore: before,
		QuantityAfter:  before.Add(delta),
		UnitCost:       unitCost,
		ReferenceType:  refType,
		ReferenceID:    refID,
		Notes:          notes,
		CreatedBy:      actor.UserID,
		CreatedAt:      shared.Now(),
	})
}

// bucketBatch sin lote, el vencimiento (YYYYMMDD) distingue el bucket.
func bucketBatch(batch string, expiry *time.Time) string {
	if batch == "" && expiry != nil {
		return expiry.Format("20060102")
	}
	return batch
}

func checkSerialFree(ctx context.Context, r ports.TxRepos, companyID, productID, serial string) error {
	exists, err := r.StockItems.SerialInStock(ctx, companyID, productID, serial)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: serial %s ya está en inventario", domain.ErrDuplicate, serial)
	}
	return nil
}
