package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/inventory"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var (
	_ repository.StockItemRepository     = (*StockItemRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
	_ repository.ReservationRepository   = (*ReservationRepo)(nil)
	_ repository.AdjustmentRepository    = (*AdjustmentRepo)(nil)
	_ repository.TransferRepository      = (*TransferRepo)(nil)
)

// StockItemRepo buckets en memoria. La llave del bucket es única por empresa.
type StockItemRepo struct{ *db }

func (r *StockItemRepo) Create(_ context.Context, item *entity.StockItem) error {
	defer r.lock()()
	st := r.state()
	key := item.Key()
	for _, s := range st.stock {
		if s.CompanyID == item.CompanyID && s.Key() == key {
			return domain.ErrDuplicate
		}
	}
	st.stock[item.ID] = *item
	return nil
}

func (r *StockItemRepo) GetByID(_ context.Context, companyID, id string) (*entity.StockItem, error) {
	defer r.lock()()
	if s, ok := r.state().stock[id]; ok && s.CompanyID == companyID {
		return &s, nil
	}
	return nil, nil
}

// GetForUpdate igual que GetByID: dentro de Run el estado ya es exclusivo.
func (r *StockItemRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.StockItem, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *StockItemRepo) FindByKeyForUpdate(_ context.Context, companyID string, key entity.BucketKey) (*entity.StockItem, error) {
	defer r.lock()()
	for _, s := range r.state().stock {
		if s.CompanyID == companyID && s.Key() == key {
			return &s, nil
		}
	}
	return nil, nil
}

func (r *StockItemRepo) Save(_ context.Context, item *entity.StockItem) error {
	defer r.lock()()
	st := r.state()
	cur, ok := st.stock[item.ID]
	if !ok || cur.CompanyID != item.CompanyID {
		return domain.ErrNotFound
	}
	if !item.Valid() {
		return domain.ErrInvalidInput
	}
	st.stock[item.ID] = *item
	return nil
}

func (r *StockItemRepo) TryReserve(_ context.Context, companyID, id string, expectedReserved, qty decimal.Decimal) (bool, error) {
	defer r.lock()()
	st := r.state()
	s, ok := st.stock[id]
	if !ok || s.CompanyID != companyID {
		return false, domain.ErrNotFound
	}
	if !s.ReservedQuantity.Equal(expectedReserved) || s.Available().LessThan(qty) || s.Status != entity.StockStatusAvailable {
		return false, nil
	}
	s.ReservedQuantity = s.ReservedQuantity.Add(qty)
	s.UpdatedAt = time.Now().UTC()
	st.stock[id] = s
	return true, nil
}

func (r *StockItemRepo) ListAllocatable(_ context.Context, companyID, productID, warehouseID string) ([]*entity.StockItem, error) {
	defer r.lock()()
	var list []*entity.StockItem
	for _, s := range r.state().stock {
		if s.CompanyID != companyID || s.ProductID != productID {
			continue
		}
		if warehouseID != "" && s.WarehouseID != warehouseID {
			continue
		}
		if s.Allocatable() {
			list = append(list, ptr(s))
		}
	}
	inventory.SortFEFO(list)
	return list, nil
}

func (r *StockItemRepo) ListByProduct(_ context.Context, companyID, productID, warehouseID string) ([]*entity.StockItem, error) {
	defer r.lock()()
	var list []*entity.StockItem
	for _, s := range r.state().stock {
		if s.CompanyID != companyID || s.ProductID != productID {
			continue
		}
		if warehouseID != "" && s.WarehouseID != warehouseID {
			continue
		}
		list = append(list, ptr(s))
	}
	byCreated(list, func(s *entity.StockItem) time.Time { return s.CreatedAt }, func(s *entity.StockItem) string { return s.ID })
	return list, nil
}

func (r *StockItemRepo) SumOnHand(_ context.Context, companyID, productID string) (decimal.Decimal, error) {
	defer r.lock()()
	total := decimal.Zero
	for _, s := range r.state().stock {
		if s.CompanyID == companyID && s.ProductID == productID {
			total = total.Add(s.Quantity)
		}
	}
	return total, nil
}

func (r *StockItemRepo) SerialInStock(_ context.Context, companyID, productID, serial string) (bool, error) {
	defer r.lock()()
	for _, s := range r.state().stock {
		if s.CompanyID == companyID && s.ProductID == productID && s.SerialNumber == serial && s.Quantity.IsPositive() {
			return true, nil
		}
	}
	return false, nil
}

// MovementRepo kardex en memoria (append-only).
type MovementRepo struct{ *db }

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	defer r.lock()()
	st := r.state()
	st.movements = append(st.movements, *m)
	return nil
}

// List devuelve los movimientos más recientes primero junto con el total filtrado.
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	defer r.lock()()
	var list []*entity.StockMovement
	for _, m := range r.state().movements {
		if m.CompanyID != f.CompanyID {
			continue
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		list = append(list, ptr(m))
	}
	// el slice ya está en orden de inserción; se invierte para mostrar lo último primero
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return page(list, f.Limit, f.Offset), len(list), nil
}

// ReservationRepo reservas en memoria.
type ReservationRepo struct{ *db }

func (r *ReservationRepo) Create(_ context.Context, res *entity.StockReservation) error {
	defer r.lock()()
	r.state().reservations[res.ID] = *res
	return nil
}

func (r *ReservationRepo) Update(_ context.Context, res *entity.StockReservation) error {
	defer r.lock()()
	st := r.state()
	if _, ok := st.reservations[res.ID]; !ok {
		return domain.ErrNotFound
	}
	st.reservations[res.ID] = *res
	return nil
}

func (r *ReservationRepo) ListActiveByOrder(_ context.Context, companyID, salesOrderID string) ([]*entity.StockReservation, error) {
	defer r.lock()()
	var list []*entity.StockReservation
	for _, res := range r.state().reservations {
		if res.CompanyID == companyID && res.SalesOrderID == salesOrderID && res.Status == entity.ReservationActive {
			list = append(list, ptr(res))
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Seq != list[j].Seq {
			return list[i].Seq < list[j].Seq
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *ReservationRepo) CountActiveByStockItem(_ context.Context, companyID, stockItemID string) (int, error) {
	defer r.lock()()
	n := 0
	for _, res := range r.state().reservations {
		if res.CompanyID == companyID && res.StockItemID == stockItemID && res.Status == entity.ReservationActive {
			n++
		}
	}
	return n, nil
}

// AdjustmentRepo ajustes en memoria.
type AdjustmentRepo struct{ *db }

func (r *AdjustmentRepo) Create(_ context.Context, a *entity.InventoryAdjustment) error {
	defer r.lock()()
	r.state().adjustments[a.ID] = *a
	return nil
}

func (r *AdjustmentRepo) GetForUpdate(_ context.Context, companyID, id string) (*entity.InventoryAdjustment, error) {
	defer r.lock()()
	if a, ok := r.state().adjustments[id]; ok && a.CompanyID == companyID {
		return &a, nil
	}
	return nil, nil
}

func (r *AdjustmentRepo) Update(_ context.Context, a *entity.InventoryAdjustment) error {
	defer r.lock()()
	st := r.state()
	if _, ok := st.adjustments[a.ID]; !ok {
		return domain.ErrNotFound
	}
	st.adjustments[a.ID] = *a
	return nil
}

func (r *AdjustmentRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.InventoryAdjustment, error) {
	defer r.lock()()
	var list []*entity.InventoryAdjustment
	for _, a := range r.state().adjustments {
		if a.CompanyID == f.CompanyID && (f.Status == "" || a.Status == f.Status) {
			list = append(list, ptr(a))
		}
	}
	newestFirst(list, func(a *entity.InventoryAdjustment) time.Time { return a.CreatedAt }, func(a *entity.InventoryAdjustment) string { return a.ID })
	return page(list, f.Limit, f.Offset), nil
}

// TransferRepo traslados en memoria.
type TransferRepo struct{ *db }

func (r *TransferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	defer r.lock()()
	r.state().transfers[t.ID] = *t
	return nil
}

func (r *TransferRepo) GetForUpdate(_ context.Context, companyID, id string) (*entity.StockTransfer, error) {
	defer r.lock()()
	if t, ok := r.state().transfers[id]; ok && t.CompanyID == companyID {
		return &t, nil
	}
	return nil, nil
}

func (r *TransferRepo) Update(_ context.Context, t *entity.StockTransfer) error {
	defer r.lock()()
	st := r.state()
	if _, ok := st.transfers[t.ID]; !ok {
		return domain.ErrNotFound
	}
	st.transfers[t.ID] = *t
	return nil
}

func (r *TransferRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.StockTransfer, error) {
	defer r.lock()()
	var list []*entity.StockTransfer
	for _, t := range r.state().transfers {
		if t.CompanyID == f.CompanyID && (f.Status == "" || t.Status == f.Status) {
			list = append(list, ptr(t))
		}
	}
	newestFirst(list, func(t *entity.StockTransfer) time.Time { return t.CreatedAt }, func(t *entity.StockTransfer) string { return t.ID })
	return page(list, f.Limit, f.Offset), nil
}

// newestFirst orden inverso de byCreated, para listados de documentos.
func newestFirst[T any](list []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := created(list[i]), created(list[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return id(list[i]) > id(list[j])
	})
}
