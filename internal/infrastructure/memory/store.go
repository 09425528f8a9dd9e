// Package memory implementa los puertos de persistencia en memoria para pruebas y
// entornos efímeros (APP_STORAGE=memory).
package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

var _ ports.Store = (*Store)(nil)

type state struct {
	companies      map[string]entity.Company
	users          map[string]entity.User
	warehouses     map[string]entity.Warehouse
	locations      map[string]entity.Location
	products       map[string]entity.Product
	stock          map[string]entity.StockItem
	movements      []entity.StockMovement
	reservations   map[string]entity.StockReservation
	salesOrders    map[string]entity.SalesOrder
	shipments      map[string]entity.Shipment
	purchaseOrders map[string]entity.PurchaseOrder
	receipts       map[string]entity.GoodsReceipt
	adjustments    map[string]entity.InventoryAdjustment
	transfers      map[string]entity.StockTransfer
	kits           map[string]entity.Kit
	assemblies     map[string]entity.AssemblyOrder
	approvals      map[string]entity.ApprovalRequest
	audit          []entity.AuditLog
	sequences      map[string]int64
}

func newState() state {
	return state{
		companies:      map[string]entity.Company{},
		users:          map[string]entity.User{},
		warehouses:     map[string]entity.Warehouse{},
		locations:      map[string]entity.Location{},
		products:       map[string]entity.Product{},
		stock:          map[string]entity.StockItem{},
		reservations:   map[string]entity.StockReservation{},
		salesOrders:    map[string]entity.SalesOrder{},
		shipments:      map[string]entity.Shipment{},
		purchaseOrders: map[string]entity.PurchaseOrder{},
		receipts:       map[string]entity.GoodsReceipt{},
		adjustments:    map[string]entity.InventoryAdjustment{},
		transfers:      map[string]entity.StockTransfer{},
		kits:           map[string]entity.Kit{},
		assemblies:     map[string]entity.AssemblyOrder{},
		approvals:      map[string]entity.ApprovalRequest{},
		sequences:      map[string]int64{},
	}
}

// clone copia los mapas. Los valores guardados nunca se modifican en sitio
// (cada escritura reemplaza el valor con una copia profunda), así que compartirlos es seguro.
func (s state) clone() state {
	return state{
		companies:      maps.Clone(s.companies),
		users:          maps.Clone(s.users),
		warehouses:     maps.Clone(s.warehouses),
		locations:      maps.Clone(s.locations),
		products:       maps.Clone(s.products),
		stock:          maps.Clone(s.stock),
		movements:      slices.Clone(s.movements),
		reservations:   maps.Clone(s.reservations),
		salesOrders:    maps.Clone(s.salesOrders),
		shipments:      maps.Clone(s.shipments),
		purchaseOrders: maps.Clone(s.purchaseOrders),
		receipts:       maps.Clone(s.receipts),
		adjustments:    maps.Clone(s.adjustments),
		transfers:      maps.Clone(s.transfers),
		kits:           maps.Clone(s.kits),
		assemblies:     maps.Clone(s.assemblies),
		approvals:      maps.Clone(s.approvals),
		audit:          slices.Clone(s.audit),
		sequences:      maps.Clone(s.sequences),
	}
}

// Store guarda todo en memoria. Run trabaja sobre una copia del estado y la publica solo si fn
// termina sin error; las transacciones se serializan con el mutex.
type Store struct {
	mu    sync.Mutex
	state state
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run ejecuta fn sobre una copia del estado. Error = rollback.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos ports.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.state.clone()
	db := &db{state: func() *state { return &tx }, lock: noLock}
	if err := fn(ctx, db.repos()); err != nil {
		return err
	}
	s.state = tx
	return nil
}

// Repos repositorios fuera de transacción; cada llamada toma el mutex.
func (s *Store) Repos() ports.TxRepos {
	db := &db{
		state: func() *state { return &s.state },
		lock: func() func() {
			s.mu.Lock()
			return s.mu.Unlock
		},
	}
	return db.repos()
}

// Reports devuelve el repositorio de reportes sobre este store.
func (s *Store) Reports() *ReportRepo {
	return &ReportRepo{db: &db{
		state: func() *state { return &s.state },
		lock: func() func() {
			s.mu.Lock()
			return s.mu.Unlock
		},
	}}
}

func noLock() func() { return func() {} }

// db acceso al estado con o sin bloqueo según venga de Run o de Repos.
type db struct {
	state func() *state
	lock  func() func()
}

func (d *db) repos() ports.TxRepos {
	return ports.TxRepos{
		Companies:      &CompanyRepo{d},
		Users:          &UserRepo{d},
		Warehouses:     &WarehouseRepo{d},
		Locations:      &LocationRepo{d},
		Products:       &ProductRepo{d},
		StockItems:     &StockItemRepo{d},
		Movements:      &MovementRepo{d},
		Reservations:   &ReservationRepo{d},
		SalesOrders:    &SalesOrderRepo{d},
		Shipments:      &ShipmentRepo{d},
		PurchaseOrders: &PurchaseOrderRepo{d},
		Receipts:       &ReceiptRepo{d},
		Adjustments:    &AdjustmentRepo{d},
		Transfers:      &TransferRepo{d},
		Kits:           &KitRepo{d},
		Assemblies:     &AssemblyRepo{d},
		Approvals:      &ApprovalRepo{d},
		AuditLogs:      &AuditLogRepo{d},
		Sequences:      &SequenceRepo{d},
	}
}

// page aplica limit/offset sobre una lista ya ordenada. limit <= 0 devuelve todo.
func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// byCreated ordena por fecha de creación y luego ID para un orden estable.
func byCreated[T any](list []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := created(list[i]), created(list[j])
		if !a.Equal(b) {
			return a.Before(b)
		}
		return id(list[i]) < id(list[j])
	})
}

func ptr[T any](v T) *T { return &v }

func copySalesOrder(o entity.SalesOrder) entity.SalesOrder {
	items := make([]*entity.SalesOrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ptr(*it))
	}
	o.Items = items
	return o
}

func copyPurchaseOrder(o entity.PurchaseOrder) entity.PurchaseOrder {
	items := make([]*entity.PurchaseOrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ptr(*it))
	}
	o.Items = items
	return o
}

func copyShipment(s entity.Shipment) entity.Shipment {
	lines := make([]*entity.ShipmentLine, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, ptr(*l))
	}
	s.Lines = lines
	return s
}

func copyReceipt(g entity.GoodsReceipt) entity.GoodsReceipt {
	lines := make([]*entity.GoodsReceiptLine, 0, len(g.Lines))
	for _, l := range g.Lines {
		lines = append(lines, ptr(*l))
	}
	g.Lines = lines
	return g
}

func copyKit(k entity.Kit) entity.Kit {
	comps := make([]*entity.KitComponent, 0, len(k.Components))
	for _, c := range k.Components {
		comps = append(comps, ptr(*c))
	}
	k.Components = comps
	return k
}
