// Package apptest arma datos de prueba para los tests de casos de uso. New usa el store en
// memoria; NewOn sirve para correr los mismos flujos contra PostgreSQL.
package apptest

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/memory"
)

// Fixture empresa con admin, supervisor y una bodega principal.
type Fixture struct {
	Store      ports.Store
	Reports    repository.ReportRepository
	Ledger     *inventory.Ledger
	Events     *RecordingPublisher
	Company    *entity.Company
	Warehouse  *entity.Warehouse
	Admin      shared.Actor
	Supervisor shared.Actor
}

// New crea el fixture sobre un store en memoria nuevo.
func New(t *testing.T) *Fixture {
	t.Helper()
	store := memory.NewStore()
	return NewOn(t, store, store.Reports())
}

// NewOn crea el fixture sobre el store dado.
func NewOn(t *testing.T, store ports.Store, reports repository.ReportRepository) *Fixture {
	t.Helper()
	ctx := context.Background()
	r := store.Repos()
	now := shared.Now()

	company := &entity.Company{ID: shared.NewID(), Name: "Bodegas del Norte", NIT: "800197268-4", Status: "active", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, r.Companies.Create(ctx, company))

	f := &Fixture{
		Store:   store,
		Reports: reports,
		Ledger:  inventory.NewLedger(),
		Events:  &RecordingPublisher{},
		Company: company,
	}
	f.Admin = f.User(t, "admin@norte.co", entity.RoleAdmin)
	f.Supervisor = f.User(t, "super@norte.co", entity.RoleSupervisor)
	f.Warehouse = f.NewWarehouse(t, "PRI")
	return f
}

// User crea un usuario activo con el rol dado y devuelve su actor.
func (f *Fixture) User(t *testing.T, email, role string) shared.Actor {
	t.Helper()
	now := shared.Now()
	u := &entity.User{
		ID:           shared.NewID(),
		CompanyID:    f.Company.ID,
		Email:        email,
		PasswordHash: "x",
		Name:         email,
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.Store.Repos().Users.Create(context.Background(), u))
	return shared.Actor{CompanyID: f.Company.ID, UserID: u.ID, Role: role}
}

// NewWarehouse crea una bodega.
func (f *Fixture) NewWarehouse(t *testing.T, code string) *entity.Warehouse {
	t.Helper()
	now := shared.Now()
	wh := &entity.Warehouse{ID: shared.NewID(), CompanyID: f.Company.ID, Code: code, Name: "Bodega " + code, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.Store.Repos().Warehouses.Create(context.Background(), wh))
	return wh
}

// Product crea un producto; opts ajusta trazabilidad, precio o punto de reorden.
func (f *Fixture) Product(t *testing.T, sku string, opts ...func(*entity.Product)) *entity.Product {
	t.Helper()
	now := shared.Now()
	p := &entity.Product{
		ID:           shared.NewID(),
		CompanyID:    f.Company.ID,
		SKU:          sku,
		Name:         "Producto " + sku,
		Price:        decimal.NewFromInt(100),
		Cost:         decimal.Zero,
		UnitMeasure:  "94",
		ReorderPoint: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, f.Store.Repos().Products.Create(context.Background(), p))
	return p
}

// Stock ingresa qty a costo unitario en la bodega por el ledger.
func (f *Fixture) Stock(t *testing.T, productID, warehouseID string, qty, cost string, opts ...func(*inventory.ReceiveInput)) *entity.StockItem {
	t.Helper()
	in := inventory.ReceiveInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    decimal.RequireFromString(qty),
		UnitCost:    decimal.RequireFromString(cost),
	}
	for _, opt := range opts {
		opt(&in)
	}
	var item *entity.StockItem
	err := f.Store.Run(context.Background(), func(ctx context.Context, r ports.TxRepos) error {
		var err error
		item, err = f.Ledger.Receive(ctx, r, f.Admin, in)
		return err
	})
	require.NoError(t, err)
	return item
}

// StockItem relee un bucket.
func (f *Fixture) StockItem(t *testing.T, id string) *entity.StockItem {
	t.Helper()
	item, err := f.Store.Repos().StockItems.GetByID(context.Background(), f.Company.ID, id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

// RecordingPublisher guarda los eventos publicados.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

// Publish registra los eventos.
func (p *RecordingPublisher) Publish(_ context.Context, events ...ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

// Types tipos publicados en orden.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// D atajo para decimales en aserciones.
func D(v string) decimal.Decimal { return decimal.RequireFromString(v) }
