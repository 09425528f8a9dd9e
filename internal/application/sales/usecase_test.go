package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/apptest"
	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/sales"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// fakeSlips guarda el último DTO recibido.
type fakeSlips struct{ last *dto.PackingSlipDTO }

func (f *fakeSlips) Generate(slip *dto.PackingSlipDTO) ([]byte, error) {
	f.last = slip
	return []byte("%PDF-fake"), nil
}

func newUseCase(f *apptest.Fixture, slips ports.PackingSlipGenerator) *sales.UseCase {
	if slips == nil {
		slips = &fakeSlips{}
	}
	return sales.NewUseCase(f.Store, f.Ledger, slips, f.Events, logger.Nop())
}

func order(t *testing.T, uc *sales.UseCase, f *apptest.Fixture, productID, qty string) *dto.SalesOrderResponse {
	t.Helper()
	out, err := uc.Create(context.Background(), f.Admin, dto.CreateSalesOrderRequest{
		CustomerName: "Ferretería Central",
		WarehouseID:  f.Warehouse.ID,
		Items:        []dto.SalesOrderItemRequest{{ProductID: productID, Quantity: apptest.D(qty)}},
	})
	require.NoError(t, err)
	return out
}

func TestCreate_TotalConPrecioDelProducto(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f, nil)
	p := f.Product(t, "A")
	price := apptest.D("80")

	out, err := uc.Create(context.Background(), f.Admin, dto.CreateSalesOrderRequest{
		WarehouseID: f.Warehouse.ID,
		Items: []dto.SalesOrderItemRequest{
			{ProductID: p.ID, Quantity: apptest.D("2")},
			{ProductID: p.ID, Quantity: apptest.D("1"), UnitPrice: &price},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SalesOrderDraft, out.Status)
	assert.Equal(t, "SO-000001", out.Number)
	assert.True(t, out.Total.Equal(apptest.D("280")), out.Total.String())
}

func TestCreate_Validaciones(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f, nil)
	ctx := context.Background()
	p := f.Product(t, "A")

	_, err := uc.Create(ctx, f.Admin, dto.CreateSalesOrderRequest{WarehouseID: f.Warehouse.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, f.Admin, dto.CreateSalesOrderRequest{
		WarehouseID: f.Warehouse.ID,
		Items:       []dto.SalesOrderItemRequest{{ProductID: p.ID, Quantity: apptest.D("0")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, f.Admin, dto.CreateSalesOrderRequest{
		WarehouseID: f.Warehouse.ID,
		Items:       []dto.SalesOrderItemRequest{{ProductID: "no-existe", Quantity: apptest.D("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirm_ReservaPorFEFO(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f, nil)
	ctx := context.Background()
	p := f.Product(t, "LEC", func(p *entity.Product) { p.TrackBatch = true; p.TrackExpiry = true })
	soon := time.Now().AddDate(0, 1, 0).UTC()
	later := time.Now().AddDate(0, 6, 0).UTC()
	lateItem := f.Stock(t, p.ID, f.Warehouse.ID, "10", "1", func(in *inventory.ReceiveInput) { in.BatchNumber = "L2"; in.ExpiryDate = &later })
	soonItem := f.Stock(t, p.ID, f.Warehouse.ID, "4", "1", func(in *inventory.ReceiveInput) { in.BatchNumber = "L1"; in.ExpiryDate = &soon })

	o := order(t, uc, f, p.ID, "6")
	out, err := uc.Confirm(ctx, f.Admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesOrderConfirmed, out.Status)
	assert.NotNil(t, out.ConfirmedAt)

	assert.True(t, f.StockItem(t, soonItem.ID).ReservedQuantity.Equal(apptest.D("4")))
	assert.True(t, f.StockItem(t, lateItem.ID).ReservedQuantity.Equal(apptest.D("2")))

	_, err = uc.Confirm(ctx, f.Admin, o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestConfirm_SinStockNoReservaNada(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f, nil)
	ctx := context.Background()
	a := f.Product(t, "A")
	b := f.Product(t, "B")
	itemA := f.Stock(t, a.ID, f.Warehouse.ID, "10", "1")
	f.Stock(t, b.ID, f.Warehouse.ID, "1", "1")

	o, err := uc.Create(ctx, f.Admin, dto.CreateSalesOrderRequest{
		WarehouseID: f.Warehouse.ID,
		Items: []dto.SalesOrderItemRequest{
			{ProductID: a.ID, Quantity: apptest.D("5")},
			{ProductID: b.ID, Quantity: apptest.D("2")},
		},
	})
	require.NoError(t, err)

	_, err = uc.Confirm(ctx, f.Admin, o.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.StockItem(t, itemA.ID).ReservedQuantity.IsZero(), "todo o nada")

	got, err := uc.GetByID(ctx, f.Company.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesOrderDraft, got.Status)
}

func TestShip_ParcialLuegoCompleto(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f, nil)
	ctx := context.Background()
	p := f.Product(t, "A")
	item := f.Stock(t, p.ID, f.Warehouse.ID, "10", "1")
	o := order(t, uc, f, p.ID, "5")
	_, err := uc.Confirm(ctx, f.Admin, o.ID)
	require.NoError(t, err)
	lineID := o.Items[0].ID

	sh, err := uc.Ship(ctx, f.Admin, o.ID, dto.ShipSalesOrderRequest{Lines: []dto.ShipLineRequest{{SalesOrderItemID: lineID, Quantity: apptest.D("2")}}})
	require.NoError(t, err)
	require.Len(t, sh.Lines, 1)
	assert.Equal(t, item.ID, sh.Lines[0].StockItemID)

	got, err := uc.GetByID(ctx, f.Company.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesOrderPartiallyFulfilled, got.Status)

	_, err = uc.Ship(ctx, f.Admin, o.ID, dto.ShipSalesOrderRequest{Lines: []dto.ShipLineRequest{{SalesOrderItemID: lineID, Quantity: apptest.D("4")}}})
	assert.ErrorIs(t, err, domain.ErrOverShipment)

	_, err = uc.Ship(ctx, f.Admin, o.ID, dto.ShipSalesOrderRequest{Lines: []dto.ShipLineRequest{{SalesOrderItemID: lineID, Quantity: apptest.D("3")}}})
	require.NoError(t, err)

	got, err = uc.GetByID(ctx, f.Company.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesOrderFulfilled, got.Status)
	assert.True(t, got.Items[0].ShippedQuantity.Equal(apptest.D("5")))

	stock := f.StockItem(t, item.ID)
	assert.True(t, stock.Quantity.Equal(apptest.D("5")))
	assert.True(t, stock.ReservedQuantity.IsZero())

	shipments, err := uc.ListShipments(ctx, f.Company.ID, o.ID)
	require.NoError(t, err)
	assert.Len(t, shipments, 2)

	_, err = uc.Cancel(ctx, f.Admin, o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "una orden despachada no se cancela")
}

func TestShip_OrdenEnBorrador(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f, nil)
	p := f.Product(t, "A")
	o := order(t, uc, f, p.ID, "1")
	_, err := uc.Ship(context.Background(), f.Admin, o.ID, dto.ShipSalesOrderRequest{
		Lines: []dto.ShipLineRequest{{SalesOrderItemID: o.Items[0].ID, Quantity: apptest.D("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_LiberaReservas(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f, nil)
	ctx := context.Background()
	p := f.Product(t, "A")
	item := f.Stock(t, p.ID, f.Warehouse.ID, "10", "1")
	o := order(t, uc, f, p.ID, "7")
	_, err := uc.Confirm(ctx, f.Admin, o.ID)
	require.NoError(t, err)
	require.True(t, f.StockItem(t, item.ID).ReservedQuantity.Equal(apptest.D("7")))

	out, err := uc.Cancel(ctx, f.Admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesOrderCancelled, out.Status)
	assert.True(t, f.StockItem(t, item.ID).ReservedQuantity.IsZero())

	_, err = uc.Cancel(ctx, f.Admin, o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestShip_ParcialRespetaFEFO(t *testing.T) {
	soon := time.Now().AddDate(0, 1, 0).UTC()
	later := time.Now().AddDate(0, 6, 0).UTC()
	// los IDs son aleatorios; varias vueltas cubren ambos órdenes de UUID
	for i := 0; i < 20; i++ {
		f := apptest.New(t)
		uc := newUseCase(f, nil)
		ctx := context.Background()
		p := f.Product(t, "LEC", func(p *entity.Product) { p.TrackBatch = true; p.TrackExpiry = true })
		lateItem := f.Stock(t, p.ID, f.Warehouse.ID, "10", "1", func(in *inventory.ReceiveInput) { in.BatchNumber = "L2"; in.ExpiryDate = &later })
		soonItem := f.Stock(t, p.ID, f.Warehouse.ID, "4", "1", func(in *inventory.ReceiveInput) { in.BatchNumber = "L1"; in.ExpiryDate = &soon })

		o := order(t, uc, f, p.ID, "6")
		_, err := uc.Confirm(ctx, f.Admin, o.ID)
		require.NoError(t, err)
		lineID := o.Items[0].ID

		sh, err := uc.Ship(ctx, f.Admin, o.ID, dto.ShipSalesOrderRequest{Lines: []dto.ShipLineRequest{{SalesOrderItemID: lineID, Quantity: apptest.D("2")}}})
		require.NoError(t, err)
		require.Len(t, sh.Lines, 1)
		require.Equal(t, soonItem.ID, sh.Lines[0].StockItemID, "vuelta %d", i)
		assert.Equal(t, "L1", sh.Lines[0].BatchNumber)

		// lo que queda de L1 sale antes que L2
		sh, err = uc.Ship(ctx, f.Admin, o.ID, dto.ShipSalesOrderRequest{Lines: []dto.ShipLineRequest{{SalesOrderItemID: lineID, Quantity: apptest.D("3")}}})
		require.NoError(t, err)
		require.Len(t, sh.Lines, 2)
		assert.Equal(t, soonItem.ID, sh.Lines[0].StockItemID)
		assert.True(t, sh.Lines[0].Quantity.Equal(apptest.D("2")))
		assert.Equal(t, lateItem.ID, sh.Lines[1].StockItemID)
		assert.True(t, sh.Lines[1].Quantity.Equal(apptest.D("1")))
	}
}

func TestCancel_ParcialmenteDespachadaLiberaSoloLoPendiente(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f, nil)
	ctx := context.Background()
	p := f.Product(t, "A")
	item := f.Stock(t, p.ID, f.Warehouse.ID, "10", "1")
	o := order(t, uc, f, p.ID, "5")
	_, err := uc.Confirm(ctx, f.Admin, o.ID)
	require.NoError(t, err)
	_, err = uc.Ship(ctx, f.Admin, o.ID, dto.ShipSalesOrderRequest{Lines: []dto.ShipLineRequest{{SalesOrderItemID: o.Items[0].ID, Quantity: apptest.D("2")}}})
	require.NoError(t, err)

	got := f.StockItem(t, item.ID)
	require.True(t, got.Quantity.Equal(apptest.D("8")))
	require.True(t, got.ReservedQuantity.Equal(apptest.D("3")))

	out, err := uc.Cancel(ctx, f.Admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesOrderCancelled, out.Status)
	assert.True(t, out.Items[0].ShippedQuantity.Equal(apptest.D("2")))

	got = f.StockItem(t, item.ID)
	assert.True(t, got.Quantity.Equal(apptest.D("8")), "lo despachado no vuelve al stock")
	assert.True(t, got.ReservedQuantity.IsZero())

	active, err := f.Store.Repos().Reservations.ListActiveByOrder(ctx, f.Company.ID, o.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestPackingSlip_ArmaDatosDelDespacho(t *testing.T) {
	f := apptest.New(t)
	slips := &fakeSlips{}
	uc := newUseCase(f, slips)
	ctx := context.Background()
	p := f.Product(t, "TOR-01")
	f.Stock(t, p.ID, f.Warehouse.ID, "10", "1")
	o := order(t, uc, f, p.ID, "3")
	_, err := uc.Confirm(ctx, f.Admin, o.ID)
	require.NoError(t, err)
	sh, err := uc.Ship(ctx, f.Admin, o.ID, dto.ShipSalesOrderRequest{Lines: []dto.ShipLineRequest{{SalesOrderItemID: o.Items[0].ID, Quantity: apptest.D("3")}}})
	require.NoError(t, err)

	pdf, name, err := uc.PackingSlip(ctx, f.Company.ID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, sh.Number+".pdf", name)
	require.NotNil(t, slips.last)
	assert.Equal(t, "Bodegas del Norte", slips.last.CompanyName)
	assert.Equal(t, o.Number, slips.last.OrderNumber)
	require.Len(t, slips.last.Lines, 1)
	assert.Equal(t, "TOR-01", slips.last.Lines[0].SKU)

	_, _, err = uc.PackingSlip(ctx, f.Company.ID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventos_SePublicanTrasCommit(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f, nil)
	p := f.Product(t, "A")
	o := order(t, uc, f, p.ID, "1")

	// confirmación fallida: no se publica nada nuevo
	_, err := uc.Confirm(context.Background(), f.Admin, o.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, []string{ports.EventSalesOrderStatus}, f.Events.Types())
}
