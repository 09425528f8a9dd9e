package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/approval"
	"github.com/jhoicas/Bodega-api/internal/application/apptest"
	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

var testPolicy = shared.ApprovalPolicy{
	AdjustmentQuantity: decimal.NewFromInt(100),
	TransferQuantity:   decimal.NewFromInt(50),
}

func newUseCase(f *apptest.Fixture) *inventory.UseCase {
	return inventory.NewUseCase(f.Store, f.Ledger, testPolicy, f.Events, logger.Nop())
}

func TestReceiveStock_CostoPromedioYMovimiento(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	ctx := context.Background()
	p := f.Product(t, "TOR-01")

	_, err := uc.ReceiveStock(ctx, f.Admin, dto.ReceiveStockRequest{
		ProductID: p.ID, WarehouseID: f.Warehouse.ID, Quantity: apptest.D("10"), UnitCost: apptest.D("100"),
	})
	require.NoError(t, err)
	out, err := uc.ReceiveStock(ctx, f.Admin, dto.ReceiveStockRequest{
		ProductID: p.ID, WarehouseID: f.Warehouse.ID, Quantity: apptest.D("30"), UnitCost: apptest.D("200"),
	})
	require.NoError(t, err)
	assert.True(t, out.Quantity.Equal(apptest.D("40")))
	assert.True(t, out.UnitCost.Equal(apptest.D("175")), out.UnitCost.String())

	product, err := f.Store.Repos().Products.GetByID(ctx, f.Company.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, product.Cost.Equal(apptest.D("175")), product.Cost.String())

	movs, err := uc.ListMovements(ctx, repository.MovementFilter{CompanyID: f.Company.ID, ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, movs.Items, 2)
	for _, m := range movs.Items {
		assert.Equal(t, entity.MovementPurchaseReceipt, m.Type)
		assert.True(t, m.QuantityAfter.Equal(m.QuantityBefore.Add(m.Quantity)))
	}
	assert.Equal(t, []string{ports.EventStockMoved, ports.EventStockMoved}, f.Events.Types())
}

func TestReceiveStock_ExigeLoteYVencimiento(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	p := f.Product(t, "LEC-01", func(p *entity.Product) { p.TrackBatch = true; p.TrackExpiry = true })

	_, err := uc.ReceiveStock(context.Background(), f.Admin, dto.ReceiveStockRequest{
		ProductID: p.ID, WarehouseID: f.Warehouse.ID, Quantity: apptest.D("5"), UnitCost: apptest.D("1"),
	})
	assert.ErrorIs(t, err, domain.ErrTrackingRequired)
}

func TestReceiveStock_SerialDuplicado(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	ctx := context.Background()
	p := f.Product(t, "TAL-01", func(p *entity.Product) { p.TrackSerial = true })
	in := dto.ReceiveStockRequest{
		ProductID: p.ID, WarehouseID: f.Warehouse.ID, SerialNumber: "SN-1", Quantity: apptest.D("1"), UnitCost: apptest.D("10"),
	}

	_, err := uc.ReceiveStock(ctx, f.Admin, in)
	require.NoError(t, err)
	_, err = uc.ReceiveStock(ctx, f.Admin, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestReceiveStock_BodegaInexistente(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	p := f.Product(t, "X")
	_, err := uc.ReceiveStock(context.Background(), f.Admin, dto.ReceiveStockRequest{
		ProductID: p.ID, WarehouseID: shared.NewID(), Quantity: apptest.D("1"), UnitCost: apptest.D("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStock_PequenoSeAplica(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	p := f.Product(t, "A")
	item := f.Stock(t, p.ID, f.Warehouse.ID, "10", "5")

	out, err := uc.AdjustStock(context.Background(), f.Admin, dto.AdjustStockRequest{
		StockItemID: item.ID, NewQuantity: apptest.D("7"), Reason: "rotura",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MutationApplied, out.Status)
	assert.Empty(t, out.ApprovalRequestID)
	assert.True(t, f.StockItem(t, item.ID).Quantity.Equal(apptest.D("7")))
}

func TestAdjustStock_GrandeQuedaPendiente(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	p := f.Product(t, "A")
	item := f.Stock(t, p.ID, f.Warehouse.ID, "10", "5")

	out, err := uc.AdjustStock(context.Background(), f.Admin, dto.AdjustStockRequest{
		StockItemID: item.ID, NewQuantity: apptest.D("200"), Reason: "conteo",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MutationPendingApproval, out.Status)
	assert.NotEmpty(t, out.ApprovalRequestID)
	assert.True(t, f.StockItem(t, item.ID).Quantity.Equal(apptest.D("10")), "no se aplica hasta aprobar")
}

func TestAdjustStock_Validaciones(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	ctx := context.Background()
	p := f.Product(t, "A")
	item := f.Stock(t, p.ID, f.Warehouse.ID, "10", "5")

	_, err := uc.AdjustStock(ctx, f.Admin, dto.AdjustStockRequest{StockItemID: item.ID, NewQuantity: apptest.D("3")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "motivo obligatorio")

	_, err = uc.AdjustStock(ctx, f.Admin, dto.AdjustStockRequest{StockItemID: item.ID, NewQuantity: apptest.D("-1"), Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AdjustStock(ctx, f.Admin, dto.AdjustStockRequest{
		ProductID: p.ID, WarehouseID: f.Warehouse.ID, NewQuantity: apptest.D("3"), Reason: "x",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "el bucket sin lote ya existe")
}

func TestAdjustStock_NoBajaDeLoReservado(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	p := f.Product(t, "A")
	item := f.Stock(t, p.ID, f.Warehouse.ID, "10", "5")
	require.NoError(t, f.Store.Run(context.Background(), func(ctx context.Context, r ports.TxRepos) error {
		return f.Ledger.Reserve(ctx, r, f.Company.ID, item.ID, apptest.D("6"))
	}))

	_, err := uc.AdjustStock(context.Background(), f.Admin, dto.AdjustStockRequest{
		StockItemID: item.ID, NewQuantity: apptest.D("5"), Reason: "conteo",
	})
	assert.ErrorIs(t, err, domain.ErrReservedStock)
}

func TestTransferStock_MueveEntreBodegas(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	ctx := context.Background()
	p := f.Product(t, "A")
	expiry := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	src := f.Stock(t, p.ID, f.Warehouse.ID, "20", "8", func(in *inventory.ReceiveInput) {
		in.BatchNumber = "L-7"
		in.ExpiryDate = &expiry
	})
	dst := f.NewWarehouse(t, "SUR")

	out, err := uc.TransferStock(ctx, f.Admin, dto.TransferStockRequest{
		StockItemID: src.ID, ToWarehouseID: dst.ID, Quantity: apptest.D("5"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MutationCompleted, out.Status)
	require.NotEmpty(t, out.DestStockItemID)

	moved := f.StockItem(t, out.DestStockItemID)
	assert.Equal(t, "L-7", moved.BatchNumber)
	assert.True(t, moved.ExpiryDate.Equal(expiry))
	assert.True(t, moved.Quantity.Equal(apptest.D("5")))
	assert.True(t, f.StockItem(t, src.ID).Quantity.Equal(apptest.D("15")))

	movs, err := uc.ListMovements(ctx, repository.MovementFilter{CompanyID: f.Company.ID, Type: entity.MovementTransferIn})
	require.NoError(t, err)
	require.Len(t, movs.Items, 1)
	assert.Equal(t, dst.ID, movs.Items[0].WarehouseID)
}

func TestTransferStock_GrandeQuedaPendienteYMismoDestinoFalla(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	ctx := context.Background()
	p := f.Product(t, "A")
	src := f.Stock(t, p.ID, f.Warehouse.ID, "80", "1")
	dst := f.NewWarehouse(t, "SUR")

	out, err := uc.TransferStock(ctx, f.Admin, dto.TransferStockRequest{StockItemID: src.ID, ToWarehouseID: dst.ID, Quantity: apptest.D("60")})
	require.NoError(t, err)
	assert.Equal(t, entity.MutationPendingApproval, out.Status)
	assert.NotEmpty(t, out.ApprovalRequestID)

	_, err = uc.TransferStock(ctx, f.Admin, dto.TransferStockRequest{StockItemID: src.ID, ToWarehouseID: f.Warehouse.ID, Quantity: apptest.D("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.TransferStock(ctx, f.Admin, dto.TransferStockRequest{StockItemID: src.ID, ToWarehouseID: dst.ID, Quantity: apptest.D("81")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestChangeStatus_ConReservasNoSaleDeDisponible(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	ctx := context.Background()
	p := f.Product(t, "A")
	item := f.Stock(t, p.ID, f.Warehouse.ID, "10", "1")

	out, err := uc.ChangeStatus(ctx, f.Admin, item.ID, entity.StockStatusQuarantine)
	require.NoError(t, err)
	assert.Equal(t, entity.StockStatusQuarantine, out.Status)

	avail, err := uc.Availability(ctx, f.Company.ID, p.ID, "")
	require.NoError(t, err)
	assert.True(t, avail.OnHand.Equal(apptest.D("10")))
	assert.True(t, avail.Available.IsZero(), "cuarentena no cuenta como disponible")

	_, err = uc.ChangeStatus(ctx, f.Admin, item.ID, entity.StockStatusAvailable)
	require.NoError(t, err)
	require.NoError(t, f.Store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		return f.Ledger.Reserve(ctx, r, f.Company.ID, item.ID, apptest.D("1"))
	}))
	_, err = uc.ChangeStatus(ctx, f.Admin, item.ID, entity.StockStatusDamaged)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = uc.ChangeStatus(ctx, f.Admin, item.ID, "PERDIDO")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLedgerReserve_ConcurrenciaNoSobrepasaDisponible(t *testing.T) {
	f := apptest.New(t)
	p := f.Product(t, "A")
	item := f.Stock(t, p.ID, f.Warehouse.ID, "5", "1")

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.Store.Run(context.Background(), func(ctx context.Context, r ports.TxRepos) error {
				return f.Ledger.Reserve(ctx, r, f.Company.ID, item.ID, decimal.NewFromInt(1))
			})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	got := f.StockItem(t, item.ID)
	assert.True(t, got.ReservedQuantity.Equal(apptest.D("5")))
	assert.True(t, got.Valid())
}

func TestListMovements_TipoInvalido(t *testing.T) {
	f := apptest.New(t)
	_, err := newUseCase(f).ListMovements(context.Background(), repository.MovementFilter{CompanyID: f.Company.ID, Type: "ROBO"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustStock_BucketNuevoSeparaPorVencimiento(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	ctx := context.Background()
	p := f.Product(t, "YOG", func(p *entity.Product) { p.TrackExpiry = true })
	e1 := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	e2 := time.Date(2027, 4, 1, 0, 0, 0, 0, time.UTC)
	e3 := time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC)
	received := f.Stock(t, p.ID, f.Warehouse.ID, "5", "1", func(in *inventory.ReceiveInput) { in.ExpiryDate = &e1 })
	require.Equal(t, "20270301", received.BatchNumber)

	adjust := func(expiry *time.Time) (*dto.AdjustmentResponse, error) {
		return uc.AdjustStock(ctx, f.Admin, dto.AdjustStockRequest{
			ProductID: p.ID, WarehouseID: f.Warehouse.ID, ExpiryDate: expiry,
			NewQuantity: apptest.D("3"), Reason: "conteo",
		})
	}

	// mismo vencimiento que la entrada: el bucket ya existe
	_, err := adjust(&e1)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	a2, err := adjust(&e2)
	require.NoError(t, err)
	a3, err := adjust(&e3)
	require.NoError(t, err)
	require.NotEqual(t, a2.StockItemID, a3.StockItemID)
	assert.Equal(t, "20270401", f.StockItem(t, a2.StockItemID).BatchNumber)
	assert.Equal(t, "20270501", f.StockItem(t, a3.StockItemID).BatchNumber)
}

func TestApproveAdjustment_SerialQueEntroMientrasEsperaba(t *testing.T) {
	f := apptest.New(t)
	policy := shared.ApprovalPolicy{AdjustmentValue: decimal.NewFromInt(100)}
	uc := inventory.NewUseCase(f.Store, f.Ledger, policy, f.Events, logger.Nop())
	approvals := approval.NewUseCase(f.Store, f.Ledger, f.Events, logger.Nop())
	ctx := context.Background()
	p := f.Product(t, "CEL", func(p *entity.Product) { p.TrackSerial = true })
	f.Stock(t, p.ID, f.Warehouse.ID, "1", "500", func(in *inventory.ReceiveInput) { in.SerialNumber = "S0" })

	adj, err := uc.AdjustStock(ctx, f.Admin, dto.AdjustStockRequest{
		ProductID: p.ID, WarehouseID: f.Warehouse.ID, SerialNumber: "S1",
		NewQuantity: apptest.D("1"), Reason: "sobrante",
	})
	require.NoError(t, err)
	require.Equal(t, entity.MutationPendingApproval, adj.Status)

	other := f.NewWarehouse(t, "SUR")
	f.Stock(t, p.ID, other.ID, "1", "500", func(in *inventory.ReceiveInput) { in.SerialNumber = "S1" })

	_, err = approvals.Approve(ctx, f.Supervisor, adj.ApprovalRequestID, dto.ReviewApprovalRequest{Comment: "ok"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := f.Store.Repos().Adjustments.GetForUpdate(ctx, f.Company.ID, adj.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MutationPendingApproval, got.Status)
}
