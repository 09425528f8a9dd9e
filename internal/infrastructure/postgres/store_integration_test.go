package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Bodega-api/internal/application/apptest"
	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/reporting"
	"github.com/jhoicas/Bodega-api/internal/application/sales"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Bodega-api/pkg/config"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// startPostgres levanta un contenedor, aplica migraciones y devuelve el store.
func startPostgres(t *testing.T) (*postgres.Store, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con PostgreSQL omitida en -short")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("bodega"),
		tcpostgres.WithUsername("bodega"),
		tcpostgres.WithPassword("bodega"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminar contenedor: %s", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(dsn, "up", 0, logger.Nop()))

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return postgres.NewStore(pool), dsn
}

func TestPostgres_FlujoDeVentaYReportes(t *testing.T) {
	store, dsn := startPostgres(t)
	f := apptest.NewOn(t, store, store.Reports())
	ctx := context.Background()

	p := f.Product(t, "TOR-8", func(p *entity.Product) { p.ReorderPoint = apptest.D("20") })
	item := f.Stock(t, p.ID, f.Warehouse.ID, "10", "100")

	uc := sales.NewUseCase(f.Store, f.Ledger, pdf.NewPackingSlipGenerator(), f.Events, logger.Nop())
	o, err := uc.Create(ctx, f.Admin, dto.CreateSalesOrderRequest{
		WarehouseID: f.Warehouse.ID,
		Items:       []dto.SalesOrderItemRequest{{ProductID: p.ID, Quantity: apptest.D("4")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SO-000001", o.Number)

	_, err = uc.Confirm(ctx, f.Admin, o.ID)
	require.NoError(t, err)
	assert.True(t, f.StockItem(t, item.ID).ReservedQuantity.Equal(apptest.D("4")))

	sh, err := uc.Ship(ctx, f.Admin, o.ID, dto.ShipSalesOrderRequest{Lines: []dto.ShipLineRequest{{SalesOrderItemID: o.Items[0].ID, Quantity: apptest.D("4")}}})
	require.NoError(t, err)
	got, err := uc.GetByID(ctx, f.Company.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesOrderFulfilled, got.Status)

	after := f.StockItem(t, item.ID)
	assert.True(t, after.Quantity.Equal(apptest.D("6")), after.Quantity.String())
	assert.True(t, after.ReservedQuantity.IsZero())

	slip, _, err := uc.PackingSlip(ctx, f.Company.ID, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(slip[:4]))

	t.Run("dashboard", func(t *testing.T) {
		dash := reporting.NewDashboardUseCase(f.Reports, nil, time.Minute, logger.Nop())
		out, err := dash.GetSummary(ctx, f.Company.ID, false)
		require.NoError(t, err)
		assert.Equal(t, 1, out.LowStockProducts)
		assert.True(t, out.StockValue.Equal(apptest.D("600")), out.StockValue.String())
	})

	t.Run("reposición cuenta lo despachado", func(t *testing.T) {
		list, err := inventory.NewReplenishmentUseCase(f.Reports).GenerateReplenishmentList(ctx, f.Company.ID, f.Warehouse.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.True(t, list[0].UnitsSoldLast90d.Equal(apptest.D("4")))
		assert.True(t, list[0].SuggestedOrderQty.Equal(apptest.D("24")))
	})

	t.Run("bitácora", func(t *testing.T) {
		logs, err := f.Store.Repos().AuditLogs.List(ctx, repository.AuditFilter{CompanyID: f.Company.ID, EntityType: "sales_order"})
		require.NoError(t, err)
		assert.NotEmpty(t, logs)
	})

	t.Run("reservas concurrentes no sobregiran", func(t *testing.T) {
		var (
			wg sync.WaitGroup
			mu sync.Mutex
			ok int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := f.Store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
					return f.Ledger.Reserve(ctx, r, f.Company.ID, item.ID, apptest.D("1"))
				})
				if err == nil {
					mu.Lock()
					ok++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		reserved := f.StockItem(t, item.ID).ReservedQuantity
		assert.LessOrEqual(t, ok, 6)
		assert.True(t, reserved.Equal(decimal.NewFromInt(int64(ok))), reserved.String())
	})

	t.Run("entradas concurrentes no pierden costo", func(t *testing.T) {
		q := f.Product(t, "LOTE-1", func(p *entity.Product) { p.TrackBatch = true })
		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 1; i <= 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- f.Store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
					_, err := f.Ledger.Receive(ctx, r, f.Admin, inventory.ReceiveInput{
						ProductID:   q.ID,
						WarehouseID: f.Warehouse.ID,
						BatchNumber: fmt.Sprintf("B%d", i),
						Quantity:    decimal.NewFromInt(1),
						UnitCost:    decimal.NewFromInt(int64(10 * i)),
					})
					return err
				})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := f.Store.Repos().Products.GetByID(ctx, f.Company.ID, q.ID)
		require.NoError(t, err)
		// promedio de 10..80 con una unidad cada uno; solo difiere por redondeo intermedio
		assert.True(t, got.Cost.Sub(apptest.D("45")).Abs().LessThan(apptest.D("0.01")), got.Cost.String())
	})

	require.NoError(t, postgres.Migrate(dsn, "down", 0, logger.Nop()))
}
