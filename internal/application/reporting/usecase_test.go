package reporting_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/apptest"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/reporting"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/cache"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

func TestStockOnHand_FiltraYOrdenaPorSKU(t *testing.T) {
	f := apptest.New(t)
	uc := reporting.NewUseCase(f.Reports, f.Store.Repos().AuditLogs)
	b := f.Product(t, "B-02")
	a := f.Product(t, "A-01")
	f.Stock(t, b.ID, f.Warehouse.ID, "3", "1")
	f.Stock(t, a.ID, f.Warehouse.ID, "5", "1")
	other := f.NewWarehouse(t, "SUR")
	f.Stock(t, a.ID, other.ID, "1", "1")

	out, err := uc.StockOnHand(context.Background(), repository.StockReportFilter{CompanyID: f.Company.ID})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	assert.Equal(t, "A-01", out.Items[0].SKU)
	assert.Equal(t, "B-02", out.Items[2].SKU)

	out, err = uc.StockOnHand(context.Background(), repository.StockReportFilter{CompanyID: f.Company.ID, WarehouseID: other.ID})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)

	_, err = uc.StockOnHand(context.Background(), repository.StockReportFilter{CompanyID: f.Company.ID, Status: "OTRO"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValuation_PorBodegaConCostoPromedio(t *testing.T) {
	f := apptest.New(t)
	uc := reporting.NewUseCase(f.Reports, f.Store.Repos().AuditLogs)
	p := f.Product(t, "A")
	f.Stock(t, p.ID, f.Warehouse.ID, "10", "100")
	other := f.NewWarehouse(t, "SUR")
	f.Stock(t, p.ID, other.ID, "10", "200")

	out, err := uc.Valuation(context.Background(), f.Company.ID)
	require.NoError(t, err)
	require.Len(t, out.Warehouses, 2)
	// costo promedio 150 sobre 20 unidades
	assert.True(t, out.Total.Equal(apptest.D("3000")), out.Total.String())
}

func TestExpiring_SoloDentroDeLaVentana(t *testing.T) {
	f := apptest.New(t)
	uc := reporting.NewUseCase(f.Reports, f.Store.Repos().AuditLogs)
	p := f.Product(t, "LEC", func(p *entity.Product) { p.TrackExpiry = true })
	soon := time.Now().AddDate(0, 0, 5).UTC()
	later := time.Now().AddDate(0, 3, 0).UTC()
	f.Stock(t, p.ID, f.Warehouse.ID, "1", "1", func(in *inventory.ReceiveInput) { in.ExpiryDate = &soon })
	f.Stock(t, p.ID, f.Warehouse.ID, "1", "1", func(in *inventory.ReceiveInput) { in.ExpiryDate = &later })

	out, err := uc.Expiring(context.Background(), f.Company.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, out.Days)
	assert.Len(t, out.Items, 1)

	_, err = uc.Expiring(context.Background(), f.Company.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Expiring(context.Background(), f.Company.ID, 366)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReplenishment_SugerenciasBajoReorden(t *testing.T) {
	f := apptest.New(t)
	uc := inventory.NewReplenishmentUseCase(f.Reports)
	low := f.Product(t, "LOW", func(p *entity.Product) { p.ReorderPoint = apptest.D("10"); p.Price = apptest.D("100") })
	ok := f.Product(t, "OK", func(p *entity.Product) { p.ReorderPoint = apptest.D("2") })
	f.Stock(t, low.ID, f.Warehouse.ID, "4", "60")
	f.Stock(t, ok.ID, f.Warehouse.ID, "5", "1")

	list, err := uc.GenerateReplenishmentList(context.Background(), f.Company.ID, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	s := list[0]
	assert.Equal(t, "LOW", s.SKU)
	assert.Equal(t, 1, s.Priority)
	assert.True(t, s.IdealStock.Equal(apptest.D("15")))
	assert.True(t, s.SuggestedOrderQty.Equal(apptest.D("11")))
	assert.True(t, s.EstimatedOrderCost.Equal(apptest.D("660")))
	assert.True(t, s.GrossMarginPct.Equal(apptest.D("40")), s.GrossMarginPct.String())
}

func TestDashboard_CacheaYFreshRecalcula(t *testing.T) {
	f := apptest.New(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	uc := reporting.NewDashboardUseCase(f.Reports, cache.NewRedisCache(client, time.Minute), time.Minute, logger.Nop())
	ctx := context.Background()

	p := f.Product(t, "A", func(p *entity.Product) { p.ReorderPoint = apptest.D("5") })
	f.Stock(t, p.ID, f.Warehouse.ID, "2", "10")

	first, err := uc.GetSummary(ctx, f.Company.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, first.LowStockProducts)
	assert.True(t, first.StockValue.Equal(apptest.D("20")))
	assert.NotEmpty(t, first.DateLabel)

	f.Stock(t, p.ID, f.Warehouse.ID, "10", "10")

	cached, err := uc.GetSummary(ctx, f.Company.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.LowStockProducts, "sale de caché")

	fresh, err := uc.GetSummary(ctx, f.Company.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.LowStockProducts)
	assert.True(t, fresh.StockValue.Equal(apptest.D("120")))
}

func TestDashboard_SinCache(t *testing.T) {
	f := apptest.New(t)
	uc := reporting.NewDashboardUseCase(f.Reports, nil, time.Minute, logger.Nop())
	out, err := uc.GetSummary(context.Background(), f.Company.ID, false)
	require.NoError(t, err)
	assert.Zero(t, out.PendingApprovals)
	assert.True(t, out.StockValue.IsZero())
}

// blockingReports retiene Dashboard hasta release y registra el estado del contexto.
type blockingReports struct {
	repository.ReportRepository
	started chan struct{}
	release chan struct{}
	ctxErrs chan error
}

func (r *blockingReports) Dashboard(ctx context.Context, companyID string) (*repository.DashboardCounts, error) {
	select {
	case r.started <- struct{}{}:
	default:
	}
	<-r.release
	r.ctxErrs <- ctx.Err()
	return r.ReportRepository.Dashboard(ctx, companyID)
}

func TestDashboard_CancelarPrimerLlamadorNoAfectaAlResto(t *testing.T) {
	f := apptest.New(t)
	reports := &blockingReports{
		ReportRepository: f.Reports,
		started:          make(chan struct{}, 1),
		release:          make(chan struct{}),
		ctxErrs:          make(chan error, 4),
	}
	uc := reporting.NewDashboardUseCase(reports, nil, time.Minute, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := uc.GetSummary(ctx, f.Company.ID, false)
		firstErr <- err
	}()
	<-reports.started

	type result struct {
		out any
		err error
	}
	second := make(chan result, 1)
	go func() {
		out, err := uc.GetSummary(context.Background(), f.Company.ID, false)
		second <- result{out, err}
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	close(reports.release)

	got := <-second
	require.NoError(t, got.err)
	assert.NotNil(t, got.out)
	assert.NoError(t, <-reports.ctxErrs, "el cálculo compartido no ve la cancelación")
}

func TestAuditLog_FiltraPorEntidad(t *testing.T) {
	f := apptest.New(t)
	uc := reporting.NewUseCase(f.Reports, f.Store.Repos().AuditLogs)
	inv := inventory.NewUseCase(f.Store, f.Ledger, shared.ApprovalPolicy{}, f.Events, logger.Nop())
	p := f.Product(t, "A")
	item := f.Stock(t, p.ID, f.Warehouse.ID, "5", "1")
	_, err := inv.ChangeStatus(context.Background(), f.Admin, item.ID, entity.StockStatusDamaged)
	require.NoError(t, err)

	out, err := uc.AuditLog(context.Background(), repository.AuditFilter{CompanyID: f.Company.ID, EntityType: "stock_item"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "inventory.status", out.Items[0].Action)
	assert.Equal(t, f.Admin.UserID, out.Items[0].UserID)
}
