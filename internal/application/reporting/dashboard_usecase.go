// Package reporting contiene los reportes de inventario y el resumen del dashboard.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// expiringWindow ventana de "por vencer" del widget del dashboard.
const expiringWindow = 30 * 24 * time.Hour

// DashboardUseCase genera el resumen operativo de la empresa.
//
// Fuente de datos: ReportRepository (consultas read-only). El resultado se guarda en
// ReportCache por empresa; fresh=true invalida antes de recalcular.
type DashboardUseCase struct {
	reports repository.ReportRepository
	cache   ports.ReportCache
	ttl     time.Duration
	log     *logger.Logger
	group   singleflight.Group
}

// NewDashboardUseCase construye el caso de uso. cache puede ser nil.
func NewDashboardUseCase(reports repository.ReportRepository, cache ports.ReportCache, ttl time.Duration, log *logger.Logger) *DashboardUseCase {
	return &DashboardUseCase{reports: reports, cache: cache, ttl: ttl, log: log}
}

// DashboardKey llave de caché del resumen de una empresa.
func DashboardKey(companyID string) string {
	return "dashboard:" + companyID
}

// GetSummary devuelve el resumen, desde caché si está disponible.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, companyID string, fresh bool) (*dto.DashboardSummaryDTO, error) {
	key := DashboardKey(companyID)
	if uc.cache != nil {
		if fresh {
			if err := uc.cache.Invalidate(ctx, key); err != nil {
				uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo invalidar caché del dashboard")
			}
		} else {
			var cached dto.DashboardSummaryDTO
			err := uc.cache.Get(ctx, key, &cached)
			if err == nil {
				return &cached, nil
			}
			if !errors.Is(err, ports.ErrCacheMiss) {
				uc.log.Warn().Err(err).Str("key", key).Msg("caché del dashboard no disponible")
			}
		}
	}

	// peticiones concurrentes de la misma empresa comparten un solo cálculo; el
	// cálculo no hereda la cancelación del primer llamador
	detached := context.WithoutCancel(ctx)
	ch := uc.group.DoChan(key, func() (any, error) {
		return uc.compute(detached, companyID)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	summary := res.Val.(*dto.DashboardSummaryDTO)
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, summary, uc.ttl); err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar el dashboard en caché")
		}
	}
	return summary, nil
}

// compute lanza en paralelo los contadores y la consulta de vencimientos.
func (uc *DashboardUseCase) compute(ctx context.Context, companyID string) (*dto.DashboardSummaryDTO, error) {
	now := time.Now().UTC()

	type countsResult struct {
		counts *repository.DashboardCounts
		err    error
	}
	type expiringResult struct {
		n   int
		err error
	}
	countsCh := make(chan countsResult, 1)
	expiringCh := make(chan expiringResult, 1)

	go func() {
		c, err := uc.reports.Dashboard(ctx, companyID)
		countsCh <- countsResult{c, err}
	}()
	go func() {
		rows, err := uc.reports.Expiring(ctx, companyID, now.Add(expiringWindow))
		expiringCh <- expiringResult{len(rows), err}
	}()

	counts := <-countsCh
	expiring := <-expiringCh
	if counts.err != nil {
		return nil, fmt.Errorf("dashboard: contadores: %w", counts.err)
	}
	if expiring.err != nil {
		return nil, fmt.Errorf("dashboard: vencimientos: %w", expiring.err)
	}

	return &dto.DashboardSummaryDTO{
		PendingApprovals:   counts.counts.PendingApprovals,
		OpenSalesOrders:    counts.counts.OpenSalesOrders,
		OpenPurchaseOrders: counts.counts.OpenPurchaseOrders,
		LowStockProducts:   counts.counts.LowStockProducts,
		ExpiringSoon:       expiring.n,
		StockValue:         counts.counts.StockValue.Round(2),
		DateLabel:          monthLabel(now),
		GeneratedAt:        now,
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
