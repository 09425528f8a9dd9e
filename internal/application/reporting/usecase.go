package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

const (
	defaultLimit    = 50
	maxLimit        = 500
	maxExpiringDays = 365
)

// UseCase reportes de existencias, valorización, vencimientos y auditoría.
type UseCase struct {
	reports repository.ReportRepository
	audit   repository.AuditLogRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(reports repository.ReportRepository, audit repository.AuditLogRepository) *UseCase {
	return &UseCase{reports: reports, audit: audit}
}

// StockOnHand existencias por bucket con filtros de bodega, producto, ubicación y estado.
func (uc *UseCase) StockOnHand(ctx context.Context, f repository.StockReportFilter) (*dto.StockReportResponse, error) {
	if f.Status != "" && !entity.IsValidStockStatus(f.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, f.Status)
	}
	f.Limit = clampLimit(f.Limit)
	rows, err := uc.reports.StockOnHand(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.StockReportResponse{
		Items: toStockItems(rows),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}, nil
}

// Valuation valor del inventario por bodega y total.
func (uc *UseCase) Valuation(ctx context.Context, companyID string) (*dto.ValuationResponse, error) {
	rows, err := uc.reports.Valuation(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := &dto.ValuationResponse{Warehouses: make([]dto.ValuationItem, 0, len(rows)), Total: decimal.Zero}
	for _, r := range rows {
		out.Warehouses = append(out.Warehouses, dto.ValuationItem{
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			Quantity:      r.Quantity,
			Value:         r.Value.Round(2),
		})
		out.Total = out.Total.Add(r.Value)
	}
	out.Total = out.Total.Round(2)
	return out, nil
}

// Expiring buckets con existencias que vencen dentro de los próximos days días.
func (uc *UseCase) Expiring(ctx context.Context, companyID string, days int) (*dto.ExpiringResponse, error) {
	if days <= 0 || days > maxExpiringDays {
		return nil, fmt.Errorf("%w: días debe estar entre 1 y %d", domain.ErrInvalidInput, maxExpiringDays)
	}
	before := time.Now().UTC().AddDate(0, 0, days)
	rows, err := uc.reports.Expiring(ctx, companyID, before)
	if err != nil {
		return nil, err
	}
	return &dto.ExpiringResponse{Days: days, Items: toStockItems(rows)}, nil
}

// AuditLog consulta la bitácora.
func (uc *UseCase) AuditLog(ctx context.Context, f repository.AuditFilter) (*dto.AuditLogListResponse, error) {
	f.Limit = clampLimit(f.Limit)
	list, err := uc.audit.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &dto.AuditLogListResponse{
		Items: make([]dto.AuditLogResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}
	for _, l := range list {
		out.Items = append(out.Items, dto.AuditLogResponse{
			ID:         l.ID,
			UserID:     l.UserID,
			Action:     l.Action,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt,
		})
	}
	return out, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func toStockItems(rows []repository.StockReportRow) []dto.StockReportItem {
	out := make([]dto.StockReportItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StockReportItem{
			StockItemID:   r.StockItemID,
			ProductID:     r.ProductID,
			SKU:           r.SKU,
			ProductName:   r.ProductName,
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			LocationID:    r.LocationID,
			BatchNumber:   r.BatchNumber,
			SerialNumber:  r.SerialNumber,
			ExpiryDate:    r.ExpiryDate,
			Status:        r.Status,
			Quantity:      r.Quantity,
			Reserved:      r.Reserved,
			Available:     r.Available,
		})
	}
	return out
}
