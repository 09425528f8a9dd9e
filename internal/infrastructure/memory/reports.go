package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de reportes sobre el estado en memoria.
type ReportRepo struct{ *db }

func (r *ReportRepo) StockOnHand(_ context.Context, f repository.StockReportFilter) ([]repository.StockReportRow, error) {
	defer r.lock()()
	st := r.state()
	var rows []repository.StockReportRow
	for _, s := range st.stock {
		if s.CompanyID != f.CompanyID || s.Quantity.IsZero() {
			continue
		}
		if (f.WarehouseID != "" && s.WarehouseID != f.WarehouseID) ||
			(f.ProductID != "" && s.ProductID != f.ProductID) ||
			(f.LocationID != "" && s.LocationID != f.LocationID) ||
			(f.Status != "" && s.Status != f.Status) {
			continue
		}
		rows = append(rows, st.reportRow(s))
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SKU != rows[j].SKU {
			return rows[i].SKU < rows[j].SKU
		}
		if rows[i].WarehouseName != rows[j].WarehouseName {
			return rows[i].WarehouseName < rows[j].WarehouseName
		}
		return rows[i].StockItemID < rows[j].StockItemID
	})
	return page(rows, f.Limit, f.Offset), nil
}

func (r *ReportRepo) Valuation(_ context.Context, companyID string) ([]repository.ValuationRow, error) {
	defer r.lock()()
	st := r.state()
	byWarehouse := map[string]*repository.ValuationRow{}
	for _, s := range st.stock {
		if s.CompanyID != companyID {
			continue
		}
		row, ok := byWarehouse[s.WarehouseID]
		if !ok {
			row = &repository.ValuationRow{
				WarehouseID:   s.WarehouseID,
				WarehouseName: st.warehouses[s.WarehouseID].Name,
				Quantity:      decimal.Zero,
				Value:         decimal.Zero,
			}
			byWarehouse[s.WarehouseID] = row
		}
		row.Quantity = row.Quantity.Add(s.Quantity)
		row.Value = row.Value.Add(s.Quantity.Mul(st.products[s.ProductID].Cost))
	}
	rows := make([]repository.ValuationRow, 0, len(byWarehouse))
	for _, row := range byWarehouse {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].WarehouseName < rows[j].WarehouseName })
	return rows, nil
}

func (r *ReportRepo) Expiring(_ context.Context, companyID string, before time.Time) ([]repository.StockReportRow, error) {
	defer r.lock()()
	st := r.state()
	var rows []repository.StockReportRow
	for _, s := range st.stock {
		if s.CompanyID != companyID || !s.Quantity.IsPositive() || s.ExpiryDate == nil {
			continue
		}
		if s.ExpiryDate.Before(before) {
			rows = append(rows, st.reportRow(s))
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := *rows[i].ExpiryDate, *rows[j].ExpiryDate
		if !a.Equal(b) {
			return a.Before(b)
		}
		return rows[i].StockItemID < rows[j].StockItemID
	})
	return rows, nil
}

func (r *ReportRepo) BelowReorderPoint(_ context.Context, companyID, warehouseID string, since time.Time) ([]repository.ReorderCandidate, error) {
	defer r.lock()()
	st := r.state()
	onHand := map[string]decimal.Decimal{}
	for _, s := range st.stock {
		if s.CompanyID != companyID || (warehouseID != "" && s.WarehouseID != warehouseID) {
			continue
		}
		onHand[s.ProductID] = onHand[s.ProductID].Add(s.Quantity)
	}
	sold := map[string]decimal.Decimal{}
	for _, m := range st.movements {
		if m.CompanyID != companyID || m.Type != entity.MovementSalesShipment || m.CreatedAt.Before(since) {
			continue
		}
		if warehouseID != "" && m.WarehouseID != warehouseID {
			continue
		}
		// las salidas quedan en negativo
		sold[m.ProductID] = sold[m.ProductID].Sub(m.Quantity)
	}

	var out []repository.ReorderCandidate
	for _, p := range st.products {
		if p.CompanyID != companyID || !p.ReorderPoint.IsPositive() {
			continue
		}
		qty := onHand[p.ID]
		if !qty.LessThan(p.ReorderPoint) {
			continue
		}
		out = append(out, repository.ReorderCandidate{
			ProductID:    p.ID,
			SKU:          p.SKU,
			Name:         p.Name,
			OnHand:       qty,
			ReorderPoint: p.ReorderPoint,
			Cost:         p.Cost,
			Price:        p.Price,
			UnitsSold:    sold[p.ID],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *ReportRepo) Dashboard(_ context.Context, companyID string) (*repository.DashboardCounts, error) {
	defer r.lock()()
	st := r.state()
	c := &repository.DashboardCounts{StockValue: decimal.Zero}

	for _, a := range st.approvals {
		if a.CompanyID == companyID && a.Status == entity.ApprovalPending {
			c.PendingApprovals++
		}
	}
	for _, o := range st.salesOrders {
		if o.CompanyID != companyID {
			continue
		}
		if o.Status == entity.SalesOrderConfirmed || o.Status == entity.SalesOrderPartiallyFulfilled {
			c.OpenSalesOrders++
		}
	}
	for _, o := range st.purchaseOrders {
		if o.CompanyID != companyID {
			continue
		}
		switch o.Status {
		case entity.PurchaseOrderPendingApproval, entity.PurchaseOrderApproved, entity.PurchaseOrderPartiallyReceived:
			c.OpenPurchaseOrders++
		}
	}

	onHand := map[string]decimal.Decimal{}
	for _, s := range st.stock {
		if s.CompanyID != companyID {
			continue
		}
		onHand[s.ProductID] = onHand[s.ProductID].Add(s.Quantity)
		c.StockValue = c.StockValue.Add(s.Quantity.Mul(st.products[s.ProductID].Cost))
	}
	for _, p := range st.products {
		if p.CompanyID == companyID && p.ReorderPoint.IsPositive() && onHand[p.ID].LessThan(p.ReorderPoint) {
			c.LowStockProducts++
		}
	}
	return c, nil
}

func (st *state) reportRow(s entity.StockItem) repository.StockReportRow {
	p := st.products[s.ProductID]
	return repository.StockReportRow{
		StockItemID:   s.ID,
		ProductID:     s.ProductID,
		SKU:           p.SKU,
		ProductName:   p.Name,
		WarehouseID:   s.WarehouseID,
		WarehouseName: st.warehouses[s.WarehouseID].Name,
		LocationID:    s.LocationID,
		BatchNumber:   s.BatchNumber,
		SerialNumber:  s.SerialNumber,
		ExpiryDate:    s.ExpiryDate,
		Status:        s.Status,
		Quantity:      s.Quantity,
		Reserved:      s.ReservedQuantity,
		Available:     s.Available(),
	}
}
