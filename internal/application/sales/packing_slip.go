package sales

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/domain"
)

// PackingSlip arma los datos del despacho y genera el PDF de lista de empaque.
func (uc *UseCase) PackingSlip(ctx context.Context, companyID, shipmentID string) ([]byte, string, error) {
	repos := uc.store.Repos()
	shipment, err := repos.Shipments.GetByID(ctx, companyID, shipmentID)
	if err != nil {
		return nil, "", err
	}
	if shipment == nil {
		return nil, "", domain.ErrNotFound
	}
	order, err := repos.SalesOrders.GetByID(ctx, companyID, shipment.SalesOrderID)
	if err != nil {
		return nil, "", err
	}
	if order == nil {
		return nil, "", domain.ErrNotFound
	}
	company, err := repos.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	wh, err := repos.Warehouses.GetByID(ctx, companyID, shipment.WarehouseID)
	if err != nil {
		return nil, "", err
	}

	slip := &dto.PackingSlipDTO{
		ShipmentNumber: shipment.Number,
		OrderNumber:    order.Number,
		CustomerName:   order.CustomerName,
		Date:           shipment.CreatedAt,
	}
	if company != nil {
		slip.CompanyName = company.Name
		slip.CompanyNIT = company.NIT
	}
	if wh != nil {
		slip.WarehouseName = wh.Name
	}
	for _, l := range shipment.Lines {
		line := dto.PackingSlipLine{
			BatchNumber:  l.BatchNumber,
			SerialNumber: l.SerialNumber,
			Quantity:     l.Quantity,
		}
		p, err := repos.Products.GetByID(ctx, companyID, l.ProductID)
		if err != nil {
			return nil, "", err
		}
		if p != nil {
			line.SKU = p.SKU
			line.Name = p.Name
		}
		slip.Lines = append(slip.Lines, line)
	}

	pdf, err := uc.slips.Generate(slip)
	if err != nil {
		return nil, "", err
	}
	return pdf, shipment.Number + ".pdf", nil
}
