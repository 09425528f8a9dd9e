package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// WarehouseUseCase casos de uso para bodegas y sus ubicaciones.
type WarehouseUseCase struct {
	store ports.Store
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(store ports.Store) *WarehouseUseCase {
	return &WarehouseUseCase{store: store}
}

// Create crea una nueva bodega.
func (uc *WarehouseUseCase) Create(ctx context.Context, actor shared.Actor, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: código y nombre son obligatorios", domain.ErrInvalidInput)
	}
	now := shared.Now()
	warehouse := &entity.Warehouse{
		ID:        shared.NewID(),
		CompanyID: actor.CompanyID,
		Code:      in.Code,
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		if err := r.Warehouses.Create(ctx, warehouse); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "warehouse.create", "warehouse", warehouse.ID, in)
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.store.Repos().Warehouses.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	return toWarehouseResponse(warehouse), nil
}

// Update actualiza una bodega.
func (uc *WarehouseUseCase) Update(ctx context.Context, actor shared.Actor, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	var warehouse *entity.Warehouse
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		var err error
		warehouse, err = r.Warehouses.GetByID(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if warehouse == nil {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			warehouse.Name = *in.Name
		}
		if in.Address != nil {
			warehouse.Address = *in.Address
		}
		warehouse.UpdatedAt = shared.Now()
		if err := r.Warehouses.Update(ctx, warehouse); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "warehouse.update", "warehouse", warehouse.ID, in)
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas por empresa con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.WarehouseListResponse, error) {
	list, err := uc.store.Repos().Warehouses.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// CreateLocation agrega una ubicación a la bodega.
func (uc *WarehouseUseCase) CreateLocation(ctx context.Context, actor shared.Actor, warehouseID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if in.Code == "" {
		return nil, fmt.Errorf("%w: código de ubicación obligatorio", domain.ErrInvalidInput)
	}
	var loc *entity.Location
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		wh, err := r.Warehouses.GetByID(ctx, actor.CompanyID, warehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.ErrNotFound
		}
		now := shared.Now()
		loc = &entity.Location{
			ID:          shared.NewID(),
			CompanyID:   actor.CompanyID,
			WarehouseID: wh.ID,
			Code:        in.Code,
			Name:        in.Name,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := r.Locations.Create(ctx, loc); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "location.create", "location", loc.ID, in)
	})
	if err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// ListLocations ubicaciones de una bodega.
func (uc *WarehouseUseCase) ListLocations(ctx context.Context, companyID, warehouseID string) ([]dto.LocationResponse, error) {
	list, err := uc.store.Repos().Locations.ListByWarehouse(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, *toLocationResponse(l))
	}
	return out, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		CompanyID: w.CompanyID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:          l.ID,
		WarehouseID: l.WarehouseID,
		Code:        l.Code,
		Name:        l.Name,
		CreatedAt:   l.CreatedAt,
	}
}
