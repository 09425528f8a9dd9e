package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Cost y stock se manejan vía movimientos.
type ProductUseCase struct {
	store ports.Store
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(store ports.Store) *ProductUseCase {
	return &ProductUseCase{store: store}
}

// Create crea un nuevo producto. Cost inicia en 0.
// Un producto serializado no puede ser kit.
func (uc *ProductUseCase) Create(ctx context.Context, actor shared.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	if in.SKU == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: sku y nombre son obligatorios", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() || in.ReorderPoint.IsNegative() {
		return nil, fmt.Errorf("%w: precio y punto de reorden no pueden ser negativos", domain.ErrInvalidInput)
	}
	if in.IsKit && in.TrackSerial {
		return nil, fmt.Errorf("%w: un kit no puede ser serializado", domain.ErrInvalidInput)
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "94"
	}
	var product *entity.Product
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		existing, err := r.Products.GetBySKU(ctx, actor.CompanyID, in.SKU)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		now := shared.Now()
		product = &entity.Product{
			ID:           shared.NewID(),
			CompanyID:    actor.CompanyID,
			SKU:          in.SKU,
			Name:         in.Name,
			Description:  in.Description,
			Price:        in.Price,
			Cost:         decimal.Zero,
			UnitMeasure:  in.UnitMeasure,
			ReorderPoint: in.ReorderPoint,
			TrackBatch:   in.TrackBatch,
			TrackSerial:  in.TrackSerial,
			TrackExpiry:  in.TrackExpiry,
			IsKit:        in.IsKit,
			Attributes:   in.Attributes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.Products.Create(ctx, product); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "product.create", "product", product.ID, map[string]string{"sku": product.SKU})
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.store.Repos().Products.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Cost ni las banderas de trazabilidad.
func (uc *ProductUseCase) Update(ctx context.Context, actor shared.Actor, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		var err error
		product, err = r.Products.GetByID(ctx, actor.CompanyID, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			product.Name = *in.Name
		}
		if in.Description != nil {
			product.Description = *in.Description
		}
		if in.Price != nil {
			if in.Price.IsNegative() {
				return domain.ErrInvalidInput
			}
			product.Price = *in.Price
		}
		if in.ReorderPoint != nil {
			if in.ReorderPoint.IsNegative() {
				return domain.ErrInvalidInput
			}
			product.ReorderPoint = *in.ReorderPoint
		}
		if in.UnitMeasure != nil {
			product.UnitMeasure = *in.UnitMeasure
		}
		if len(in.Attributes) > 0 {
			product.Attributes = in.Attributes
		}
		product.UpdatedAt = shared.Now()
		if err := r.Products.Update(ctx, product); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "product.update", "product", product.ID, in)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos por empresa con búsqueda y paginación.
func (uc *ProductUseCase) List(ctx context.Context, f repository.ProductFilter) (*dto.ProductListResponse, error) {
	list, err := uc.store.Repos().Products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		CompanyID:    p.CompanyID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Cost:         p.Cost,
		UnitMeasure:  p.UnitMeasure,
		ReorderPoint: p.ReorderPoint,
		TrackBatch:   p.TrackBatch,
		TrackSerial:  p.TrackSerial,
		TrackExpiry:  p.TrackExpiry,
		IsKit:        p.IsKit,
		Attributes:   p.Attributes,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
