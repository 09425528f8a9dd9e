package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/pkg/taxid"
)

// CompanyUseCase aplica reglas de negocio para empresas (tenants).
type CompanyUseCase struct {
	store ports.Store
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(store ports.Store) *CompanyUseCase {
	return &CompanyUseCase{store: store}
}

// Create crea una nueva empresa. El NIT se normaliza con su dígito de verificación.
// Devuelve domain.ErrDuplicate si el NIT ya existe.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: nombre obligatorio", domain.ErrInvalidInput)
	}
	nit, err := taxid.Normalize(in.NIT)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	var company *entity.Company
	err = uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		existing, err := r.Companies.GetByNIT(ctx, nit)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		now := shared.Now()
		company = &entity.Company{
			ID:        shared.NewID(),
			Name:      in.Name,
			NIT:       nit,
			Address:   in.Address,
			Phone:     in.Phone,
			Email:     in.Email,
			Status:    "active",
			CreatedAt: now,
			UpdatedAt: now,
		}
		return r.Companies.Create(ctx, company)
	})
	if err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.store.Repos().Companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// Update actualiza datos de contacto o estado de la empresa del actor.
func (uc *CompanyUseCase) Update(ctx context.Context, actor shared.Actor, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	var company *entity.Company
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		var err error
		company, err = r.Companies.GetByID(ctx, actor.CompanyID)
		if err != nil {
			return err
		}
		if company == nil {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			company.Name = *in.Name
		}
		if in.Address != nil {
			company.Address = *in.Address
		}
		if in.Phone != nil {
			company.Phone = *in.Phone
		}
		if in.Email != nil {
			company.Email = *in.Email
		}
		if in.Status != nil {
			company.Status = *in.Status
		}
		company.UpdatedAt = shared.Now()
		if err := r.Companies.Update(ctx, company); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "company.update", "company", company.ID, in)
	})
	if err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(ctx context.Context, limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.store.Repos().Companies.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		NIT:       c.NIT,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
