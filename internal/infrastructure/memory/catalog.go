package memory

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var (
	_ repository.CompanyRepository   = (*CompanyRepo)(nil)
	_ repository.UserRepository      = (*UserRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.LocationRepository  = (*LocationRepo)(nil)
	_ repository.ProductRepository   = (*ProductRepo)(nil)
)

// CompanyRepo empresas en memoria.
type CompanyRepo struct{ *db }

func (r *CompanyRepo) Create(_ context.Context, c *entity.Company) error {
	defer r.lock()()
	st := r.state()
	for _, existing := range st.companies {
		if existing.NIT == c.NIT {
			return domain.ErrDuplicate
		}
	}
	st.companies[c.ID] = *c
	return nil
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	defer r.lock()()
	if c, ok := r.state().companies[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *CompanyRepo) GetByNIT(_ context.Context, nit string) (*entity.Company, error) {
	defer r.lock()()
	for _, c := range r.state().companies {
		if c.NIT == nit {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *CompanyRepo) Update(_ context.Context, c *entity.Company) error {
	defer r.lock()()
	st := r.state()
	if _, ok := st.companies[c.ID]; !ok {
		return domain.ErrNotFound
	}
	st.companies[c.ID] = *c
	return nil
}

func (r *CompanyRepo) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	defer r.lock()()
	list := make([]*entity.Company, 0, len(r.state().companies))
	for _, c := range r.state().companies {
		list = append(list, ptr(c))
	}
	byCreated(list, func(c *entity.Company) time.Time { return c.CreatedAt }, func(c *entity.Company) string { return c.ID })
	return page(list, limit, offset), nil
}

// UserRepo usuarios en memoria. El email es único en todo el sistema.
type UserRepo struct{ *db }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	defer r.lock()()
	st := r.state()
	for _, existing := range st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	st.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	defer r.lock()()
	if u, ok := r.state().users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	defer r.lock()()
	for _, u := range r.state().users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	defer r.lock()()
	st := r.state()
	if _, ok := st.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	st.users[u.ID] = *u
	return nil
}

func (r *UserRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	defer r.lock()()
	var list []*entity.User
	for _, u := range r.state().users {
		if u.CompanyID == companyID {
			list = append(list, ptr(u))
		}
	}
	byCreated(list, func(u *entity.User) time.Time { return u.CreatedAt }, func(u *entity.User) string { return u.ID })
	return page(list, limit, offset), nil
}

// WarehouseRepo bodegas en memoria. Código único por empresa.
type WarehouseRepo struct{ *db }

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	defer r.lock()()
	st := r.state()
	for _, existing := range st.warehouses {
		if existing.CompanyID == w.CompanyID && existing.Code == w.Code {
			return domain.ErrDuplicate
		}
	}
	st.warehouses[w.ID] = *w
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, companyID, id string) (*entity.Warehouse, error) {
	defer r.lock()()
	if w, ok := r.state().warehouses[id]; ok && w.CompanyID == companyID {
		return &w, nil
	}
	return nil, nil
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	defer r.lock()()
	st := r.state()
	if cur, ok := st.warehouses[w.ID]; !ok || cur.CompanyID != w.CompanyID {
		return domain.ErrNotFound
	}
	st.warehouses[w.ID] = *w
	return nil
}

func (r *WarehouseRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	defer r.lock()()
	var list []*entity.Warehouse
	for _, w := range r.state().warehouses {
		if w.CompanyID == companyID {
			list = append(list, ptr(w))
		}
	}
	byCreated(list, func(w *entity.Warehouse) time.Time { return w.CreatedAt }, func(w *entity.Warehouse) string { return w.ID })
	return page(list, limit, offset), nil
}

// LocationRepo ubicaciones en memoria. Código único por bodega.
type LocationRepo struct{ *db }

func (r *LocationRepo) Create(_ context.Context, l *entity.Location) error {
	defer r.lock()()
	st := r.state()
	for _, existing := range st.locations {
		if existing.WarehouseID == l.WarehouseID && existing.Code == l.Code {
			return domain.ErrDuplicate
		}
	}
	st.locations[l.ID] = *l
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, companyID, id string) (*entity.Location, error) {
	defer r.lock()()
	if l, ok := r.state().locations[id]; ok && l.CompanyID == companyID {
		return &l, nil
	}
	return nil, nil
}

func (r *LocationRepo) ListByWarehouse(_ context.Context, companyID, warehouseID string) ([]*entity.Location, error) {
	defer r.lock()()
	var list []*entity.Location
	for _, l := range r.state().locations {
		if l.CompanyID == companyID && l.WarehouseID == warehouseID {
			list = append(list, ptr(l))
		}
	}
	byCreated(list, func(l *entity.Location) time.Time { return l.CreatedAt }, func(l *entity.Location) string { return l.ID })
	return list, nil
}

// ProductRepo productos en memoria. SKU único por empresa.
type ProductRepo struct{ *db }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.lock()()
	st := r.state()
	for _, existing := range st.products {
		if existing.CompanyID == p.CompanyID && existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	st.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, companyID, id string) (*entity.Product, error) {
	defer r.lock()()
	if p, ok := r.state().products[id]; ok && p.CompanyID == companyID {
		return &p, nil
	}
	return nil, nil
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *ProductRepo) GetBySKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	defer r.lock()()
	for _, p := range r.state().products {
		if p.CompanyID == companyID && p.SKU == sku {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.lock()()
	st := r.state()
	cur, ok := st.products[p.ID]
	if !ok || cur.CompanyID != p.CompanyID {
		return domain.ErrNotFound
	}
	// el costo solo lo mueve UpdateCost
	p.Cost = cur.Cost
	st.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) UpdateCost(_ context.Context, companyID, productID string, cost decimal.Decimal) error {
	defer r.lock()()
	st := r.state()
	p, ok := st.products[productID]
	if !ok || p.CompanyID != companyID {
		return domain.ErrNotFound
	}
	p.Cost = cost
	st.products[productID] = p
	return nil
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	defer r.lock()()
	search := strings.ToLower(f.Search)
	var list []*entity.Product
	for _, p := range r.state().products {
		if p.CompanyID != f.CompanyID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.SKU), search) && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		list = append(list, ptr(p))
	}
	byCreated(list, func(p *entity.Product) time.Time { return p.CreatedAt }, func(p *entity.Product) string { return p.ID })
	return page(list, f.Limit, f.Offset), nil
}
