package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.LocationRepository  = (*LocationRepo)(nil)
)

const warehouseColumns = `id, company_id, code, name, address, created_at, updated_at`

// WarehouseRepo bodegas sobre PostgreSQL. Código único por empresa.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	query := `INSERT INTO warehouses (` + warehouseColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, w.ID, w.CompanyID, w.Code, w.Name, w.Address, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE company_id = $1 AND id = $2`
	w, err := scanWarehouse(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return w, nil
}

func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	query := `UPDATE warehouses SET name = $3, address = $4, updated_at = $5 WHERE company_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, w.CompanyID, w.ID, w.Name, w.Address, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WarehouseRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE company_id = $1 ORDER BY created_at, id LIMIT NULLIF($2, 0) OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	return collect(rows, scanWarehouse)
}

func scanWarehouse(s scanner) (*entity.Warehouse, error) {
	var w entity.Warehouse
	if err := s.Scan(&w.ID, &w.CompanyID, &w.Code, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

const locationColumns = `id, company_id, warehouse_id, code, name, created_at, updated_at`

// LocationRepo ubicaciones (bins). Código único por bodega.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de ubicaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	query := `INSERT INTO locations (` + locationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, l.ID, l.CompanyID, l.WarehouseID, l.Code, l.Name, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (r *LocationRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE company_id = $1 AND id = $2`
	l, err := scanLocation(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

func (r *LocationRepo) ListByWarehouse(ctx context.Context, companyID, warehouseID string) ([]*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE company_id = $1 AND warehouse_id = $2 ORDER BY code`
	rows, err := r.q.Query(ctx, query, companyID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return collect(rows, scanLocation)
}

func scanLocation(s scanner) (*entity.Location, error) {
	var l entity.Location
	if err := s.Scan(&l.ID, &l.CompanyID, &l.WarehouseID, &l.Code, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}
