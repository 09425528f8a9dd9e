package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var (
	_ repository.KitRepository      = (*KitRepo)(nil)
	_ repository.AssemblyRepository = (*AssemblyRepo)(nil)
)

const kitSelect = `SELECT id, company_id, product_id, name, created_at, updated_at FROM kits`

// KitRepo listas de materiales. Un kit por producto.
type KitRepo struct {
	q Querier
}

// NewKitRepository construye el adaptador de kits.
func NewKitRepository(q Querier) *KitRepo {
	return &KitRepo{q: q}
}

func (r *KitRepo) Create(ctx context.Context, k *entity.Kit) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO kits (id, company_id, product_id, name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		k.ID, k.CompanyID, k.ProductID, k.Name, k.CreatedAt, k.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert kit: %w", err)
	}
	for i, c := range k.Components {
		_, err := r.q.Exec(ctx,
			`INSERT INTO kit_components (id, kit_id, product_id, quantity, position) VALUES ($1, $2, $3, $4, $5)`,
			c.ID, k.ID, c.ProductID, c.Quantity, i,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert kit component: %w", err)
		}
	}
	return nil
}

func (r *KitRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Kit, error) {
	return r.getOne(ctx, kitSelect+` WHERE company_id = $1 AND id = $2`, companyID, id)
}

func (r *KitRepo) GetByProduct(ctx context.Context, companyID, productID string) (*entity.Kit, error) {
	return r.getOne(ctx, kitSelect+` WHERE company_id = $1 AND product_id = $2`, companyID, productID)
}

func (r *KitRepo) List(ctx context.Context, companyID string) ([]*entity.Kit, error) {
	rows, err := r.q.Query(ctx, kitSelect+` WHERE company_id = $1 ORDER BY created_at, id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list kits: %w", err)
	}
	return r.withComponents(ctx, rows)
}

func (r *KitRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Kit, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get kit: %w", err)
	}
	list, err := r.withComponents(ctx, rows)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *KitRepo) withComponents(ctx context.Context, rows pgx.Rows) ([]*entity.Kit, error) {
	list, err := collect(rows, func(s scanner) (*entity.Kit, error) {
		var k entity.Kit
		err := s.Scan(&k.ID, &k.CompanyID, &k.ProductID, &k.Name, &k.CreatedAt, &k.UpdatedAt)
		return &k, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan kits: %w", err)
	}
	for _, k := range list {
		comps, err := r.q.Query(ctx,
			`SELECT id, kit_id, product_id, quantity FROM kit_components WHERE kit_id = $1 ORDER BY position`, k.ID)
		if err != nil {
			return nil, fmt.Errorf("list kit components: %w", err)
		}
		k.Components, err = collect(comps, func(s scanner) (*entity.KitComponent, error) {
			var c entity.KitComponent
			err := s.Scan(&c.ID, &c.KitID, &c.ProductID, &c.Quantity)
			return &c, err
		})
		if err != nil {
			return nil, fmt.Errorf("scan kit components: %w", err)
		}
	}
	return list, nil
}

// AssemblyRepo historial de ensambles y desensambles.
type AssemblyRepo struct {
	q Querier
}

// NewAssemblyRepository construye el adaptador de órdenes de ensamble.
func NewAssemblyRepository(q Querier) *AssemblyRepo {
	return &AssemblyRepo{q: q}
}

func (r *AssemblyRepo) Create(ctx context.Context, o *entity.AssemblyOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO assembly_orders (id, company_id, number, kit_id, type, warehouse_id, location_id,
			quantity, unit_cost, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.CompanyID, o.Number, o.KitID, o.Type, o.WarehouseID, nullable(o.LocationID),
		o.Quantity, o.UnitCost, o.CreatedBy, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assembly order: %w", err)
	}
	return nil
}

func (r *AssemblyRepo) ListByKit(ctx context.Context, companyID, kitID string) ([]*entity.AssemblyOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, number, kit_id, type, warehouse_id, COALESCE(location_id::text, ''),
		       quantity, unit_cost, created_by, created_at
		FROM assembly_orders WHERE company_id = $1 AND kit_id = $2
		ORDER BY created_at DESC, number DESC`, companyID, kitID)
	if err != nil {
		return nil, fmt.Errorf("list assembly orders: %w", err)
	}
	return collect(rows, func(s scanner) (*entity.AssemblyOrder, error) {
		var o entity.AssemblyOrder
		err := s.Scan(&o.ID, &o.CompanyID, &o.Number, &o.KitID, &o.Type, &o.WarehouseID, &o.LocationID,
			&o.Quantity, &o.UnitCost, &o.CreatedBy, &o.CreatedAt)
		return &o, err
	})
}
