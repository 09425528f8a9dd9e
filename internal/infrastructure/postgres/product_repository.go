package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

var productColumns = []any{
	"id", "company_id", "sku", "name", "description", "price", "cost", "unit_measure", "reorder_point",
	"track_batch", "track_serial", "track_expiry", "is_kit", "attributes", "created_at", "updated_at",
}

const productSelect = `
	SELECT id, company_id, sku, name, description, price, cost, unit_measure, reorder_point,
	       track_batch, track_serial, track_expiry, is_kit, attributes, created_at, updated_at
	FROM products`

// ProductRepo productos sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. Cost inicia en 0.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, company_id, sku, name, description, price, cost, unit_measure, reorder_point,
			track_batch, track_serial, track_expiry, is_kit, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.SKU, p.Name, p.Description, p.Price, p.Cost, p.UnitMeasure, p.ReorderPoint,
		p.TrackBatch, p.TrackSerial, p.TrackExpiry, p.IsKit, p.Attributes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	return r.getOne(ctx, productSelect+` WHERE company_id = $1 AND id = $2`, companyID, id)
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	return r.getOne(ctx, productSelect+` WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
}

func (r *ProductRepo) GetBySKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	return r.getOne(ctx, productSelect+` WHERE company_id = $1 AND sku = $2`, companyID, sku)
}

// Update actualiza datos maestros. El costo solo lo mueve UpdateCost.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET name = $3, description = $4, price = $5, unit_measure = $6, reorder_point = $7,
			track_batch = $8, track_serial = $9, track_expiry = $10, is_kit = $11, attributes = $12, updated_at = $13
		WHERE company_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		p.CompanyID, p.ID, p.Name, p.Description, p.Price, p.UnitMeasure, p.ReorderPoint,
		p.TrackBatch, p.TrackSerial, p.TrackExpiry, p.IsKit, p.Attributes, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) UpdateCost(ctx context.Context, companyID, productID string, cost decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET cost = $3, updated_at = now() WHERE company_id = $1 AND id = $2`,
		companyID, productID, cost,
	)
	if err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	ds := dialect.From("products").Select(productColumns...).
		Where(goqu.C("company_id").Eq(f.CompanyID)).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc())
	if f.Search != "" {
		like := "%" + f.Search + "%"
		ds = ds.Where(goqu.Or(goqu.C("sku").ILike(like), goqu.C("name").ILike(like)))
	}
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit))
	}
	if f.Offset > 0 {
		ds = ds.Offset(uint(f.Offset))
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build product list: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collect(rows, scanProduct)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func scanProduct(s scanner) (*entity.Product, error) {
	var p entity.Product
	err := s.Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Cost, &p.UnitMeasure, &p.ReorderPoint,
		&p.TrackBatch, &p.TrackSerial, &p.TrackExpiry, &p.IsKit, &p.Attributes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
