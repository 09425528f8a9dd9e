package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Bodega-api/internal/application/ports"
)

var _ ports.Store = (*Store)(nil)

// Store implementa ports.Store sobre un pool pgx.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore construye el store con el pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos ports.TxRepos) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, reposOn(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repos repositorios sobre el pool (cada sentencia en su propia transacción implícita).
func (s *Store) Repos() ports.TxRepos {
	return reposOn(s.pool)
}

// Reports repositorio de reportes sobre el pool.
func (s *Store) Reports() *ReportRepo {
	return NewReportRepository(s.pool)
}

func reposOn(q Querier) ports.TxRepos {
	return ports.TxRepos{
		Companies:      NewCompanyRepository(q),
		Users:          NewUserRepository(q),
		Warehouses:     NewWarehouseRepository(q),
		Locations:      NewLocationRepository(q),
		Products:       NewProductRepository(q),
		StockItems:     NewStockItemRepository(q),
		Movements:      NewMovementRepository(q),
		Reservations:   NewReservationRepository(q),
		SalesOrders:    NewSalesOrderRepository(q),
		Shipments:      NewShipmentRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		Receipts:       NewReceiptRepository(q),
		Adjustments:    NewAdjustmentRepository(q),
		Transfers:      NewTransferRepository(q),
		Kits:           NewKitRepository(q),
		Assemblies:     NewAssemblyRepository(q),
		Approvals:      NewApprovalRepository(q),
		AuditLogs:      NewAuditLogRepository(q),
		Sequences:      NewSequenceRepository(q),
	}
}
