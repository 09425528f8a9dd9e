package ports

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Companies      repository.CompanyRepository
	Users          repository.UserRepository
	Warehouses     repository.WarehouseRepository
	Locations      repository.LocationRepository
	Products       repository.ProductRepository
	StockItems     repository.StockItemRepository
	Movements      repository.StockMovementRepository
	Reservations   repository.ReservationRepository
	SalesOrders    repository.SalesOrderRepository
	Shipments      repository.ShipmentRepository
	PurchaseOrders repository.PurchaseOrderRepository
	Receipts       repository.GoodsReceiptRepository
	Adjustments    repository.AdjustmentRepository
	Transfers      repository.TransferRepository
	Kits           repository.KitRepository
	Assemblies     repository.AssemblyRepository
	Approvals      repository.ApprovalRepository
	AuditLogs      repository.AuditLogRepository
	Sequences      repository.SequenceRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ningún cambio queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// Store acceso a datos de los casos de uso: repositorios fuera de transacción para lecturas
// y Run para las escrituras atómicas.
type Store interface {
	TxRunner
	Repos() TxRepos
}
