package approval_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/approval"
	"github.com/jhoicas/Bodega-api/internal/application/apptest"
	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/purchasing"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

var policy = shared.ApprovalPolicy{
	AdjustmentQuantity: decimal.NewFromInt(100),
	TransferQuantity:   decimal.NewFromInt(50),
	PurchaseOrderTotal: decimal.NewFromInt(1000),
}

type suite struct {
	f         *apptest.Fixture
	inventory *inventory.UseCase
	purchases *purchasing.UseCase
	approvals *approval.UseCase
}

func newSuite(t *testing.T) *suite {
	f := apptest.New(t)
	log := logger.Nop()
	return &suite{
		f:         f,
		inventory: inventory.NewUseCase(f.Store, f.Ledger, policy, f.Events, log),
		purchases: purchasing.NewUseCase(f.Store, f.Ledger, policy, f.Events, log),
		approvals: approval.NewUseCase(f.Store, f.Ledger, f.Events, log),
	}
}

// pendingAdjustment deja un ajuste a 500 pedido por el admin.
func (s *suite) pendingAdjustment(t *testing.T) (*entity.StockItem, *dto.AdjustmentResponse) {
	t.Helper()
	p := s.f.Product(t, "A")
	item := s.f.Stock(t, p.ID, s.f.Warehouse.ID, "10", "2")
	adj, err := s.inventory.AdjustStock(context.Background(), s.f.Admin, dto.AdjustStockRequest{
		StockItemID: item.ID, NewQuantity: apptest.D("500"), Reason: "conteo físico",
	})
	require.NoError(t, err)
	require.Equal(t, entity.MutationPendingApproval, adj.Status)
	return item, adj
}

func TestApprove_AjusteLoAplicaOtroActor(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	item, adj := s.pendingAdjustment(t)

	out, err := s.approvals.Approve(ctx, s.f.Supervisor, adj.ApprovalRequestID, dto.ReviewApprovalRequest{Comment: "ok"})
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalApproved, out.Status)
	assert.Equal(t, s.f.Supervisor.UserID, out.ReviewedBy)
	assert.NotNil(t, out.ReviewedAt)

	assert.True(t, s.f.StockItem(t, item.ID).Quantity.Equal(apptest.D("500")))

	list, err := s.inventory.ListAdjustments(ctx, repository.OrderFilter{CompanyID: s.f.Company.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.MutationApplied, list[0].Status)
	assert.Equal(t, s.f.Supervisor.UserID, list[0].ApprovedBy)

	assert.Contains(t, s.f.Events.Types(), ports.EventApprovalResolved)
}

func TestApprove_MismoActorNoPuede(t *testing.T) {
	s := newSuite(t)
	_, adj := s.pendingAdjustment(t)

	_, err := s.approvals.Approve(context.Background(), s.f.Admin, adj.ApprovalRequestID, dto.ReviewApprovalRequest{})
	assert.ErrorIs(t, err, domain.ErrSelfApproval)
}

func TestApprove_RolSinPermiso(t *testing.T) {
	s := newSuite(t)
	_, adj := s.pendingAdjustment(t)
	bodeguero := s.f.User(t, "bodega@norte.co", entity.RoleBodeguero)

	_, err := s.approvals.Approve(context.Background(), bodeguero, adj.ApprovalRequestID, dto.ReviewApprovalRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApprove_SolicitudYaResuelta(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	_, adj := s.pendingAdjustment(t)

	_, err := s.approvals.Approve(ctx, s.f.Supervisor, adj.ApprovalRequestID, dto.ReviewApprovalRequest{})
	require.NoError(t, err)
	_, err = s.approvals.Reject(ctx, s.f.Supervisor, adj.ApprovalRequestID, dto.ReviewApprovalRequest{Comment: "tarde"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = s.approvals.Approve(ctx, s.f.Supervisor, "no-existe", dto.ReviewApprovalRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApprove_AjusteDesactualizadoEsConflicto(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	item, adj := s.pendingAdjustment(t)

	// el bucket cambia mientras el ajuste espera
	_, err := s.inventory.AdjustStock(ctx, s.f.Admin, dto.AdjustStockRequest{StockItemID: item.ID, NewQuantity: apptest.D("8"), Reason: "merma"})
	require.NoError(t, err)

	_, err = s.approvals.Approve(ctx, s.f.Supervisor, adj.ApprovalRequestID, dto.ReviewApprovalRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, s.f.StockItem(t, item.ID).Quantity.Equal(apptest.D("8")))
}

func TestReject_RequiereComentarioYNoTocaStock(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	item, adj := s.pendingAdjustment(t)

	_, err := s.approvals.Reject(ctx, s.f.Supervisor, adj.ApprovalRequestID, dto.ReviewApprovalRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := s.approvals.Reject(ctx, s.f.Supervisor, adj.ApprovalRequestID, dto.ReviewApprovalRequest{Comment: "no cuadra"})
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalRejected, out.Status)
	assert.True(t, s.f.StockItem(t, item.ID).Quantity.Equal(apptest.D("10")))
}

func TestApprove_Traslado(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	p := s.f.Product(t, "B")
	src := s.f.Stock(t, p.ID, s.f.Warehouse.ID, "100", "1")
	dst := s.f.NewWarehouse(t, "SUR")

	tr, err := s.inventory.TransferStock(ctx, s.f.Admin, dto.TransferStockRequest{StockItemID: src.ID, ToWarehouseID: dst.ID, Quantity: apptest.D("60")})
	require.NoError(t, err)
	require.Equal(t, entity.MutationPendingApproval, tr.Status)

	_, err = s.approvals.Approve(ctx, s.f.Supervisor, tr.ApprovalRequestID, dto.ReviewApprovalRequest{})
	require.NoError(t, err)

	list, err := s.inventory.ListTransfers(ctx, repository.OrderFilter{CompanyID: s.f.Company.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.MutationCompleted, list[0].Status)
	assert.True(t, s.f.StockItem(t, src.ID).Quantity.Equal(apptest.D("40")))
	assert.True(t, s.f.StockItem(t, list[0].DestStockItemID).Quantity.Equal(apptest.D("60")))
}

func TestApprove_OrdenDeCompra(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	p := s.f.Product(t, "C")
	po, err := s.purchases.Create(ctx, s.f.Admin, dto.CreatePurchaseOrderRequest{
		SupplierName: "Distribuidora Andina",
		WarehouseID:  s.f.Warehouse.ID,
		Items:        []dto.PurchaseOrderItemRequest{{ProductID: p.ID, Quantity: apptest.D("20"), UnitCost: apptest.D("100")}},
	})
	require.NoError(t, err)
	sub, err := s.purchases.Submit(ctx, s.f.Admin, po.ID)
	require.NoError(t, err)
	require.Equal(t, entity.PurchaseOrderPendingApproval, sub.Status)

	_, err = s.approvals.Reject(ctx, s.f.Supervisor, sub.ApprovalRequestID, dto.ReviewApprovalRequest{Comment: "muy caro"})
	require.NoError(t, err)

	got, err := s.purchases.GetByID(ctx, s.f.Company.ID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderRejected, got.Status)
}

func TestList_PendientesYEstadoInvalido(t *testing.T) {
	s := newSuite(t)
	ctx := context.Background()
	s.pendingAdjustment(t)

	out, err := s.approvals.List(ctx, repository.OrderFilter{CompanyID: s.f.Company.ID, Status: entity.ApprovalPending, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)

	_, err = s.approvals.List(ctx, repository.OrderFilter{CompanyID: s.f.Company.ID, Status: "QUIZAS"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
