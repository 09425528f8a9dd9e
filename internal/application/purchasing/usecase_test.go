package purchasing_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/apptest"
	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/purchasing"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

func newUseCase(f *apptest.Fixture) *purchasing.UseCase {
	policy := shared.ApprovalPolicy{PurchaseOrderTotal: decimal.NewFromInt(10000)}
	return purchasing.NewUseCase(f.Store, f.Ledger, policy, f.Events, logger.Nop())
}

func createOrder(t *testing.T, uc *purchasing.UseCase, f *apptest.Fixture, productID, qty, cost string) *dto.PurchaseOrderResponse {
	t.Helper()
	out, err := uc.Create(context.Background(), f.Admin, dto.CreatePurchaseOrderRequest{
		SupplierName: "Distribuidora Andina",
		WarehouseID:  f.Warehouse.ID,
		Items:        []dto.PurchaseOrderItemRequest{{ProductID: productID, Quantity: apptest.D(qty), UnitCost: apptest.D(cost)}},
	})
	require.NoError(t, err)
	return out
}

func TestCreate_Validaciones(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	ctx := context.Background()
	p := f.Product(t, "A")

	_, err := uc.Create(ctx, f.Admin, dto.CreatePurchaseOrderRequest{WarehouseID: f.Warehouse.ID, Items: []dto.PurchaseOrderItemRequest{{ProductID: p.ID, Quantity: apptest.D("1")}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "proveedor obligatorio")

	_, err = uc.Create(ctx, f.Admin, dto.CreatePurchaseOrderRequest{
		SupplierName: "X", WarehouseID: f.Warehouse.ID,
		Items: []dto.PurchaseOrderItemRequest{{ProductID: p.ID, Quantity: apptest.D("1"), UnitCost: apptest.D("-1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out := createOrder(t, uc, f, p.ID, "4", "25")
	assert.Equal(t, entity.PurchaseOrderDraft, out.Status)
	assert.Equal(t, "PO-000001", out.Number)
	assert.True(t, out.Total.Equal(apptest.D("100")))
}

func TestSubmit_BajoUmbralQuedaAprobada(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	p := f.Product(t, "A")
	o := createOrder(t, uc, f, p.ID, "4", "25")

	out, err := uc.Submit(context.Background(), f.Admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderApproved, out.Status)
	assert.Empty(t, out.ApprovalRequestID)

	_, err = uc.Submit(context.Background(), f.Admin, o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSubmit_SobreUmbralPideAprobacion(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	p := f.Product(t, "A")
	o := createOrder(t, uc, f, p.ID, "100", "100")

	out, err := uc.Submit(context.Background(), f.Admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderPendingApproval, out.Status)
	assert.NotEmpty(t, out.ApprovalRequestID)

	_, err = uc.Receive(context.Background(), f.Admin, o.ID, dto.ReceivePurchaseOrderRequest{
		Lines: []dto.ReceiveLineRequest{{PurchaseOrderItemID: o.Items[0].ID, Quantity: apptest.D("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "no se recibe sin aprobación")
}

func TestReceive_ParcialYTotalActualizaCosto(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	ctx := context.Background()
	p := f.Product(t, "A")
	o := createOrder(t, uc, f, p.ID, "10", "30")
	_, err := uc.Submit(ctx, f.Admin, o.ID)
	require.NoError(t, err)
	lineID := o.Items[0].ID

	receipt, err := uc.Receive(ctx, f.Admin, o.ID, dto.ReceivePurchaseOrderRequest{
		Lines: []dto.ReceiveLineRequest{{PurchaseOrderItemID: lineID, Quantity: apptest.D("4")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "GR-000001", receipt.Number)
	require.Len(t, receipt.Lines, 1)

	got, err := uc.GetByID(ctx, f.Company.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderPartiallyReceived, got.Status)

	_, err = uc.Receive(ctx, f.Admin, o.ID, dto.ReceivePurchaseOrderRequest{
		Lines: []dto.ReceiveLineRequest{{PurchaseOrderItemID: lineID, Quantity: apptest.D("7")}},
	})
	assert.ErrorIs(t, err, domain.ErrOverReceipt)

	_, err = uc.Receive(ctx, f.Admin, o.ID, dto.ReceivePurchaseOrderRequest{
		Lines: []dto.ReceiveLineRequest{{PurchaseOrderItemID: lineID, Quantity: apptest.D("6")}},
	})
	require.NoError(t, err)

	got, err = uc.GetByID(ctx, f.Company.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderReceived, got.Status)
	assert.True(t, got.Items[0].ReceivedQuantity.Equal(apptest.D("10")))

	product, err := f.Store.Repos().Products.GetByID(ctx, f.Company.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, product.Cost.Equal(apptest.D("30")))

	receipts, err := uc.ListReceipts(ctx, f.Company.ID, o.ID)
	require.NoError(t, err)
	assert.Len(t, receipts, 2)

	_, err = uc.Cancel(ctx, f.Admin, o.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_CierraSolicitudPendiente(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	ctx := context.Background()
	p := f.Product(t, "A")
	o := createOrder(t, uc, f, p.ID, "100", "100")
	sub, err := uc.Submit(ctx, f.Admin, o.ID)
	require.NoError(t, err)

	out, err := uc.Cancel(ctx, f.Admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderCancelled, out.Status)

	approvals, err := f.Store.Repos().Approvals.List(ctx, repository.OrderFilter{CompanyID: f.Company.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, approvals, 1)
	assert.Equal(t, sub.ApprovalRequestID, approvals[0].ID)
	assert.Equal(t, entity.ApprovalRejected, approvals[0].Status)
}

func TestCancel_CierraSolicitudEntreMuchasPendientes(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	ctx := context.Background()
	p := f.Product(t, "A")
	o := createOrder(t, uc, f, p.ID, "100", "100")
	sub, err := uc.Submit(ctx, f.Admin, o.ID)
	require.NoError(t, err)

	// solicitudes más recientes de otras entidades que desplazan a la de la orden
	approvals := f.Store.Repos().Approvals
	created := time.Now().Add(time.Hour)
	for i := 0; i < 1001; i++ {
		require.NoError(t, approvals.Create(ctx, &entity.ApprovalRequest{
			ID: fmt.Sprintf("otra-%04d", i), CompanyID: f.Company.ID,
			EntityType: entity.ApprovalEntityPurchaseOrder, EntityID: fmt.Sprintf("po-%04d", i),
			Status: entity.ApprovalPending, RequestedBy: f.Admin.UserID, CreatedAt: created,
		}))
	}
	other := createOrder(t, uc, f, p.ID, "100", "100")
	otherSub, err := uc.Submit(ctx, f.Admin, other.ID)
	require.NoError(t, err)

	_, err = uc.Cancel(ctx, f.Admin, o.ID)
	require.NoError(t, err)

	mine, err := approvals.GetForUpdate(ctx, f.Company.ID, sub.ApprovalRequestID)
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalRejected, mine.Status)
	untouched, err := approvals.GetForUpdate(ctx, f.Company.ID, otherSub.ApprovalRequestID)
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalPending, untouched.Status)
	pending, err := approvals.ListPendingForEntity(ctx, f.Company.ID, entity.ApprovalEntityPurchaseOrder, "po-0000")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestList_FiltraPorEstado(t *testing.T) {
	f := apptest.New(t)
	uc := newUseCase(f)
	ctx := context.Background()
	p := f.Product(t, "A")
	createOrder(t, uc, f, p.ID, "1", "1")
	o := createOrder(t, uc, f, p.ID, "1", "1")
	_, err := uc.Submit(ctx, f.Admin, o.ID)
	require.NoError(t, err)

	list, err := uc.List(ctx, repository.OrderFilter{CompanyID: f.Company.ID, Status: entity.PurchaseOrderDraft, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}
