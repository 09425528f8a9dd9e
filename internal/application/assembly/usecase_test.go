package assembly_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/apptest"
	"github.com/jhoicas/Bodega-api/internal/application/assembly"
	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

func isKit(p *entity.Product) { p.IsKit = true }

// kitFixture kit de 2 tornillos + 1 tuerca.
func kitFixture(t *testing.T) (*apptest.Fixture, *assembly.UseCase, *dto.KitResponse, *entity.Product, *entity.Product) {
	t.Helper()
	f := apptest.New(t)
	uc := assembly.NewUseCase(f.Store, f.Ledger, f.Events, logger.Nop())
	screw := f.Product(t, "TOR")
	nut := f.Product(t, "TUE")
	pack := f.Product(t, "KIT-01", isKit)

	kit, err := uc.CreateKit(context.Background(), f.Admin, dto.CreateKitRequest{
		ProductID: pack.ID,
		Components: []dto.KitComponentRequest{
			{ProductID: screw.ID, Quantity: apptest.D("2")},
			{ProductID: nut.ID, Quantity: apptest.D("1")},
		},
	})
	require.NoError(t, err)
	return f, uc, kit, screw, nut
}

func TestCreateKit_Validaciones(t *testing.T) {
	f := apptest.New(t)
	uc := assembly.NewUseCase(f.Store, f.Ledger, f.Events, logger.Nop())
	ctx := context.Background()
	plain := f.Product(t, "P")
	pack := f.Product(t, "K", isKit)
	serial := f.Product(t, "S", func(p *entity.Product) { p.TrackSerial = true })

	_, err := uc.CreateKit(ctx, f.Admin, dto.CreateKitRequest{
		ProductID: plain.ID, Components: []dto.KitComponentRequest{{ProductID: pack.ID, Quantity: apptest.D("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "producto no marcado como kit")

	_, err = uc.CreateKit(ctx, f.Admin, dto.CreateKitRequest{
		ProductID: pack.ID, Components: []dto.KitComponentRequest{{ProductID: pack.ID, Quantity: apptest.D("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "componente de sí mismo")

	_, err = uc.CreateKit(ctx, f.Admin, dto.CreateKitRequest{
		ProductID: pack.ID, Components: []dto.KitComponentRequest{{ProductID: serial.ID, Quantity: apptest.D("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "componente serializado")

	_, err = uc.CreateKit(ctx, f.Admin, dto.CreateKitRequest{
		ProductID: pack.ID, Components: []dto.KitComponentRequest{
			{ProductID: plain.ID, Quantity: apptest.D("1")},
			{ProductID: plain.ID, Quantity: apptest.D("2")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "componente repetido")

	_, err = uc.CreateKit(ctx, f.Admin, dto.CreateKitRequest{
		ProductID: pack.ID, Components: []dto.KitComponentRequest{{ProductID: plain.ID, Quantity: apptest.D("1")}},
	})
	require.NoError(t, err)
	_, err = uc.CreateKit(ctx, f.Admin, dto.CreateKitRequest{
		ProductID: pack.ID, Components: []dto.KitComponentRequest{{ProductID: plain.ID, Quantity: apptest.D("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestAssemble_ConsumeComponentesYCosteaKit(t *testing.T) {
	f, uc, kit, screw, nut := kitFixture(t)
	ctx := context.Background()
	screwItem := f.Stock(t, screw.ID, f.Warehouse.ID, "10", "5")
	nutItem := f.Stock(t, nut.ID, f.Warehouse.ID, "10", "3")

	out, err := uc.Assemble(ctx, f.Admin, kit.ID, dto.AssembleRequest{WarehouseID: f.Warehouse.ID, Quantity: apptest.D("4")})
	require.NoError(t, err)
	assert.Equal(t, entity.AssemblyAssemble, out.Type)
	// 2*5 + 1*3
	assert.True(t, out.UnitCost.Equal(apptest.D("13")), out.UnitCost.String())

	assert.True(t, f.StockItem(t, screwItem.ID).Quantity.Equal(apptest.D("2")))
	assert.True(t, f.StockItem(t, nutItem.ID).Quantity.Equal(apptest.D("6")))

	inv := inventory.NewUseCase(f.Store, f.Ledger, shared.ApprovalPolicy{}, f.Events, logger.Nop())
	avail, err := inv.Availability(ctx, f.Company.ID, kit.ProductID, "")
	require.NoError(t, err)
	assert.True(t, avail.OnHand.Equal(apptest.D("4")))

	orders, err := uc.ListOrders(ctx, f.Company.ID, kit.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestAssemble_ComponentesInsuficientesNoTocaNada(t *testing.T) {
	f, uc, kit, screw, nut := kitFixture(t)
	screwItem := f.Stock(t, screw.ID, f.Warehouse.ID, "10", "5")
	f.Stock(t, nut.ID, f.Warehouse.ID, "1", "3")

	_, err := uc.Assemble(context.Background(), f.Admin, kit.ID, dto.AssembleRequest{WarehouseID: f.Warehouse.ID, Quantity: apptest.D("2")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.StockItem(t, screwItem.ID).Quantity.Equal(apptest.D("10")))
}

func TestDisassemble_DevuelveComponentes(t *testing.T) {
	f, uc, kit, screw, nut := kitFixture(t)
	ctx := context.Background()
	f.Stock(t, screw.ID, f.Warehouse.ID, "10", "5")
	f.Stock(t, nut.ID, f.Warehouse.ID, "10", "3")
	_, err := uc.Assemble(ctx, f.Admin, kit.ID, dto.AssembleRequest{WarehouseID: f.Warehouse.ID, Quantity: apptest.D("3")})
	require.NoError(t, err)

	inv := inventory.NewUseCase(f.Store, f.Ledger, shared.ApprovalPolicy{}, f.Events, logger.Nop())
	avail, err := inv.Availability(ctx, f.Company.ID, kit.ProductID, "")
	require.NoError(t, err)
	require.Len(t, avail.Items, 1)

	out, err := uc.Disassemble(ctx, f.Admin, kit.ID, dto.DisassembleRequest{StockItemID: avail.Items[0].ID, Quantity: apptest.D("1")})
	require.NoError(t, err)
	assert.Equal(t, entity.AssemblyDisassemble, out.Type)

	screws, err := inv.Availability(ctx, f.Company.ID, screw.ID, "")
	require.NoError(t, err)
	assert.True(t, screws.OnHand.Equal(apptest.D("6")), screws.OnHand.String())
	nuts, err := inv.Availability(ctx, f.Company.ID, nut.ID, "")
	require.NoError(t, err)
	assert.True(t, nuts.OnHand.Equal(apptest.D("8")), nuts.OnHand.String())

	_, err = uc.Disassemble(ctx, f.Admin, kit.ID, dto.DisassembleRequest{StockItemID: avail.Items[0].ID, Quantity: apptest.D("5")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}
