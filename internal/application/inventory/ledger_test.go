package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/apptest"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// contendedStock simula una fila que otra transacción modifica entre la lectura y el update.
type contendedStock struct {
	repository.StockItemRepository
	item     entity.StockItem
	attempts int
	winAt    int // intento en que el update gana; 0 nunca
}

func (s *contendedStock) GetByID(_ context.Context, _, _ string) (*entity.StockItem, error) {
	item := s.item
	return &item, nil
}

func (s *contendedStock) TryReserve(_ context.Context, _, _ string, _, _ decimal.Decimal) (bool, error) {
	s.attempts++
	return s.winAt > 0 && s.attempts >= s.winAt, nil
}

func contended(winAt int) *contendedStock {
	return &contendedStock{
		item: entity.StockItem{
			ID:               "b1",
			CompanyID:        "c1",
			Quantity:         apptest.D("10"),
			ReservedQuantity: decimal.Zero,
			Status:           entity.StockStatusAvailable,
			CreatedAt:        time.Now(),
		},
		winAt: winAt,
	}
}

func TestReserve_AgotaReintentos(t *testing.T) {
	stock := contended(0)
	err := inventory.NewLedger().Reserve(context.Background(), ports.TxRepos{StockItems: stock}, "c1", "b1", apptest.D("1"))

	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	assert.Equal(t, 3, stock.attempts)
}

func TestReserve_GanaEnElReintento(t *testing.T) {
	stock := contended(2)
	err := inventory.NewLedger().Reserve(context.Background(), ports.TxRepos{StockItems: stock}, "c1", "b1", apptest.D("1"))

	require.NoError(t, err)
	assert.Equal(t, 2, stock.attempts)
}

func TestReserve_SinDisponibleNoReintenta(t *testing.T) {
	stock := contended(0)
	stock.item.ReservedQuantity = apptest.D("10")
	err := inventory.NewLedger().Reserve(context.Background(), ports.TxRepos{StockItems: stock}, "c1", "b1", apptest.D("1"))

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Zero(t, stock.attempts)
}
