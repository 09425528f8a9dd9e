package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// ValidateTracking verifica que una entrada traiga lote, serial y vencimiento según el producto.
func ValidateTracking(p *entity.Product, batch, serial string, expiry *time.Time, qty decimal.Decimal) error {
	if p.TrackBatch && batch == "" {
		return fmt.Errorf("%w: lote requerido para %s", domain.ErrTrackingRequired, p.SKU)
	}
	if p.TrackSerial {
		if serial == "" {
			return fmt.Errorf("%w: serial requerido para %s", domain.ErrTrackingRequired, p.SKU)
		}
		if !qty.Equal(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: un producto serializado entra de a una unidad", domain.ErrInvalidInput)
		}
	} else if serial != "" {
		return fmt.Errorf("%w: el producto %s no maneja serial", domain.ErrInvalidInput, p.SKU)
	}
	if p.TrackExpiry && expiry == nil {
		return fmt.Errorf("%w: fecha de vencimiento requerida para %s", domain.ErrTrackingRequired, p.SKU)
	}
	return nil
}
