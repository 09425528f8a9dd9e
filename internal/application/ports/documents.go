package ports

import "github.com/jhoicas/Bodega-api/internal/application/dto"

// PackingSlipGenerator genera el PDF de lista de empaque de un despacho.
type PackingSlipGenerator interface {
	Generate(slip *dto.PackingSlipDTO) ([]byte, error)
}
