package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/application/reporting"
)

// DashboardHandler maneja los endpoints del Dashboard.
type DashboardHandler struct {
	uc *reporting.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *reporting.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen operativo de la empresa
// @Description  Aprobaciones pendientes, órdenes abiertas, productos bajo punto de reorden,
//
//	lotes por vencer y valor del inventario. Se sirve desde caché salvo fresh=true.
//
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Param        fresh  query  bool  false  "Ignorar la caché"
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.Context(), GetCompanyID(c), c.QueryBool("fresh", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
