package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/application/reporting"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// ReportHandler reportes de inventario y bitácora.
type ReportHandler struct {
	uc *reporting.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reporting.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// StockOnHand godoc
// @Summary      Existencias por bucket
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        product_id    query  string  false  "Producto"
// @Param        location_id   query  string  false  "Ubicación"
// @Param        status        query  string  false  "AVAILABLE, QUARANTINE, DAMAGED"
// @Param        limit         query  int     false  "Límite"
// @Param        offset        query  int     false  "Offset"
// @Success      200  {object}  dto.StockReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/stock [get]
func (h *ReportHandler) StockOnHand(c *fiber.Ctx) error {
	out, err := h.uc.StockOnHand(c.Context(), repository.StockReportFilter{
		CompanyID:   GetCompanyID(c),
		WarehouseID: c.Query("warehouse_id"),
		ProductID:   c.Query("product_id"),
		LocationID:  c.Query("location_id"),
		Status:      c.Query("status"),
		Limit:       c.QueryInt("limit", 0),
		Offset:      max(c.QueryInt("offset", 0), 0),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Valuation godoc
// @Summary      Valorización del inventario por bodega
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationResponse
// @Router       /api/reports/valuation [get]
func (h *ReportHandler) Valuation(c *fiber.Ctx) error {
	out, err := h.uc.Valuation(c.Context(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Expiring godoc
// @Summary      Stock que vence dentro de N días
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Días (1-365)"  default(30)
// @Success      200  {object}  dto.ExpiringResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/expiring [get]
func (h *ReportHandler) Expiring(c *fiber.Ctx) error {
	out, err := h.uc.Expiring(c.Context(), GetCompanyID(c), c.QueryInt("days", 30))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AuditLog godoc
// @Summary      Bitácora de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        user_id      query  string  false  "Usuario"
// @Param        entity_type  query  string  false  "Tipo de entidad"
// @Param        entity_id    query  string  false  "ID de la entidad"
// @Param        from         query  string  false  "Desde"
// @Param        to           query  string  false  "Hasta"
// @Param        limit        query  int     false  "Límite"
// @Param        offset       query  int     false  "Offset"
// @Success      200  {object}  dto.AuditLogListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/audit-logs [get]
func (h *ReportHandler) AuditLog(c *fiber.Ctx) error {
	from, ok := timeParam(c, "from")
	if !ok {
		return validation(c, "from inválido")
	}
	to, ok := timeParam(c, "to")
	if !ok {
		return validation(c, "to inválido")
	}
	out, err := h.uc.AuditLog(c.Context(), repository.AuditFilter{
		CompanyID:  GetCompanyID(c),
		UserID:     c.Query("user_id"),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		From:       from,
		To:         to,
		Limit:      c.QueryInt("limit", 0),
		Offset:     max(c.QueryInt("offset", 0), 0),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
