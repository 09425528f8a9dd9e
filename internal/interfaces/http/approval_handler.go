package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/application/approval"
	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// ApprovalHandler bandeja de aprobaciones.
type ApprovalHandler struct {
	uc *approval.UseCase
}

// NewApprovalHandler construye el handler.
func NewApprovalHandler(uc *approval.UseCase) *ApprovalHandler {
	return &ApprovalHandler{uc: uc}
}

// List godoc
// @Summary      Listar solicitudes de aprobación
// @Tags         approvals
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "PENDING, APPROVED, REJECTED"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ApprovalListResponse
// @Router       /api/approvals [get]
func (h *ApprovalHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.Context(), repository.OrderFilter{
		CompanyID: GetCompanyID(c), Status: c.Query("status"), Limit: limit, Offset: offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar y aplicar la operación pendiente
// @Description  Quien aprueba debe ser distinto de quien solicitó.
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID de la solicitud"
// @Param        body  body  dto.ReviewApprovalRequest  false  "comentario"
// @Success      200   {object}  dto.ApprovalResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/approve [post]
func (h *ApprovalHandler) Approve(c *fiber.Ctx) error {
	in, err := reviewBody(c)
	if err != nil {
		return badBody(c)
	}
	out, err := h.uc.Approve(c.Context(), actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reject godoc
// @Summary      Rechazar la operación pendiente
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la solicitud"
// @Param        body  body  dto.ReviewApprovalRequest  true  "comentario"
// @Success      200   {object}  dto.ApprovalResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/reject [post]
func (h *ApprovalHandler) Reject(c *fiber.Ctx) error {
	in, err := reviewBody(c)
	if err != nil {
		return badBody(c)
	}
	out, err := h.uc.Reject(c.Context(), actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// reviewBody el comentario es opcional; un body vacío es válido.
func reviewBody(c *fiber.Ctx) (dto.ReviewApprovalRequest, error) {
	var in dto.ReviewApprovalRequest
	if len(c.Body()) == 0 {
		return in, nil
	}
	err := c.BodyParser(&in)
	return in, err
}
