package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/application/assembly"
	"github.com/jhoicas/Bodega-api/internal/application/dto"
)

// AssemblyHandler kits, ensambles y desensambles.
type AssemblyHandler struct {
	uc *assembly.UseCase
}

// NewAssemblyHandler construye el handler.
func NewAssemblyHandler(uc *assembly.UseCase) *AssemblyHandler {
	return &AssemblyHandler{uc: uc}
}

// CreateKit godoc
// @Summary      Crear kit (lista de materiales)
// @Tags         kits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateKitRequest  true  "producto kit y componentes"
// @Success      201   {object}  dto.KitResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/kits [post]
func (h *AssemblyHandler) CreateKit(c *fiber.Ctx) error {
	var in dto.CreateKitRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ProductID == "" || len(in.Components) == 0 {
		return validation(c, "product_id y components son requeridos")
	}
	out, err := h.uc.CreateKit(c.Context(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListKits godoc
// @Summary      Listar kits
// @Tags         kits
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.KitResponse
// @Router       /api/kits [get]
func (h *AssemblyHandler) ListKits(c *fiber.Ctx) error {
	out, err := h.uc.ListKits(c.Context(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetKit godoc
// @Summary      Obtener kit
// @Tags         kits
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del kit"
// @Success      200  {object}  dto.KitResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/kits/{id} [get]
func (h *AssemblyHandler) GetKit(c *fiber.Ctx) error {
	out, err := h.uc.GetKit(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Assemble godoc
// @Summary      Ensamblar kits consumiendo componentes FEFO
// @Tags         kits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del kit"
// @Param        body  body  dto.AssembleRequest  true  "bodega, ubicación y cantidad"
// @Success      201   {object}  dto.AssemblyOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/kits/{id}/assemble [post]
func (h *AssemblyHandler) Assemble(c *fiber.Ctx) error {
	var in dto.AssembleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Assemble(c.Context(), actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Disassemble godoc
// @Summary      Desensamblar kits devolviendo componentes
// @Tags         kits
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del kit"
// @Param        body  body  dto.DisassembleRequest  true  "bucket del kit y cantidad"
// @Success      201   {object}  dto.AssemblyOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/kits/{id}/disassemble [post]
func (h *AssemblyHandler) Disassemble(c *fiber.Ctx) error {
	var in dto.DisassembleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Disassemble(c.Context(), actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListOrders godoc
// @Summary      Órdenes de ensamble de un kit
// @Tags         kits
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del kit"
// @Success      200  {array}  dto.AssemblyOrderResponse
// @Router       /api/kits/{id}/orders [get]
func (h *AssemblyHandler) ListOrders(c *fiber.Ctx) error {
	out, err := h.uc.ListOrders(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
