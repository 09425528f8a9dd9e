package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP del kardex (protegido).
type InventoryHandler struct {
	uc            *inventory.UseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment}
}

// Receive godoc
// @Summary      Entrada manual de stock
// @Description  Crea o incrementa el bucket y recalcula el costo promedio ponderado del producto.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "product_id, warehouse_id, quantity, unit_cost y rastreo"
// @Success      201   {object}  dto.StockItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.ProductID == "" || in.WarehouseID == "" {
		return validation(c, "product_id y warehouse_id son requeridos")
	}
	out, err := h.uc.ReceiveStock(c.Context(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Adjust godoc
// @Summary      Ajuste de inventario
// @Description  Responde 202 cuando el ajuste supera los umbrales y queda pendiente de aprobación.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "stock_item_id o llave del bucket, new_quantity, reason"
// @Success      201   {object}  dto.AdjustmentResponse
// @Success      202   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AdjustStock(c.Context(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(mutationStatus(out.Status)).JSON(out)
}

// Transfer godoc
// @Summary      Traslado entre bodegas o ubicaciones
// @Description  Responde 202 cuando el traslado queda pendiente de aprobación.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockRequest  true  "stock_item_id, to_warehouse_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Success      202   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.StockItemID == "" || in.ToWarehouseID == "" {
		return validation(c, "stock_item_id y to_warehouse_id son requeridos")
	}
	out, err := h.uc.TransferStock(c.Context(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(mutationStatus(out.Status)).JSON(out)
}

// ChangeStatus godoc
// @Summary      Cambiar estado de un bucket (AVAILABLE, QUARANTINE, DAMAGED)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del bucket"
// @Param        body  body  dto.ChangeStockStatusRequest  true  "status"
// @Success      200   {object}  dto.StockItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-items/{id}/status [patch]
func (h *InventoryHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStockStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ChangeStatus(c.Context(), actor(c), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetStockItem godoc
// @Summary      Obtener bucket
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del bucket"
// @Success      200  {object}  dto.StockItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-items/{id} [get]
func (h *InventoryHandler) GetStockItem(c *fiber.Ctx) error {
	out, err := h.uc.GetStockItem(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Availability godoc
// @Summary      Disponibilidad de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    path   string  true   "ID del producto"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/availability/{product_id} [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	out, err := h.uc.Availability(c.Context(), GetCompanyID(c), c.Params("product_id"), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        type          query  string  false  "Tipo de movimiento"
// @Param        from          query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to            query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	from, ok := timeParam(c, "from")
	if !ok {
		return validation(c, "from inválido")
	}
	to, ok := timeParam(c, "to")
	if !ok {
		return validation(c, "to inválido")
	}
	limit, offset := pageParams(c)
	out, err := h.uc.ListMovements(c.Context(), repository.MovementFilter{
		CompanyID:   GetCompanyID(c),
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Type:        c.Query("type"),
		From:        from,
		To:          to,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListAdjustments godoc
// @Summary      Listar ajustes
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "PENDING_APPROVAL, APPLIED, REJECTED"
// @Success      200  {array}  dto.AdjustmentResponse
// @Router       /api/inventory/adjustments [get]
func (h *InventoryHandler) ListAdjustments(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.ListAdjustments(c.Context(), repository.OrderFilter{
		CompanyID: GetCompanyID(c), Status: c.Query("status"), Limit: limit, Offset: offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListTransfers godoc
// @Summary      Listar traslados
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "PENDING_APPROVAL, COMPLETED, REJECTED"
// @Success      200  {array}  dto.TransferResponse
// @Router       /api/inventory/transfers [get]
func (h *InventoryHandler) ListTransfers(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.ListTransfers(c.Context(), repository.OrderFilter{
		CompanyID: GetCompanyID(c), Status: c.Query("status"), Limit: limit, Offset: offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Devuelve los SKUs por debajo del punto de reorden con la cantidad sugerida
//
//	de pedido, ordenados por margen histórico y volumen de ventas.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega (UUID). Vacío = stock global."
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.Context(), GetCompanyID(c), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// mutationStatus 202 si la operación quedó esperando aprobación.
func mutationStatus(status string) int {
	if status == entity.MutationPendingApproval {
		return fiber.StatusAccepted
	}
	return fiber.StatusCreated
}
