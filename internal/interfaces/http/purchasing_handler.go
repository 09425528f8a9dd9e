package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/purchasing"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// PurchasingHandler órdenes de compra y recepciones.
type PurchasingHandler struct {
	uc *purchasing.UseCase
}

// NewPurchasingHandler construye el handler.
func NewPurchasingHandler(uc *purchasing.UseCase) *PurchasingHandler {
	return &PurchasingHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra (DRAFT)
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "proveedor, bodega e ítems"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchasingHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.WarehouseID == "" || len(in.Items) == 0 {
		return validation(c, "warehouse_id e items son requeridos")
	}
	out, err := h.uc.Create(c.Context(), actor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Submit godoc
// @Summary      Enviar orden: queda APPROVED o PENDING_APPROVAL según el umbral
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/submit [post]
func (h *PurchasingHandler) Submit(c *fiber.Ctx) error {
	out, err := h.uc.Submit(c.Context(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receive godoc
// @Summary      Recibir mercancía de una orden aprobada
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                           true  "ID de la orden"
// @Param        body  body  dto.ReceivePurchaseOrderRequest  true  "líneas recibidas"
// @Success      201   {object}  dto.GoodsReceiptResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receive [post]
func (h *PurchasingHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceivePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if len(in.Lines) == 0 {
		return validation(c, "lines es requerido")
	}
	out, err := h.uc.Receive(c.Context(), actor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Cancel godoc
// @Summary      Cancelar orden de compra sin recepciones
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *PurchasingHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.Context(), actor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden de compra
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchasingHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Estado"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.PurchaseOrderListResponse
// @Router       /api/purchase-orders [get]
func (h *PurchasingHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.Context(), repository.OrderFilter{
		CompanyID: GetCompanyID(c), Status: c.Query("status"), Limit: limit, Offset: offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListReceipts godoc
// @Summary      Recepciones de una orden
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {array}  dto.GoodsReceiptResponse
// @Router       /api/purchase-orders/{id}/receipts [get]
func (h *PurchasingHandler) ListReceipts(c *fiber.Ctx) error {
	out, err := h.uc.ListReceipts(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
