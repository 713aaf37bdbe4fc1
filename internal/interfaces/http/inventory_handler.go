package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// InventoryHandler maneja movimientos, ajustes y consultas del libro de stock (protegido).
type InventoryHandler struct {
	uc       *inventory.StockUseCase
	validate *bodyValidator
	log      *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, validate: newBodyValidator(), log: log}
}

// AdjustStock godoc
// @Summary      Fijar el stock de un producto
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "Producto y cantidad nueva"
// @Success      200   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	tenantID, userID := GetTenantID(c), GetUserID(c)
	if tenantID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustStockRequest
	if ok, err := h.validate.parse(c, &in); !ok {
		return err
	}
	out, err := h.uc.AdjustStock(c.UserContext(), tenantID, userID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// PostMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostMovementRequest  true  "Datos del movimiento"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *InventoryHandler) PostMovement(c *fiber.Ctx) error {
	tenantID, userID := GetTenantID(c), GetUserID(c)
	if tenantID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.PostMovementRequest
	if ok, err := h.validate.parse(c, &in); !ok {
		return err
	}
	out, err := h.uc.PostStockMovement(c.UserContext(), tenantID, userID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Libro de movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.StockMovementListResponse
// @Router       /api/stock/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.ListMovements(c.UserContext(), tenantID, c.Params("id"), pageFromQuery(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar stock con el libro
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/stock/products/{id}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Reconcile(c.UserContext(), tenantID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos en o bajo su stock mínimo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/stock/low [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.LowStock(c.UserContext(), tenantID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
