package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/application/usecase"
	"github.com/jhoicas/tienda-api/pkg/jwt"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *usecase.ProductUseCase
	StockUC   *inventory.StockUseCase
	SaleUC    *sales.SaleUseCase
	ReceiptUC *sales.ReceiptUseCase
	Tokens    *jwt.Verifier
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.Tokens))

	// Ventas: admin y cajero
	saleHandler := NewSaleHandler(deps.SaleUC, deps.ReceiptUC, deps.Log)
	salesGroup := api.Group("/sales", RequireRole(jwt.RoleAdmin, jwt.RoleCashier))
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Put("/:id", saleHandler.Update)
	salesGroup.Delete("/:id", saleHandler.Delete)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)

	// Stock: admin y bodeguero
	inventoryHandler := NewInventoryHandler(deps.StockUC, deps.Log)
	stock := api.Group("/stock", RequireRole(jwt.RoleAdmin, jwt.RoleStocker))
	stock.Post("/adjustments", inventoryHandler.AdjustStock)
	stock.Post("/movements", inventoryHandler.PostMovement)
	stock.Get("/products/:id/movements", inventoryHandler.ListMovements)
	stock.Get("/products/:id/reconcile", inventoryHandler.Reconcile)
	stock.Get("/low", inventoryHandler.LowStock)

	// Productos: lectura para todos los roles, escritura admin y bodeguero
	productHandler := NewProductHandler(deps.ProductUC, deps.Log)
	products := api.Group("/products")
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleStocker)
	products.Get("/", productHandler.List)
	products.Get("/code/:code", productHandler.GetByCode)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", writers, productHandler.Create)
	products.Put("/:id", writers, productHandler.Update)
	products.Delete("/:id", writers, productHandler.Deactivate)
}
