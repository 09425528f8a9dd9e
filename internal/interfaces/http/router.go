package http

import (
	"errors"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Bodega-api/internal/application/approval"
	"github.com/jhoicas/Bodega-api/internal/application/assembly"
	"github.com/jhoicas/Bodega-api/internal/application/auth"
	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/purchasing"
	"github.com/jhoicas/Bodega-api/internal/application/reporting"
	"github.com/jhoicas/Bodega-api/internal/application/sales"
	"github.com/jhoicas/Bodega-api/internal/application/usecase"
	"github.com/jhoicas/Bodega-api/internal/domain/rbac"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// swaggerFile generado con `swag init -g cmd/api/main.go`.
const swaggerFile = "./docs/swagger.json"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	CompanyUC     *usecase.CompanyUseCase
	UserUC        *usecase.UserUseCase
	WarehouseUC   *usecase.WarehouseUseCase
	ProductUC     *usecase.ProductUseCase
	InventoryUC   *inventory.UseCase
	Replenishment *inventory.ReplenishmentUseCase
	SalesUC       *sales.UseCase
	PurchasingUC  *purchasing.UseCase
	AssemblyUC    *assembly.UseCase
	ApprovalUC    *approval.UseCase
	ReportingUC   *reporting.UseCase
	DashboardUC   *reporting.DashboardUseCase
	JWTSecret     string
}

// AppConfig parámetros del servidor Fiber.
type AppConfig struct {
	Name string
	Log  *logger.Logger
}

// NewApp crea la app Fiber con recover, log de peticiones, health y Swagger UI si existe docs/swagger.json.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: err.Error()})
		},
	})
	app.Use(recover.New())
	app.Use(RequestLogger(cfg.Log))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Bodega API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})
	return app
}

// Router registra las rutas de la API. Cada ruta protegida declara el permiso rbac que exige.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	perm := RequirePermission

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies: alta y consulta públicas para el arranque del tenant
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies := api.Group("/companies")
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Put("/company", perm(rbac.UsersManage), companyHandler.UpdateMine)

	users := protected.Group("/users", perm(rbac.UsersManage))
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Patch("/:id", userHandler.Update)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", perm(rbac.CatalogWrite), warehouseHandler.Create)
	warehouses.Get("/", perm(rbac.CatalogRead), warehouseHandler.List)
	warehouses.Get("/:id", perm(rbac.CatalogRead), warehouseHandler.GetByID)
	warehouses.Put("/:id", perm(rbac.CatalogWrite), warehouseHandler.Update)
	warehouses.Post("/:id/locations", perm(rbac.CatalogWrite), warehouseHandler.CreateLocation)
	warehouses.Get("/:id/locations", perm(rbac.CatalogRead), warehouseHandler.ListLocations)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", perm(rbac.CatalogWrite), productHandler.Create)
	products.Get("/", perm(rbac.CatalogRead), productHandler.List)
	products.Get("/:id", perm(rbac.CatalogRead), productHandler.GetByID)
	products.Put("/:id", perm(rbac.CatalogWrite), productHandler.Update)

	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.Replenishment)
	inv.Post("/receipts", perm(rbac.InventoryReceive), inventoryHandler.Receive)
	inv.Post("/adjustments", perm(rbac.InventoryAdjust), inventoryHandler.Adjust)
	inv.Get("/adjustments", perm(rbac.InventoryRead), inventoryHandler.ListAdjustments)
	inv.Post("/transfers", perm(rbac.InventoryTransfer), inventoryHandler.Transfer)
	inv.Get("/transfers", perm(rbac.InventoryRead), inventoryHandler.ListTransfers)
	inv.Get("/stock-items/:id", perm(rbac.InventoryRead), inventoryHandler.GetStockItem)
	inv.Patch("/stock-items/:id/status", perm(rbac.InventoryAdjust), inventoryHandler.ChangeStatus)
	inv.Get("/availability/:product_id", perm(rbac.InventoryRead), inventoryHandler.Availability)
	inv.Get("/movements", perm(rbac.InventoryRead), inventoryHandler.ListMovements)
	inv.Get("/replenishment-list", perm(rbac.ReportsRead), inventoryHandler.GetReplenishmentList)

	so := protected.Group("/sales-orders")
	salesHandler := NewSalesHandler(deps.SalesUC)
	so.Post("/", perm(rbac.SalesWrite), salesHandler.Create)
	so.Get("/", perm(rbac.SalesRead), salesHandler.List)
	so.Get("/:id", perm(rbac.SalesRead), salesHandler.GetByID)
	so.Post("/:id/confirm", perm(rbac.SalesWrite), salesHandler.Confirm)
	so.Post("/:id/ship", perm(rbac.SalesShip), salesHandler.Ship)
	so.Post("/:id/cancel", perm(rbac.SalesWrite), salesHandler.Cancel)
	so.Get("/:id/shipments", perm(rbac.SalesRead), salesHandler.ListShipments)
	protected.Get("/shipments/:id/packing-slip", perm(rbac.SalesRead), salesHandler.PackingSlip)

	po := protected.Group("/purchase-orders")
	purchasingHandler := NewPurchasingHandler(deps.PurchasingUC)
	po.Post("/", perm(rbac.PurchasingWrite), purchasingHandler.Create)
	po.Get("/", perm(rbac.PurchasingRead), purchasingHandler.List)
	po.Get("/:id", perm(rbac.PurchasingRead), purchasingHandler.GetByID)
	po.Post("/:id/submit", perm(rbac.PurchasingWrite), purchasingHandler.Submit)
	po.Post("/:id/receive", perm(rbac.PurchasingReceive), purchasingHandler.Receive)
	po.Post("/:id/cancel", perm(rbac.PurchasingWrite), purchasingHandler.Cancel)
	po.Get("/:id/receipts", perm(rbac.PurchasingRead), purchasingHandler.ListReceipts)

	kits := protected.Group("/kits")
	assemblyHandler := NewAssemblyHandler(deps.AssemblyUC)
	kits.Post("/", perm(rbac.CatalogWrite), assemblyHandler.CreateKit)
	kits.Get("/", perm(rbac.CatalogRead), assemblyHandler.ListKits)
	kits.Get("/:id", perm(rbac.CatalogRead), assemblyHandler.GetKit)
	kits.Post("/:id/assemble", perm(rbac.AssemblyWrite), assemblyHandler.Assemble)
	kits.Post("/:id/disassemble", perm(rbac.AssemblyWrite), assemblyHandler.Disassemble)
	kits.Get("/:id/orders", perm(rbac.InventoryRead), assemblyHandler.ListOrders)

	approvals := protected.Group("/approvals", perm(rbac.ApprovalsReview))
	approvalHandler := NewApprovalHandler(deps.ApprovalUC)
	approvals.Get("/", approvalHandler.List)
	approvals.Post("/:id/approve", approvalHandler.Approve)
	approvals.Post("/:id/reject", approvalHandler.Reject)

	reports := protected.Group("/reports", perm(rbac.ReportsRead))
	reportHandler := NewReportHandler(deps.ReportingUC)
	reports.Get("/stock", reportHandler.StockOnHand)
	reports.Get("/valuation", reportHandler.Valuation)
	reports.Get("/expiring", reportHandler.Expiring)
	protected.Get("/audit-logs", perm(rbac.AuditRead), reportHandler.AuditLog)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", perm(rbac.ReportsRead), dashboardHandler.GetSummary)
}
