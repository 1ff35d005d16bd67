package router

import (
	"database/sql"

	"itlager_backend/internal/handlers"
	"itlager_backend/internal/repositories"
	"itlager_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	articleRepo := repositories.NewArticleRepository(db)
	movementRepo := repositories.NewStockMovementRepository(db)
	serialRepo := repositories.NewSerialNumberRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	inventoryRepo := repositories.NewInventoryRepository(db)

	// Initialize Services
	stockService := services.NewStockService(articleRepo, movementRepo, db)
	serialService := services.NewSerialService(serialRepo, articleRepo, stockService, db)
	articleService := services.NewArticleService(articleRepo, stockService, serialService, db)
	orderService := services.NewOrderService(orderRepo, db)
	fulfillmentService := services.NewFulfillmentService(orderRepo, articleRepo, serialRepo, serialService, stockService, db)
	inventoryService := services.NewInventoryService(inventoryRepo, articleRepo, stockService, db)
	reportService := services.NewReportService(articleRepo, movementRepo, orderRepo)

	// Initialize Handlers
	articleHandler := handlers.NewArticleHandler(articleService)
	movementHandler := handlers.NewStockMovementHandler(stockService)
	serialHandler := handlers.NewSerialHandler(serialService)
	orderHandler := handlers.NewOrderHandler(orderService)
	fulfillmentHandler := handlers.NewFulfillmentHandler(fulfillmentService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	reportHandler := handlers.NewReportHandler(reportService)

	apiV1 := engine.Group("/api/v1")
	{
		SetupArticleRoutes(apiV1, articleHandler)
		SetupStockMovementRoutes(apiV1, movementHandler)
		SetupSerialRoutes(apiV1, serialHandler)
		SetupOrderRoutes(apiV1, orderHandler, fulfillmentHandler)
		SetupOrderItemRoutes(apiV1, fulfillmentHandler)
		SetupMobilfunkRoutes(apiV1, fulfillmentHandler)
		SetupInventoryRoutes(apiV1, inventoryHandler)
		SetupReportRoutes(apiV1, reportHandler)
	}
}
