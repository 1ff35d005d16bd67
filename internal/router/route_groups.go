package router

import (
	"itlager_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupArticleRoutes sets up the catalog article routes.
func SetupArticleRoutes(apiGroup *gin.RouterGroup, articleHandler *handlers.ArticleHandler) {
	articleRoutes := apiGroup.Group("/articles")
	{
		articleRoutes.POST("", articleHandler.CreateArticle)
		articleRoutes.GET("", articleHandler.GetArticles)
		articleRoutes.GET("/:id", articleHandler.GetArticleByID)
		articleRoutes.PATCH("/:id", articleHandler.UpdateArticle)
		articleRoutes.DELETE("/:id", articleHandler.DeactivateArticle)
		articleRoutes.POST("/:id/receive", articleHandler.ReceiveGoods)
	}
}

// SetupStockMovementRoutes sets up the ledger routes.
func SetupStockMovementRoutes(apiGroup *gin.RouterGroup, movementHandler *handlers.StockMovementHandler) {
	movementRoutes := apiGroup.Group("/stock-movements")
	{
		movementRoutes.POST("", movementHandler.CreateMovement)
		movementRoutes.GET("", movementHandler.GetMovements)
	}
}

// SetupSerialRoutes sets up the serial number routes.
func SetupSerialRoutes(apiGroup *gin.RouterGroup, serialHandler *handlers.SerialHandler) {
	serialRoutes := apiGroup.Group("/serial-numbers")
	{
		serialRoutes.POST("", serialHandler.ReceiveSerials)
		serialRoutes.GET("", serialHandler.GetSerials)
		serialRoutes.GET("/:id", serialHandler.GetSerialByID)
		serialRoutes.PATCH("/:id", serialHandler.UpdateSerial)
		serialRoutes.POST("/:id/reserve", serialHandler.ReserveSerial)
		serialRoutes.POST("/:id/release", serialHandler.ReleaseSerial)
	}
}

// SetupOrderRoutes sets up the order routes.
func SetupOrderRoutes(apiGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler, fulfillmentHandler *handlers.FulfillmentHandler) {
	orderRoutes := apiGroup.Group("/orders")
	{
		orderRoutes.POST("", orderHandler.CreateOrder)
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.PATCH("/:id", orderHandler.UpdateOrder)
		orderRoutes.POST("/:id/finish-tech", fulfillmentHandler.FinishTechWork)
		orderRoutes.POST("/:id/cancel", fulfillmentHandler.CancelOrder)
	}
}

// SetupOrderItemRoutes sets up the order item fulfillment routes.
func SetupOrderItemRoutes(apiGroup *gin.RouterGroup, fulfillmentHandler *handlers.FulfillmentHandler) {
	itemRoutes := apiGroup.Group("/order-items")
	{
		itemRoutes.POST("/:id/pick", fulfillmentHandler.PickItem)
		itemRoutes.POST("/:id/unpick", fulfillmentHandler.UnpickItem)
		itemRoutes.POST("/:id/resolve", fulfillmentHandler.ResolveItem)
		itemRoutes.POST("/:id/mark-ordered", fulfillmentHandler.MarkItemOrdered)
		itemRoutes.POST("/:id/receive", fulfillmentHandler.ReceiveOrderItem)
		itemRoutes.POST("/:id/receive-free-text", fulfillmentHandler.ReceiveFreeTextItem)
	}
}

// SetupMobilfunkRoutes sets up the mobilfunk line routes.
func SetupMobilfunkRoutes(apiGroup *gin.RouterGroup, fulfillmentHandler *handlers.FulfillmentHandler) {
	mobilfunkRoutes := apiGroup.Group("/mobilfunk-items")
	{
		mobilfunkRoutes.POST("/:id/setup", fulfillmentHandler.SetupMobilfunk)
		mobilfunkRoutes.POST("/:id/reset-setup", fulfillmentHandler.ResetMobilfunkSetup)
		mobilfunkRoutes.POST("/:id/mark-ordered", fulfillmentHandler.MarkMobilfunkOrdered)
		mobilfunkRoutes.POST("/:id/receive", fulfillmentHandler.ReceiveMobilfunk)
	}
}

// SetupInventoryRoutes sets up the inventory session routes.
func SetupInventoryRoutes(apiGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	inventoryRoutes := apiGroup.Group("/inventories")
	{
		inventoryRoutes.POST("", inventoryHandler.StartInventory)
		inventoryRoutes.GET("", inventoryHandler.GetInventories)
		inventoryRoutes.GET("/:id", inventoryHandler.GetInventoryByID)
		inventoryRoutes.POST("/:id/apply-corrections", inventoryHandler.ApplyCorrections)
		inventoryRoutes.POST("/:id/complete", inventoryHandler.CompleteWithoutCorrections)
		inventoryRoutes.POST("/:id/cancel", inventoryHandler.CancelInventory)
	}
	inventoryItemRoutes := apiGroup.Group("/inventory-items")
	{
		inventoryItemRoutes.POST("/:id/check", inventoryHandler.CheckItem)
	}
}

// SetupReportRoutes sets up the reporting routes.
func SetupReportRoutes(apiGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := apiGroup.Group("/reports")
	{
		reportRoutes.GET("/low-stock", reportHandler.GetLowStockArticles)
		reportRoutes.GET("/movement-summary", reportHandler.GetMovementSummary)
		reportRoutes.GET("/open-orders", reportHandler.GetOpenOrders)
	}
}
