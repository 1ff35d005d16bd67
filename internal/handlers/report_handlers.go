package handlers

import (
	"net/http"

	"itlager_backend/internal/models"
	"itlager_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the report service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetLowStockArticles handles the low stock report.
func (h *ReportHandler) GetLowStockArticles(c *gin.Context) {
	articles, err := h.reportService.LowStockArticles()
	if err != nil {
		respondServiceError(c, err, "GetLowStockArticles: Error from reportService.LowStockArticles")
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}
	c.JSON(http.StatusOK, gin.H{"data": articles})
}

// GetMovementSummary handles the per-article movement aggregation report.
func (h *ReportHandler) GetMovementSummary(c *gin.Context) {
	var filters models.ReportFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondBindError(c, err, "GetMovementSummary: Failed to bind query")
		return
	}

	rows, err := h.reportService.MovementSummary(filters)
	if err != nil {
		respondServiceError(c, err, "GetMovementSummary: Error from reportService.MovementSummary")
		return
	}
	if rows == nil {
		rows = []models.MovementSummaryRow{}
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// GetOpenOrders handles the open order report.
func (h *ReportHandler) GetOpenOrders(c *gin.Context) {
	orders, err := h.reportService.OpenOrders()
	if err != nil {
		respondServiceError(c, err, "GetOpenOrders: Error from reportService.OpenOrders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}
