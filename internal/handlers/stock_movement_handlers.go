package handlers

import (
	"net/http"
	"strconv"

	"itlager_backend/internal/models"
	"itlager_backend/internal/services"
	"itlager_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StockMovementHandler holds the stock service.
type StockMovementHandler struct {
	stockService services.StockService
}

// NewStockMovementHandler creates a new StockMovementHandler.
func NewStockMovementHandler(ss services.StockService) *StockMovementHandler {
	return &StockMovementHandler{stockService: ss}
}

// CreateMovement handles a manual ledger movement (IN, OUT or ADJUSTMENT).
func (h *StockMovementHandler) CreateMovement(c *gin.Context) {
	var req services.CreateMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateMovement: Failed to bind JSON")
		return
	}

	movement, article, err := h.stockService.CreateMovement(req)
	if err != nil {
		respondServiceError(c, err, "CreateMovement: Error from stockService.CreateMovement")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"movement": movement, "article": article})
}

// GetMovements handles fetching the movement history with filters.
func (h *StockMovementHandler) GetMovements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	filters := models.MovementFilters{
		Page:     page,
		PageSize: pageSize,
	}
	if v := c.Query("kind"); v != "" {
		filters.Kind = &v
	}
	if v := c.Query("actor"); v != "" {
		filters.Actor = &v
	}
	if v := c.Query("article_id"); v != "" {
		articleID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || articleID <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid article_id filter.", v))
			return
		}
		filters.ArticleID = &articleID
	}

	movements, totalCount, err := h.stockService.GetMovements(filters)
	if err != nil {
		respondServiceError(c, err, "GetMovements: Error from stockService.GetMovements")
		return
	}
	if movements == nil {
		movements = []models.StockMovement{}
	}
	listResponse(c, movements, totalCount, filters.Page, filters.PageSize)
}
