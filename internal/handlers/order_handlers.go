package handlers

import (
	"net/http"
	"strconv"

	"itlager_backend/internal/models"
	"itlager_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// CreateOrder handles the creation of a new provisioning order.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateOrder: Failed to bind JSON")
		return
	}

	order, err := h.orderService.CreateOrder(req)
	if err != nil {
		respondServiceError(c, err, "CreateOrder: Error from orderService.CreateOrder")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrders handles fetching orders with filters and pagination.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	filters := models.OrderFilters{
		Page:     page,
		PageSize: pageSize,
	}
	if v := c.Query("status"); v != "" {
		filters.Status = &v
	}
	if v := c.Query("cost_center"); v != "" {
		filters.CostCenter = &v
	}
	if v := c.Query("delivery_method"); v != "" {
		filters.DeliveryMethod = &v
	}

	orders, totalCount, err := h.orderService.GetOrders(filters)
	if err != nil {
		respondServiceError(c, err, "GetOrders: Error from orderService.GetOrders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	listResponse(c, orders, totalCount, filters.Page, filters.PageSize)
}

// GetOrderByID handles fetching a single order with its derived status and
// availability.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrderByID(id)
	if err != nil {
		respondServiceError(c, err, "GetOrderByID: Error from orderService.GetOrderByID")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrder handles header updates of an open order.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateOrder: Failed to bind JSON")
		return
	}

	order, err := h.orderService.UpdateOrder(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateOrder: Error from orderService.UpdateOrder")
		return
	}
	c.JSON(http.StatusOK, order)
}
