package handlers

import (
	"net/http"

	"itlager_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// FulfillmentHandler holds the fulfillment service.
type FulfillmentHandler struct {
	fulfillmentService services.FulfillmentService
}

// NewFulfillmentHandler creates a new FulfillmentHandler.
func NewFulfillmentHandler(fs services.FulfillmentService) *FulfillmentHandler {
	return &FulfillmentHandler{fulfillmentService: fs}
}

// PickItem handles picking units of an order item from stock.
func (h *FulfillmentHandler) PickItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.PickItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "PickItem: Failed to bind JSON")
		return
	}

	item, article, err := h.fulfillmentService.PickItem(id, req)
	if err != nil {
		respondServiceError(c, err, "PickItem: Error from fulfillmentService.PickItem")
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "article": article})
}

// UnpickItem handles reverting a pick.
func (h *FulfillmentHandler) UnpickItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UnpickItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UnpickItem: Failed to bind JSON")
		return
	}

	item, article, err := h.fulfillmentService.UnpickItem(id, req)
	if err != nil {
		respondServiceError(c, err, "UnpickItem: Error from fulfillmentService.UnpickItem")
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "article": article})
}

// ResolveItem handles binding a free-text line to a catalog article.
func (h *FulfillmentHandler) ResolveItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ResolveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "ResolveItem: Failed to bind JSON")
		return
	}

	item, err := h.fulfillmentService.ResolveItem(id, req)
	if err != nil {
		respondServiceError(c, err, "ResolveItem: Error from fulfillmentService.ResolveItem")
		return
	}
	c.JSON(http.StatusOK, item)
}

// MarkItemOrdered handles recording external procurement of an order item.
func (h *FulfillmentHandler) MarkItemOrdered(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.MarkItemOrderedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "MarkItemOrdered: Failed to bind JSON")
		return
	}

	item, err := h.fulfillmentService.MarkItemOrdered(id, req)
	if err != nil {
		respondServiceError(c, err, "MarkItemOrdered: Error from fulfillmentService.MarkItemOrdered")
		return
	}
	c.JSON(http.StatusOK, item)
}

// ReceiveOrderItem handles booking procured units of an item into stock.
func (h *FulfillmentHandler) ReceiveOrderItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ReceiveOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "ReceiveOrderItem: Failed to bind JSON")
		return
	}

	item, err := h.fulfillmentService.ReceiveOrderItem(id, req)
	if err != nil {
		respondServiceError(c, err, "ReceiveOrderItem: Error from fulfillmentService.ReceiveOrderItem")
		return
	}
	c.JSON(http.StatusOK, item)
}

// ReceiveFreeTextItem handles the receipt of an unresolved free-text line.
func (h *FulfillmentHandler) ReceiveFreeTextItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ReceiveFreeTextItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "ReceiveFreeTextItem: Failed to bind JSON")
		return
	}

	item, err := h.fulfillmentService.ReceiveFreeTextItem(id, req)
	if err != nil {
		respondServiceError(c, err, "ReceiveFreeTextItem: Error from fulfillmentService.ReceiveFreeTextItem")
		return
	}
	c.JSON(http.StatusOK, item)
}

// SetupMobilfunk handles completing the setup of a mobilfunk line.
func (h *FulfillmentHandler) SetupMobilfunk(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SetupMobilfunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "SetupMobilfunk: Failed to bind JSON")
		return
	}

	item, err := h.fulfillmentService.SetupMobilfunk(id, req)
	if err != nil {
		respondServiceError(c, err, "SetupMobilfunk: Error from fulfillmentService.SetupMobilfunk")
		return
	}
	c.JSON(http.StatusOK, item)
}

// ResetMobilfunkSetup handles reverting a completed setup.
func (h *FulfillmentHandler) ResetMobilfunkSetup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ResetMobilfunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "ResetMobilfunkSetup: Failed to bind JSON")
		return
	}

	item, err := h.fulfillmentService.ResetMobilfunkSetup(id, req)
	if err != nil {
		respondServiceError(c, err, "ResetMobilfunkSetup: Error from fulfillmentService.ResetMobilfunkSetup")
		return
	}
	c.JSON(http.StatusOK, item)
}

// MarkMobilfunkOrdered handles recording the provider order of a mobilfunk
// line.
func (h *FulfillmentHandler) MarkMobilfunkOrdered(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.MarkMobilfunkOrderedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "MarkMobilfunkOrdered: Failed to bind JSON")
		return
	}

	item, err := h.fulfillmentService.MarkMobilfunkOrdered(id, req)
	if err != nil {
		respondServiceError(c, err, "MarkMobilfunkOrdered: Error from fulfillmentService.MarkMobilfunkOrdered")
		return
	}
	c.JSON(http.StatusOK, item)
}

// ReceiveMobilfunk handles marking a mobilfunk line as received from the
// provider.
func (h *FulfillmentHandler) ReceiveMobilfunk(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ReceiveMobilfunkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "ReceiveMobilfunk: Failed to bind JSON")
		return
	}

	item, err := h.fulfillmentService.ReceiveMobilfunk(id, req)
	if err != nil {
		respondServiceError(c, err, "ReceiveMobilfunk: Error from fulfillmentService.ReceiveMobilfunk")
		return
	}
	c.JSON(http.StatusOK, item)
}

// FinishTechWork handles closing the technical phase of an order.
func (h *FulfillmentHandler) FinishTechWork(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.FinishTechWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "FinishTechWork: Failed to bind JSON")
		return
	}

	order, err := h.fulfillmentService.FinishTechWork(id, req)
	if err != nil {
		respondServiceError(c, err, "FinishTechWork: Error from fulfillmentService.FinishTechWork")
		return
	}
	c.JSON(http.StatusOK, order)
}

type cancelOrderRequest struct {
	Actor string `json:"actor" binding:"required"`
}

// CancelOrder handles marking an order as cancelled.
func (h *FulfillmentHandler) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req cancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CancelOrder: Failed to bind JSON")
		return
	}

	order, err := h.fulfillmentService.CancelOrder(id, req.Actor)
	if err != nil {
		respondServiceError(c, err, "CancelOrder: Error from fulfillmentService.CancelOrder")
		return
	}
	c.JSON(http.StatusOK, order)
}
