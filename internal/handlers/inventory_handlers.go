package handlers

import (
	"net/http"
	"strconv"

	"itlager_backend/internal/models"
	"itlager_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// InventoryHandler holds the inventory service.
type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(is services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: is}
}

// StartInventory handles opening a new counting session.
func (h *InventoryHandler) StartInventory(c *gin.Context) {
	var req services.StartInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "StartInventory: Failed to bind JSON")
		return
	}

	inventory, err := h.inventoryService.StartInventory(req)
	if err != nil {
		respondServiceError(c, err, "StartInventory: Error from inventoryService.StartInventory")
		return
	}
	c.JSON(http.StatusCreated, inventory)
}

// GetInventories handles listing counting sessions.
func (h *InventoryHandler) GetInventories(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	inventories, totalCount, err := h.inventoryService.GetInventories(page, pageSize)
	if err != nil {
		respondServiceError(c, err, "GetInventories: Error from inventoryService.GetInventories")
		return
	}
	if inventories == nil {
		inventories = []models.Inventory{}
	}
	listResponse(c, inventories, totalCount, page, pageSize)
}

// GetInventoryByID handles fetching a session with its snapshot lines.
func (h *InventoryHandler) GetInventoryByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	inventory, err := h.inventoryService.GetInventoryByID(id)
	if err != nil {
		respondServiceError(c, err, "GetInventoryByID: Error from inventoryService.GetInventoryByID")
		return
	}
	c.JSON(http.StatusOK, inventory)
}

// CheckItem handles recording a counted quantity for one snapshot line.
func (h *InventoryHandler) CheckItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CheckInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CheckItem: Failed to bind JSON")
		return
	}

	item, err := h.inventoryService.CheckItem(id, req)
	if err != nil {
		respondServiceError(c, err, "CheckItem: Error from inventoryService.CheckItem")
		return
	}
	c.JSON(http.StatusOK, item)
}

type inventoryActorRequest struct {
	Actor string `json:"actor" binding:"required"`
}

// ApplyCorrections handles completing a session with stock corrections.
func (h *InventoryHandler) ApplyCorrections(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req inventoryActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "ApplyCorrections: Failed to bind JSON")
		return
	}

	inventory, err := h.inventoryService.ApplyCorrections(id, req.Actor)
	if err != nil {
		respondServiceError(c, err, "ApplyCorrections: Error from inventoryService.ApplyCorrections")
		return
	}
	c.JSON(http.StatusOK, inventory)
}

// CompleteWithoutCorrections handles closing a session without touching
// stock.
func (h *InventoryHandler) CompleteWithoutCorrections(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req inventoryActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CompleteWithoutCorrections: Failed to bind JSON")
		return
	}

	inventory, err := h.inventoryService.CompleteWithoutCorrections(id, req.Actor)
	if err != nil {
		respondServiceError(c, err, "CompleteWithoutCorrections: Error from inventoryService.CompleteWithoutCorrections")
		return
	}
	c.JSON(http.StatusOK, inventory)
}

// CancelInventory handles abandoning an in-progress session.
func (h *InventoryHandler) CancelInventory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req inventoryActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CancelInventory: Failed to bind JSON")
		return
	}

	inventory, err := h.inventoryService.CancelInventory(id, req.Actor)
	if err != nil {
		respondServiceError(c, err, "CancelInventory: Error from inventoryService.CancelInventory")
		return
	}
	c.JSON(http.StatusOK, inventory)
}
