package handlers

import (
	"net/http"
	"strconv"

	"itlager_backend/internal/models"
	"itlager_backend/internal/services"
	"itlager_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SerialHandler holds the serial number service.
type SerialHandler struct {
	serialService services.SerialService
}

// NewSerialHandler creates a new SerialHandler.
func NewSerialHandler(ss services.SerialService) *SerialHandler {
	return &SerialHandler{serialService: ss}
}

// ReceiveSerials handles registering new serialized units into stock.
func (h *SerialHandler) ReceiveSerials(c *gin.Context) {
	var req services.ReceiveSerialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "ReceiveSerials: Failed to bind JSON")
		return
	}

	serials, article, err := h.serialService.Receive(req)
	if err != nil {
		respondServiceError(c, err, "ReceiveSerials: Error from serialService.Receive")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"serials": serials, "article": article})
}

// GetSerials handles fetching serial numbers with filters.
func (h *SerialHandler) GetSerials(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	filters := models.SerialFilters{
		Page:     page,
		PageSize: pageSize,
	}
	if v := c.Query("article_id"); v != "" {
		articleID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || articleID <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid article_id filter.", v))
			return
		}
		filters.ArticleID = &articleID
	}
	if v := c.Query("status"); v != "" {
		filters.Status = &v
	}
	if v := c.Query("search"); v != "" {
		filters.Search = &v
	}

	serials, totalCount, err := h.serialService.GetSerials(filters)
	if err != nil {
		respondServiceError(c, err, "GetSerials: Error from serialService.GetSerials")
		return
	}
	if serials == nil {
		serials = []models.SerialNumber{}
	}
	listResponse(c, serials, totalCount, filters.Page, filters.PageSize)
}

// GetSerialByID handles fetching a single serial number.
func (h *SerialHandler) GetSerialByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	serial, err := h.serialService.GetSerialByID(id)
	if err != nil {
		respondServiceError(c, err, "GetSerialByID: Error from serialService.GetSerialByID")
		return
	}
	c.JSON(http.StatusOK, serial)
}

// UpdateSerial handles editing serial attributes and side-branch status
// transitions.
func (h *SerialHandler) UpdateSerial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateSerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateSerial: Failed to bind JSON")
		return
	}

	serial, err := h.serialService.UpdateSerial(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateSerial: Error from serialService.UpdateSerial")
		return
	}
	c.JSON(http.StatusOK, serial)
}

type reserveSerialRequest struct {
	OrderItemID int64  `json:"order_item_id" binding:"required"`
	Actor       string `json:"actor" binding:"required"`
}

// ReserveSerial binds a serial to an order item outside the pick flow.
func (h *SerialHandler) ReserveSerial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req reserveSerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "ReserveSerial: Failed to bind JSON")
		return
	}

	serial, err := h.serialService.ReserveForPick(id, req.OrderItemID, req.Actor)
	if err != nil {
		respondServiceError(c, err, "ReserveSerial: Error from serialService.ReserveForPick")
		return
	}
	c.JSON(http.StatusOK, serial)
}

type releaseSerialRequest struct {
	Actor string `json:"actor" binding:"required"`
}

// ReleaseSerial unbinds a serial from its order item and returns it to stock.
func (h *SerialHandler) ReleaseSerial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req releaseSerialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "ReleaseSerial: Failed to bind JSON")
		return
	}

	serial, err := h.serialService.Release(id, req.Actor)
	if err != nil {
		respondServiceError(c, err, "ReleaseSerial: Error from serialService.Release")
		return
	}
	c.JSON(http.StatusOK, serial)
}
