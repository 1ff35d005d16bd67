package handlers

import (
	"errors"
	"net/http"

	"itlager_backend/internal/services"
	"itlager_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive int64 path parameter. On failure it responds
// with a validation error and returns false.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" format.", c.Param(name)))
		return 0, false
	}
	return id, true
}

// respondServiceError maps service-layer failures to HTTP responses. Every
// handler funnels errors through here so the error taxonomy stays uniform.
func respondServiceError(c *gin.Context, err error, logContext string) {
	utils.LogError(err, logContext)
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	case errors.Is(err, services.ErrArticleNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrOrderItemNotFound),
		errors.Is(err, services.ErrMobilfunkNotFound),
		errors.Is(err, services.ErrInventoryNotFound),
		errors.Is(err, services.ErrSerialNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), err.Error()))
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrSerialNumberUnavailable),
		errors.Is(err, services.ErrDuplicateIdentifier):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
	case errors.Is(err, services.ErrPreconditionNotMet):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodePreconditionFailed, err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "An internal error occurred.", "Internal error"))
	}
}

// respondBindError reports a JSON binding failure.
func respondBindError(c *gin.Context, err error, logContext string) {
	utils.LogError(err, logContext)
	utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
}

// listResponse is the shared envelope for paginated collections.
func listResponse(c *gin.Context, data interface{}, total, page, pageSize int) {
	c.JSON(http.StatusOK, gin.H{
		"data":      data,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
