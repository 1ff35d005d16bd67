package handlers

import (
	"net/http"
	"strconv"

	"itlager_backend/internal/models"
	"itlager_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ArticleHandler holds the article service.
type ArticleHandler struct {
	articleService services.ArticleService
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(as services.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: as}
}

// CreateArticle handles the creation of a new catalog article.
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req services.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "CreateArticle: Failed to bind JSON")
		return
	}

	article, err := h.articleService.CreateArticle(req)
	if err != nil {
		respondServiceError(c, err, "CreateArticle: Error from articleService.CreateArticle")
		return
	}
	c.JSON(http.StatusCreated, article)
}

// GetArticles handles fetching articles with filters and pagination.
func (h *ArticleHandler) GetArticles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	filters := models.ArticleFilters{
		IncludeInactive: c.Query("include_inactive") == "true",
		Page:            page,
		PageSize:        pageSize,
	}
	if v := c.Query("tier"); v != "" {
		filters.Tier = &v
	}
	if v := c.Query("serialized"); v != "" {
		serialized := v == "true"
		filters.Serialized = &serialized
	}

	articles, totalCount, err := h.articleService.GetArticles(filters)
	if err != nil {
		respondServiceError(c, err, "GetArticles: Error from articleService.GetArticles")
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}
	listResponse(c, articles, totalCount, filters.Page, filters.PageSize)
}

// GetArticleByID handles fetching a single article.
func (h *ArticleHandler) GetArticleByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	article, err := h.articleService.GetArticleByID(id)
	if err != nil {
		respondServiceError(c, err, "GetArticleByID: Error from articleService.GetArticleByID")
		return
	}
	c.JSON(http.StatusOK, article)
}

// UpdateArticle handles partial updates of an article.
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateArticle: Failed to bind JSON")
		return
	}

	article, err := h.articleService.UpdateArticle(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateArticle: Error from articleService.UpdateArticle")
		return
	}
	c.JSON(http.StatusOK, article)
}

// DeactivateArticle handles soft deletion of an article.
func (h *ArticleHandler) DeactivateArticle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.articleService.DeactivateArticle(id); err != nil {
		respondServiceError(c, err, "DeactivateArticle: Error from articleService.DeactivateArticle")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article deactivated successfully"})
}

// ReceiveGoods handles a goods receipt into general stock.
func (h *ArticleHandler) ReceiveGoods(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ReceiveGoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "ReceiveGoods: Failed to bind JSON")
		return
	}

	article, serials, err := h.articleService.ReceiveGoods(id, req)
	if err != nil {
		respondServiceError(c, err, "ReceiveGoods: Error from articleService.ReceiveGoods")
		return
	}
	if serials == nil {
		serials = []models.SerialNumber{}
	}
	c.JSON(http.StatusOK, gin.H{"article": article, "serials": serials})
}
