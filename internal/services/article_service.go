package services

import (
	"database/sql"
	"errors"
	"fmt"

	"itlager_backend/internal/models"
	"itlager_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// CreateArticleRequest is used for creating a new catalog article.
type CreateArticleRequest struct {
	SKU           string `json:"sku" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Tier          string `json:"tier"`
	Unit          string `json:"unit"`
	IsSerialized  bool   `json:"is_serialized"`
	MinStockLevel int    `json:"min_stock_level"`
}

// UpdateArticleRequest carries partial updates for an article. Stock fields
// are deliberately absent; they only change through the stock service.
type UpdateArticleRequest struct {
	SKU           *string `json:"sku"`
	Name          *string `json:"name"`
	Tier          *string `json:"tier"`
	Unit          *string `json:"unit"`
	IsSerialized  *bool   `json:"is_serialized"`
	MinStockLevel *int    `json:"min_stock_level"`
	IsActive      *bool   `json:"is_active"`
}

// ReceiveGoodsRequest books a goods receipt into general stock.
type ReceiveGoodsRequest struct {
	Quantity  int      `json:"quantity" binding:"required,gt=0"`
	Reason    string   `json:"reason"`
	Serials   []string `json:"serials"`
	UnitPrice *string  `json:"unit_price"`
	Actor     string   `json:"actor" binding:"required"`
}

// ArticleService manages the stock-keeping catalog and general goods
// receipts.
type ArticleService interface {
	CreateArticle(req CreateArticleRequest) (*models.Article, error)
	GetArticles(filters models.ArticleFilters) ([]models.Article, int, error)
	GetArticleByID(id int64) (*models.Article, error)
	UpdateArticle(id int64, req UpdateArticleRequest) (*models.Article, error)
	DeactivateArticle(id int64) error
	ReceiveGoods(articleID int64, req ReceiveGoodsRequest) (*models.Article, []models.SerialNumber, error)
}

type articleService struct {
	articleRepo repositories.ArticleRepository
	stock       StockService
	serials     SerialService
	db          *sql.DB
}

// NewArticleService creates a new instance of ArticleService.
func NewArticleService(
	ar repositories.ArticleRepository,
	stock StockService,
	serials SerialService,
	db *sql.DB,
) ArticleService {
	return &articleService{articleRepo: ar, stock: stock, serials: serials, db: db}
}

func (s *articleService) CreateArticle(req CreateArticleRequest) (*models.Article, error) {
	if req.SKU == "" {
		return nil, fmt.Errorf("%w: SKU cannot be empty", ErrValidation)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: article name cannot be empty", ErrValidation)
	}
	if req.MinStockLevel < 0 {
		return nil, fmt.Errorf("%w: minimum stock level cannot be negative", ErrValidation)
	}

	article := &models.Article{
		SKU:              req.SKU,
		Name:             req.Name,
		Tier:             req.Tier,
		Unit:             req.Unit,
		IsSerialized:     req.IsSerialized,
		MinStockLevel:    req.MinStockLevel,
		AvgPurchasePrice: decimal.Zero,
		IsActive:         true,
	}
	if _, err := s.articleRepo.CreateArticle(s.db, article); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: SKU '%s'", ErrDuplicateIdentifier, req.SKU)
		}
		return nil, fmt.Errorf("failed to create article: %w", err)
	}
	return s.GetArticleByID(article.ID)
}

func (s *articleService) GetArticles(filters models.ArticleFilters) ([]models.Article, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 200 {
		filters.PageSize = 50
	}
	articles, totalCount, err := s.articleRepo.GetArticles(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get articles: %w", err)
	}
	return articles, totalCount, nil
}

func (s *articleService) GetArticleByID(id int64) (*models.Article, error) {
	article, err := s.articleRepo.GetArticleByID(nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrArticleNotFound, id)
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

func (s *articleService) UpdateArticle(id int64, req UpdateArticleRequest) (*models.Article, error) {
	article, err := s.GetArticleByID(id)
	if err != nil {
		return nil, err
	}

	if req.SKU != nil {
		if *req.SKU == "" {
			return nil, fmt.Errorf("%w: SKU cannot be empty if provided", ErrValidation)
		}
		article.SKU = *req.SKU
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: article name cannot be empty if provided", ErrValidation)
		}
		article.Name = *req.Name
	}
	if req.Tier != nil {
		article.Tier = *req.Tier
	}
	if req.Unit != nil {
		article.Unit = *req.Unit
	}
	if req.IsSerialized != nil {
		article.IsSerialized = *req.IsSerialized
	}
	if req.MinStockLevel != nil {
		if *req.MinStockLevel < 0 {
			return nil, fmt.Errorf("%w: minimum stock level cannot be negative", ErrValidation)
		}
		article.MinStockLevel = *req.MinStockLevel
	}
	if req.IsActive != nil {
		article.IsActive = *req.IsActive
	}

	if err := s.articleRepo.UpdateArticle(s.db, article); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: SKU '%s'", ErrDuplicateIdentifier, article.SKU)
		}
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	return s.GetArticleByID(id)
}

func (s *articleService) DeactivateArticle(id int64) error {
	// Articles are never hard-deleted; movements and order items keep
	// referencing them.
	err := s.articleRepo.DeactivateArticle(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrArticleNotFound, id)
		}
		return fmt.Errorf("failed to deactivate article: %w", err)
	}
	return nil
}

func (s *articleService) ReceiveGoods(articleID int64, req ReceiveGoodsRequest) (*models.Article, []models.SerialNumber, error) {
	if req.Actor == "" {
		return nil, nil, fmt.Errorf("%w: actor is required for receiving goods", ErrValidation)
	}
	if req.Quantity <= 0 {
		return nil, nil, fmt.Errorf("%w: received quantity must be positive", ErrValidation)
	}

	var unitPrice *decimal.Decimal
	if req.UnitPrice != nil && *req.UnitPrice != "" {
		price, err := decimal.NewFromString(*req.UnitPrice)
		if err != nil || price.IsNegative() {
			return nil, nil, fmt.Errorf("%w: invalid unit price '%s'", ErrValidation, *req.UnitPrice)
		}
		unitPrice = &price
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	article, err := s.articleRepo.GetArticleByID(tx, articleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: ID %d", ErrArticleNotFound, articleID)
		}
		return nil, nil, fmt.Errorf("failed to fetch article for goods receipt: %w", err)
	}

	var created []models.SerialNumber
	if article.IsSerialized {
		if len(req.Serials) != req.Quantity {
			return nil, nil, fmt.Errorf("%w: article %s is serialized; expected %d serials, got %d",
				ErrValidation, article.SKU, req.Quantity, len(req.Serials))
		}
		created, err = s.serials.ReceiveTx(tx, articleID, req.Serials, false, nil)
		if err != nil {
			return nil, nil, err
		}
	} else if len(req.Serials) > 0 {
		return nil, nil, fmt.Errorf("%w: article %s does not track serial numbers", ErrValidation, article.SKU)
	}

	reason := req.Reason
	if reason == "" {
		reason = "Goods receipt"
	}
	_, _, err = s.stock.ApplyMovementTx(tx, CreateMovementRequest{
		ArticleID: articleID,
		Kind:      models.MovementIn,
		Quantity:  req.Quantity,
		Reason:    reason,
		Actor:     req.Actor,
	})
	if err != nil {
		return nil, nil, err
	}

	if unitPrice != nil {
		newAvg := movingAveragePrice(article.AvgPurchasePrice, article.CurrentStock, *unitPrice, req.Quantity)
		if err := s.articleRepo.UpdateAvgPurchasePrice(tx, articleID, newAvg); err != nil {
			return nil, nil, fmt.Errorf("failed to update average purchase price: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit goods receipt transaction: %w", err)
	}

	article, err = s.articleRepo.GetArticleByID(nil, articleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-read article after goods receipt: %w", err)
	}
	return article, created, nil
}

// movingAveragePrice folds a new receipt into the running average purchase
// price, weighted by the on-hand quantity before the receipt.
func movingAveragePrice(currentAvg decimal.Decimal, currentQty int, price decimal.Decimal, qty int) decimal.Decimal {
	if currentQty <= 0 || currentAvg.IsZero() {
		return price
	}
	oldValue := currentAvg.Mul(decimal.NewFromInt(int64(currentQty)))
	newValue := price.Mul(decimal.NewFromInt(int64(qty)))
	total := decimal.NewFromInt(int64(currentQty + qty))
	return oldValue.Add(newValue).DivRound(total, 4)
}
