package services

import (
	"database/sql"
	"errors"
	"fmt"

	"itlager_backend/internal/models"
	"itlager_backend/internal/repositories"
	"itlager_backend/pkg/utils"
)

// CreateMovementRequest is the input for a quantity-changing ledger
// operation. For IN and OUT, Quantity is the (positive) amount moved; for
// ADJUSTMENT it is the new absolute stock value.
type CreateMovementRequest struct {
	ArticleID int64  `json:"article_id" binding:"required"`
	Kind      string `json:"kind" binding:"required"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
	Actor     string `json:"actor" binding:"required"`
}

// StockService is the single gate for every stock mutation. The movement
// append and the counter update always commit or roll back together, so
// the ledger and current_stock cannot drift apart.
type StockService interface {
	// CreateMovement applies one movement in its own transaction.
	CreateMovement(req CreateMovementRequest) (*models.StockMovement, *models.Article, error)
	// ApplyMovementTx applies one movement inside a caller-provided
	// transaction; used by the fulfillment and inventory workflows to keep
	// stock changes atomic with their own writes. Returns the appended
	// movement and the resulting stock level.
	ApplyMovementTx(tx repositories.SQLExecutor, req CreateMovementRequest) (*models.StockMovement, int, error)
	GetMovements(filters models.MovementFilters) ([]models.StockMovement, int, error)
}

type stockService struct {
	articleRepo  repositories.ArticleRepository
	movementRepo repositories.StockMovementRepository
	db           *sql.DB
}

// NewStockService creates a new instance of StockService.
func NewStockService(
	ar repositories.ArticleRepository,
	mr repositories.StockMovementRepository,
	db *sql.DB,
) StockService {
	return &stockService{articleRepo: ar, movementRepo: mr, db: db}
}

func validateMovementRequest(req CreateMovementRequest) error {
	if req.ArticleID <= 0 {
		return fmt.Errorf("%w: article ID is required", ErrValidation)
	}
	if req.Actor == "" {
		return fmt.Errorf("%w: actor is required for stock movements", ErrValidation)
	}
	switch req.Kind {
	case models.MovementIn, models.MovementOut:
		if req.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive for %s movements", ErrValidation, req.Kind)
		}
	case models.MovementAdjustment:
		if req.Quantity < 0 {
			return fmt.Errorf("%w: adjusted stock value cannot be negative", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown movement kind '%s'", ErrValidation, req.Kind)
	}
	return nil
}

func (s *stockService) ApplyMovementTx(tx repositories.SQLExecutor, req CreateMovementRequest) (*models.StockMovement, int, error) {
	if err := validateMovementRequest(req); err != nil {
		return nil, 0, err
	}

	var newStock int
	var delta int
	var absolute *int

	switch req.Kind {
	case models.MovementOut:
		stock, err := s.articleRepo.DeductStock(tx, req.ArticleID, req.Quantity)
		if err != nil {
			if errors.Is(err, repositories.ErrInsufficientStock) {
				available := 0
				if article, readErr := s.articleRepo.GetArticleByID(tx, req.ArticleID); readErr == nil {
					available = article.CurrentStock
				}
				return nil, 0, fmt.Errorf("%w %d: requested %d, available %d",
					ErrInsufficientStock, req.ArticleID, req.Quantity, available)
			}
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, 0, fmt.Errorf("%w: ID %d", ErrArticleNotFound, req.ArticleID)
			}
			return nil, 0, fmt.Errorf("failed to deduct stock: %w", err)
		}
		newStock = stock
		delta = -req.Quantity

	case models.MovementIn:
		stock, err := s.articleRepo.IncreaseStock(tx, req.ArticleID, req.Quantity)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, 0, fmt.Errorf("%w: ID %d", ErrArticleNotFound, req.ArticleID)
			}
			return nil, 0, fmt.Errorf("failed to increase stock: %w", err)
		}
		newStock = stock
		delta = req.Quantity

	case models.MovementAdjustment:
		oldStock, err := s.articleRepo.SetStock(tx, req.ArticleID, req.Quantity)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, 0, fmt.Errorf("%w: ID %d", ErrArticleNotFound, req.ArticleID)
			}
			return nil, 0, fmt.Errorf("failed to set stock: %w", err)
		}
		newStock = req.Quantity
		delta = req.Quantity - oldStock
		abs := req.Quantity
		absolute = &abs
	}

	movement := &models.StockMovement{
		ArticleID:        req.ArticleID,
		Kind:             req.Kind,
		QuantityChanged:  delta,
		AbsoluteQuantity: absolute,
		Reason:           utils.NewNullString(req.Reason),
		Actor:            req.Actor,
	}
	if _, err := s.movementRepo.CreateMovement(tx, movement); err != nil {
		return nil, 0, fmt.Errorf("failed to record stock movement: %w", err)
	}
	return movement, newStock, nil
}

func (s *stockService) CreateMovement(req CreateMovementRequest) (*models.StockMovement, *models.Article, error) {
	if err := validateMovementRequest(req); err != nil {
		return nil, nil, err
	}
	// Absolute corrections belong to inventory reconciliation; the public
	// endpoint only moves deltas.
	if req.Kind == models.MovementAdjustment {
		return nil, nil, fmt.Errorf("%w: ADJUSTMENT movements are issued by inventory corrections only", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	movement, _, err := s.ApplyMovementTx(tx, req)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit stock movement transaction: %w", err)
	}

	article, err := s.articleRepo.GetArticleByID(nil, req.ArticleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-read article after movement: %w", err)
	}
	return movement, article, nil
}

func (s *stockService) GetMovements(filters models.MovementFilters) ([]models.StockMovement, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 200 {
		filters.PageSize = 50
	}
	movements, totalCount, err := s.movementRepo.GetMovements(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get stock movements: %w", err)
	}
	return movements, totalCount, nil
}
