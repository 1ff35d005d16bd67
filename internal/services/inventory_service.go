package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"itlager_backend/internal/models"
	"itlager_backend/internal/repositories"
)

// StartInventoryRequest opens a new counting session.
type StartInventoryRequest struct {
	Name      string `json:"name" binding:"required"`
	StartedBy string `json:"started_by" binding:"required"`
}

// CheckInventoryItemRequest records the counted quantity for one snapshot
// line.
type CheckInventoryItemRequest struct {
	CountedQty int     `json:"counted_qty"`
	CheckedBy  string  `json:"checked_by" binding:"required"`
	Notes      *string `json:"notes"`
}

// InventoryService runs counting sessions against a frozen snapshot of the
// catalog. At most one session is in progress at any time.
type InventoryService interface {
	StartInventory(req StartInventoryRequest) (*models.Inventory, error)
	GetInventoryByID(id int64) (*models.Inventory, error)
	GetInventories(page, pageSize int) ([]models.Inventory, int, error)
	CheckItem(itemID int64, req CheckInventoryItemRequest) (*models.InventoryItem, error)
	ApplyCorrections(inventoryID int64, actor string) (*models.Inventory, error)
	CompleteWithoutCorrections(inventoryID int64, actor string) (*models.Inventory, error)
	CancelInventory(inventoryID int64, actor string) (*models.Inventory, error)
}

type inventoryService struct {
	inventoryRepo repositories.InventoryRepository
	articleRepo   repositories.ArticleRepository
	stock         StockService
	db            *sql.DB
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(
	ir repositories.InventoryRepository,
	ar repositories.ArticleRepository,
	stock StockService,
	db *sql.DB,
) InventoryService {
	return &inventoryService{inventoryRepo: ir, articleRepo: ar, stock: stock, db: db}
}

func (s *inventoryService) StartInventory(req StartInventoryRequest) (*models.Inventory, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: inventory name cannot be empty", ErrValidation)
	}
	if req.StartedBy == "" {
		return nil, fmt.Errorf("%w: starting actor is required", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if active, err := s.inventoryRepo.GetActiveInventory(tx); err == nil {
		return nil, fmt.Errorf("%w: inventory '%s' is still in progress", ErrPreconditionNotMet, active.Name)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for active inventory: %w", err)
	}

	inventory := &models.Inventory{
		Name:      req.Name,
		Status:    models.InventoryInProgress,
		StartedBy: req.StartedBy,
	}
	inventoryID, err := s.inventoryRepo.CreateInventory(tx, inventory)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: another inventory session is already in progress", ErrPreconditionNotMet)
		}
		return nil, fmt.Errorf("failed to create inventory session: %w", err)
	}

	// Snapshot the active catalog: expected quantities are frozen at start
	// time, concurrent stock changes do not move them.
	articles, err := s.articleRepo.GetActiveArticles(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot articles: %w", err)
	}
	for i := range articles {
		item := &models.InventoryItem{
			InventoryID: inventoryID,
			ArticleID:   articles[i].ID,
			ExpectedQty: articles[i].CurrentStock,
		}
		if _, err := s.inventoryRepo.CreateInventoryItem(tx, item); err != nil {
			return nil, fmt.Errorf("failed to create snapshot line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit inventory start: %w", err)
	}
	return s.GetInventoryByID(inventoryID)
}

func (s *inventoryService) GetInventoryByID(id int64) (*models.Inventory, error) {
	inventory, err := s.inventoryRepo.GetInventoryByID(nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrInventoryNotFound, id)
		}
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	items, err := s.inventoryRepo.GetInventoryItemsByInventoryID(nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory items: %w", err)
	}
	inventory.Items = items
	return inventory, nil
}

func (s *inventoryService) GetInventories(page, pageSize int) ([]models.Inventory, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	inventories, totalCount, err := s.inventoryRepo.GetInventories(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get inventories: %w", err)
	}
	return inventories, totalCount, nil
}

func (s *inventoryService) CheckItem(itemID int64, req CheckInventoryItemRequest) (*models.InventoryItem, error) {
	if req.CheckedBy == "" {
		return nil, fmt.Errorf("%w: checking actor is required", ErrValidation)
	}
	if req.CountedQty < 0 {
		return nil, fmt.Errorf("%w: counted quantity cannot be negative", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.inventoryRepo.GetInventoryItemByID(tx, itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: inventory item %d", ErrInventoryNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to fetch inventory item: %w", err)
	}
	inventory, err := s.inventoryRepo.GetInventoryByID(tx, item.InventoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory session: %w", err)
	}
	if inventory.Status != models.InventoryInProgress {
		return nil, fmt.Errorf("%w: inventory '%s' is %s", ErrPreconditionNotMet, inventory.Name, inventory.Status)
	}

	difference := req.CountedQty - item.ExpectedQty
	if err := s.inventoryRepo.CheckInventoryItem(tx, itemID, req.CountedQty, difference, req.CheckedBy, req.Notes); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: inventory item %d is already checked", ErrPreconditionNotMet, itemID)
		}
		return nil, fmt.Errorf("failed to record count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit inventory check: %w", err)
	}
	return s.inventoryRepo.GetInventoryItemByID(nil, itemID)
}

func (s *inventoryService) ApplyCorrections(inventoryID int64, actor string) (*models.Inventory, error) {
	if actor == "" {
		return nil, fmt.Errorf("%w: actor is required for applying corrections", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	inventory, err := s.inventoryRepo.GetInventoryByID(tx, inventoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrInventoryNotFound, inventoryID)
		}
		return nil, fmt.Errorf("failed to fetch inventory session: %w", err)
	}
	// Re-running on a completed session is a no-op; corrections were
	// written exactly once.
	if inventory.Status == models.InventoryCompleted {
		return s.GetInventoryByID(inventoryID)
	}
	if inventory.Status == models.InventoryCancelled {
		return nil, fmt.Errorf("%w: inventory '%s' is cancelled", ErrPreconditionNotMet, inventory.Name)
	}

	unchecked, err := s.inventoryRepo.CountUncheckedItems(tx, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unchecked items: %w", err)
	}
	if unchecked > 0 {
		return nil, fmt.Errorf("%w: %d items are still unchecked", ErrPreconditionNotMet, unchecked)
	}

	items, err := s.inventoryRepo.GetInventoryItemsByInventoryID(tx, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory items: %w", err)
	}
	for i := range items {
		if items[i].Difference == nil || *items[i].Difference == 0 || items[i].CountedQty == nil {
			continue
		}
		_, _, err := s.stock.ApplyMovementTx(tx, CreateMovementRequest{
			ArticleID: items[i].ArticleID,
			Kind:      models.MovementAdjustment,
			Quantity:  *items[i].CountedQty,
			Reason:    fmt.Sprintf("Inventory correction '%s'", inventory.Name),
			Actor:     actor,
		})
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if err := s.inventoryRepo.UpdateInventoryStatus(tx, inventoryID, models.InventoryCompleted, &now); err != nil {
		return nil, fmt.Errorf("failed to complete inventory: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit inventory corrections: %w", err)
	}
	return s.GetInventoryByID(inventoryID)
}

func (s *inventoryService) CompleteWithoutCorrections(inventoryID int64, actor string) (*models.Inventory, error) {
	if actor == "" {
		return nil, fmt.Errorf("%w: actor is required for completing an inventory", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	inventory, err := s.inventoryRepo.GetInventoryByID(tx, inventoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrInventoryNotFound, inventoryID)
		}
		return nil, fmt.Errorf("failed to fetch inventory session: %w", err)
	}
	if inventory.Status == models.InventoryCompleted {
		return s.GetInventoryByID(inventoryID)
	}
	if inventory.Status == models.InventoryCancelled {
		return nil, fmt.Errorf("%w: inventory '%s' is cancelled", ErrPreconditionNotMet, inventory.Name)
	}

	now := time.Now()
	if err := s.inventoryRepo.UpdateInventoryStatus(tx, inventoryID, models.InventoryCompleted, &now); err != nil {
		return nil, fmt.Errorf("failed to complete inventory: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit inventory completion: %w", err)
	}
	return s.GetInventoryByID(inventoryID)
}

func (s *inventoryService) CancelInventory(inventoryID int64, actor string) (*models.Inventory, error) {
	if actor == "" {
		return nil, fmt.Errorf("%w: actor is required for cancelling an inventory", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	inventory, err := s.inventoryRepo.GetInventoryByID(tx, inventoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrInventoryNotFound, inventoryID)
		}
		return nil, fmt.Errorf("failed to fetch inventory session: %w", err)
	}
	if inventory.Status != models.InventoryInProgress {
		return nil, fmt.Errorf("%w: inventory '%s' is %s", ErrPreconditionNotMet, inventory.Name, inventory.Status)
	}

	now := time.Now()
	if err := s.inventoryRepo.UpdateInventoryStatus(tx, inventoryID, models.InventoryCancelled, &now); err != nil {
		return nil, fmt.Errorf("failed to cancel inventory: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit inventory cancellation: %w", err)
	}
	return s.GetInventoryByID(inventoryID)
}
