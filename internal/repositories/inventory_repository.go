package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"itlager_backend/internal/models"

	"github.com/lib/pq"
)

// InventoryRepository defines the interface for physical count-session
// persistence. Expected quantities are written once at session start and
// never updated afterwards.
type InventoryRepository interface {
	CreateInventory(executor SQLExecutor, inventory *models.Inventory) (int64, error)
	GetInventoryByID(executor SQLExecutor, id int64) (*models.Inventory, error)
	GetActiveInventory(executor SQLExecutor) (*models.Inventory, error)
	GetInventories(page, pageSize int) ([]models.Inventory, int, error)
	UpdateInventoryStatus(executor SQLExecutor, id int64, status string, completedAt *time.Time) error

	CreateInventoryItem(executor SQLExecutor, item *models.InventoryItem) (int64, error)
	GetInventoryItemByID(executor SQLExecutor, id int64) (*models.InventoryItem, error)
	GetInventoryItemsByInventoryID(executor SQLExecutor, inventoryID int64) ([]models.InventoryItem, error)
	CheckInventoryItem(executor SQLExecutor, id int64, countedQty, difference int, checkedBy string, notes *string) error
	CountUncheckedItems(executor SQLExecutor, inventoryID int64) (int, error)
}

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

const inventoryColumns = `id, name, status, started_by, started_at, completed_at, created_at, updated_at`

func scanInventory(row interface{ Scan(...interface{}) error }, inv *models.Inventory) error {
	return row.Scan(
		&inv.ID, &inv.Name, &inv.Status, &inv.StartedBy, &inv.StartedAt,
		&inv.CompletedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
}

func (r *inventoryRepository) CreateInventory(executor SQLExecutor, inventory *models.Inventory) (int64, error) {
	query := `INSERT INTO inventories (name, status, started_by, started_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, started_at`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		inventory.Name, inventory.Status, inventory.StartedBy, currentTime, currentTime, currentTime,
	).Scan(&inventory.ID, &inventory.StartedAt)
	if err != nil {
		// The partial unique index on IN_PROGRESS stops the loser of two
		// concurrent starts; surface it as a duplicate, not a storage fault.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: an inventory session is already in progress (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating inventory session: %v", ErrDatabaseError, err)
	}
	return inventory.ID, nil
}

func (r *inventoryRepository) GetInventoryByID(executor SQLExecutor, id int64) (*models.Inventory, error) {
	if executor == nil {
		executor = r.db
	}
	inventory := &models.Inventory{}
	query := `SELECT ` + inventoryColumns + ` FROM inventories WHERE id = $1`
	err := scanInventory(executor.QueryRow(query, id), inventory)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting inventory session by ID %d: %v", ErrDatabaseError, id, err)
	}
	return inventory, nil
}

func (r *inventoryRepository) GetActiveInventory(executor SQLExecutor) (*models.Inventory, error) {
	if executor == nil {
		executor = r.db
	}
	inventory := &models.Inventory{}
	query := `SELECT ` + inventoryColumns + ` FROM inventories WHERE status = $1 ORDER BY started_at DESC LIMIT 1`
	err := scanInventory(executor.QueryRow(query, models.InventoryInProgress), inventory)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting active inventory session: %v", ErrDatabaseError, err)
	}
	return inventory, nil
}

func (r *inventoryRepository) GetInventories(page, pageSize int) ([]models.Inventory, int, error) {
	inventories := []models.Inventory{}
	totalCount := 0
	query := `SELECT ` + inventoryColumns + `, COUNT(*) OVER() AS total_count
	          FROM inventories
	          ORDER BY started_at DESC
	          LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting inventory sessions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var inv models.Inventory
		if err := rows.Scan(
			&inv.ID, &inv.Name, &inv.Status, &inv.StartedBy, &inv.StartedAt,
			&inv.CompletedAt, &inv.CreatedAt, &inv.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning inventory session: %v", ErrDatabaseError, err)
		}
		inventories = append(inventories, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating inventory sessions: %v", ErrDatabaseError, err)
	}
	return inventories, totalCount, nil
}

func (r *inventoryRepository) UpdateInventoryStatus(executor SQLExecutor, id int64, status string, completedAt *time.Time) error {
	result, err := executor.Exec(`UPDATE inventories SET status = $1, completed_at = $2, updated_at = $3 WHERE id = $4`,
		status, completedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating status of inventory session %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) CreateInventoryItem(executor SQLExecutor, item *models.InventoryItem) (int64, error) {
	query := `INSERT INTO inventory_items (inventory_id, article_id, expected_qty, checked)
	          VALUES ($1, $2, $3, FALSE)
	          RETURNING id`
	err := executor.QueryRow(query, item.InventoryID, item.ArticleID, item.ExpectedQty).Scan(&item.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating inventory item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *inventoryRepository) GetInventoryItemByID(executor SQLExecutor, id int64) (*models.InventoryItem, error) {
	if executor == nil {
		executor = r.db
	}
	item := &models.InventoryItem{}
	query := `SELECT id, inventory_id, article_id, expected_qty, counted_qty, difference, checked, checked_by, notes
	          FROM inventory_items WHERE id = $1`
	err := executor.QueryRow(query, id).Scan(
		&item.ID, &item.InventoryID, &item.ArticleID, &item.ExpectedQty,
		&item.CountedQty, &item.Difference, &item.Checked, &item.CheckedBy, &item.Notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting inventory item by ID %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

func (r *inventoryRepository) GetInventoryItemsByInventoryID(executor SQLExecutor, inventoryID int64) ([]models.InventoryItem, error) {
	if executor == nil {
		executor = r.db
	}
	query := `SELECT
	    ii.id, ii.inventory_id, ii.article_id, ii.expected_qty, ii.counted_qty,
	    ii.difference, ii.checked, ii.checked_by, ii.notes,
	    a.sku, a.name, a.unit
	  FROM inventory_items ii
	  JOIN articles a ON ii.article_id = a.id
	  WHERE ii.inventory_id = $1
	  ORDER BY a.sku`
	rows, err := executor.Query(query, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting items of inventory session %d: %v", ErrDatabaseError, inventoryID, err)
	}
	defer rows.Close()

	items := []models.InventoryItem{}
	for rows.Next() {
		var item models.InventoryItem
		var article models.Article
		if err := rows.Scan(
			&item.ID, &item.InventoryID, &item.ArticleID, &item.ExpectedQty, &item.CountedQty,
			&item.Difference, &item.Checked, &item.CheckedBy, &item.Notes,
			&article.SKU, &article.Name, &article.Unit,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning item of inventory session %d: %v", ErrDatabaseError, inventoryID, err)
		}
		article.ID = item.ArticleID
		item.Article = &article
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating items of inventory session %d: %v", ErrDatabaseError, inventoryID, err)
	}
	return items, nil
}

func (r *inventoryRepository) CheckInventoryItem(executor SQLExecutor, id int64, countedQty, difference int, checkedBy string, notes *string) error {
	// Guarded on checked = FALSE so a concurrent double-check loses.
	query := `UPDATE inventory_items SET
	          counted_qty = $1, difference = $2, checked = TRUE, checked_by = $3, notes = $4
	          WHERE id = $5 AND checked = FALSE`
	result, err := executor.Exec(query, countedQty, difference, checkedBy, notes, id)
	if err != nil {
		return fmt.Errorf("%w: checking inventory item %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) CountUncheckedItems(executor SQLExecutor, inventoryID int64) (int, error) {
	if executor == nil {
		executor = r.db
	}
	var count int
	err := executor.QueryRow(`SELECT COUNT(*) FROM inventory_items WHERE inventory_id = $1 AND checked = FALSE`, inventoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting unchecked items of inventory session %d: %v", ErrDatabaseError, inventoryID, err)
	}
	return count, nil
}
