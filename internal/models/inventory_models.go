package models

import "time"

// Inventory session statuses.
const (
	InventoryInProgress = "IN_PROGRESS"
	InventoryCompleted  = "COMPLETED"
	InventoryCancelled  = "CANCELLED"
)

// Inventory is a physical stock-count session. At most one session is
// IN_PROGRESS at any time; expected quantities are frozen when the session
// starts.
type Inventory struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name" binding:"required"`
	Status      string     `json:"status" db:"status"`
	StartedBy   string     `json:"started_by" db:"started_by"`
	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	Items []InventoryItem `json:"items,omitempty"`
}

// InventoryItem is one article snapshot within a count session. ExpectedQty
// is immutable once frozen; Difference = CountedQty - ExpectedQty is set
// when the item is checked.
type InventoryItem struct {
	ID          int64   `json:"id" db:"id"`
	InventoryID int64   `json:"inventory_id" db:"inventory_id"`
	ArticleID   int64   `json:"article_id" db:"article_id"`
	ExpectedQty int     `json:"expected_qty" db:"expected_qty"`
	CountedQty  *int    `json:"counted_qty,omitempty" db:"counted_qty"`
	Difference  *int    `json:"difference,omitempty" db:"difference"`
	Checked     bool    `json:"checked" db:"checked"`
	CheckedBy   *string `json:"checked_by,omitempty" db:"checked_by"`
	Notes       *string `json:"notes,omitempty" db:"notes"`

	Article *Article `json:"article,omitempty"`
}
