package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock movement kinds. ADJUSTMENT is reserved for inventory reconciliation
// and sets the stock to an absolute value instead of applying a delta.
const (
	MovementIn         = "IN"
	MovementOut        = "OUT"
	MovementAdjustment = "ADJUSTMENT"
)

// Article represents a stock-keeping unit of the depot catalog.
// CurrentStock is the authoritative on-hand count and is only ever mutated
// through the stock service; articles are soft-deleted via IsActive because
// movements and order items keep referencing them.
type Article struct {
	ID               int64           `json:"id" db:"id"`
	SKU              string          `json:"sku" db:"sku" binding:"required"`
	Name             string          `json:"name" db:"name" binding:"required"`
	Tier             string          `json:"tier" db:"tier"`
	Unit             string          `json:"unit" db:"unit"`
	IsSerialized     bool            `json:"is_serialized" db:"is_serialized"`
	CurrentStock     int             `json:"current_stock" db:"current_stock"`
	IncomingStock    int             `json:"incoming_stock" db:"incoming_stock"`
	MinStockLevel    int             `json:"min_stock_level" db:"min_stock_level"`
	AvgPurchasePrice decimal.Decimal `json:"avg_purchase_price" db:"avg_purchase_price"`
	IsActive         bool            `json:"is_active" db:"is_active"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// StockMovement is one immutable ledger entry. QuantityChanged always holds
// the signed delta that was applied to the article's stock; for ADJUSTMENT
// movements AbsoluteQuantity additionally records the new absolute value so
// the audit trail carries both representations.
type StockMovement struct {
	ID               int64     `json:"id" db:"id"`
	ArticleID        int64     `json:"article_id" db:"article_id" binding:"required"`
	Kind             string    `json:"kind" db:"kind" binding:"required"`
	QuantityChanged  int       `json:"quantity_changed" db:"quantity_changed"`
	AbsoluteQuantity *int      `json:"absolute_quantity,omitempty" db:"absolute_quantity"`
	Reason           *string   `json:"reason,omitempty" db:"reason"`
	Actor            string    `json:"actor" db:"actor"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`

	Article *Article `json:"article,omitempty"`
}

// ArticleFilters defines the available filters for querying articles.
type ArticleFilters struct {
	Tier            *string `form:"tier"`
	Serialized      *bool   `form:"serialized"`
	IncludeInactive bool    `form:"include_inactive"`
	Page            int     `form:"page"`
	PageSize        int     `form:"page_size"`
}

// MovementFilters defines the available filters for querying stock movements.
type MovementFilters struct {
	ArticleID *int64  `form:"article_id"`
	Kind      *string `form:"kind"`
	Actor     *string `form:"actor"`
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}
