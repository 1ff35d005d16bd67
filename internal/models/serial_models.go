package models

import "time"

// SerialNumber lifecycle statuses. The main path is
// IN_STOCK -> RESERVED -> DEPLOYED; DEFECTIVE, RETURNED and DISPOSED are
// side branches. Serials are never deleted, only moved to a terminal status.
const (
	SerialInStock   = "IN_STOCK"
	SerialReserved  = "RESERVED"
	SerialDeployed  = "DEPLOYED"
	SerialDefective = "DEFECTIVE"
	SerialReturned  = "RETURNED"
	SerialDisposed  = "DISPOSED"
)

// SerialNumber tracks one physical serialized unit. A serial is owned by
// exactly one article and bound to at most one order item at a time
// (OrderItemID nil while unbound).
type SerialNumber struct {
	ID          int64     `json:"id" db:"id"`
	ArticleID   int64     `json:"article_id" db:"article_id" binding:"required"`
	Serial      string    `json:"serial" db:"serial" binding:"required"`
	Status      string    `json:"status" db:"status"`
	IsUsed      bool      `json:"is_used" db:"is_used"`
	Location    *string   `json:"location,omitempty" db:"location"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	OrderItemID *int64    `json:"order_item_id,omitempty" db:"order_item_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Article *Article `json:"article,omitempty"`
}

// IsValidSerialStatus reports whether s is a known serial lifecycle status.
func IsValidSerialStatus(s string) bool {
	switch s {
	case SerialInStock, SerialReserved, SerialDeployed, SerialDefective, SerialReturned, SerialDisposed:
		return true
	default:
		return false
	}
}

// SerialFilters defines the available filters for querying serial numbers.
type SerialFilters struct {
	ArticleID *int64  `form:"article_id"`
	Status    *string `form:"status"`
	Search    *string `form:"search"`
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
}
