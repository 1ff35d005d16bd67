package models

import "time"

// Delivery methods for an order.
const (
	DeliveryPickup   = "PICKUP"
	DeliveryShipping = "SHIPPING"
)

// Line reference kinds for order items.
const (
	LineKindArticle  = "article"
	LineKindFreeText = "free_text"
)

// Mobilfunk line kinds.
const (
	MobilfunkPhone = "PHONE"
	MobilfunkSIM   = "SIM"
	MobilfunkBoth  = "PHONE_AND_SIM"
)

// LineRef is a tagged variant: an order item either references a catalog
// article or carries a free text awaiting manual resolution. Exactly one of
// ArticleID / FreeText is set, selected by Kind.
type LineRef struct {
	Kind      string  `json:"kind"`
	ArticleID *int64  `json:"article_id,omitempty"`
	FreeText  *string `json:"free_text,omitempty"`
}

// Resolved returns the referenced article ID if the line is bound to a
// catalog article.
func (l LineRef) Resolved() (int64, bool) {
	if l.Kind == LineKindArticle && l.ArticleID != nil {
		return *l.ArticleID, true
	}
	return 0, false
}

// IsFreeText reports whether the line is an unresolved free-text placeholder.
func (l LineRef) IsFreeText() bool {
	return l.Kind == LineKindFreeText
}

// OrderItem is one line of a provisioning order.
// Invariants: PickedQty <= Quantity and ReceivedQty <= Quantity.
type OrderItem struct {
	ID              int64      `json:"id" db:"id"`
	OrderID         int64      `json:"order_id" db:"order_id"`
	Line            LineRef    `json:"line"`
	Quantity        int        `json:"quantity" db:"quantity"`
	PickedQty       int        `json:"picked_qty" db:"picked_qty"`
	PickedBy        *string    `json:"picked_by,omitempty" db:"picked_by"`
	NeedsOrdering   bool       `json:"needs_ordering" db:"needs_ordering"`
	OrderedAt       *time.Time `json:"ordered_at,omitempty" db:"ordered_at"`
	OrderedBy       *string    `json:"ordered_by,omitempty" db:"ordered_by"`
	Supplier        *string    `json:"supplier,omitempty" db:"supplier"`
	SupplierOrderNo *string    `json:"supplier_order_no,omitempty" db:"supplier_order_no"`
	ReceivedQty     int        `json:"received_qty" db:"received_qty"`
	ReceivedAt      *time.Time `json:"received_at,omitempty" db:"received_at"`
	Notes           *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`

	Article *Article `json:"article,omitempty"`
}

// MobilfunkItem is a mobile-service line attached to an order: a phone, a
// SIM card, or both. IMEI and phone number are stored once provisioned.
type MobilfunkItem struct {
	ID              int64      `json:"id" db:"id"`
	OrderID         int64      `json:"order_id" db:"order_id"`
	Kind            string     `json:"kind" db:"kind"`
	SetupDone       bool       `json:"setup_done" db:"setup_done"`
	SetupBy         *string    `json:"setup_by,omitempty" db:"setup_by"`
	OrderedAt       *time.Time `json:"ordered_at,omitempty" db:"ordered_at"`
	OrderedBy       *string    `json:"ordered_by,omitempty" db:"ordered_by"`
	ProviderOrderNo *string    `json:"provider_order_no,omitempty" db:"provider_order_no"`
	Received        bool       `json:"received" db:"received"`
	Delivered       bool       `json:"delivered" db:"delivered"`
	IMEI            *string    `json:"imei,omitempty" db:"imei"`
	PhoneNumber     *string    `json:"phone_number,omitempty" db:"phone_number"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Order is a fulfillment request. The persisted Status column is only a
// coarse filter aid; DerivedStatus and Availability are recomputed on every
// read and never trusted from storage.
type Order struct {
	ID              int64      `json:"id" db:"id"`
	OrderNumber     string     `json:"order_number" db:"order_number"`
	OrderedBy       string     `json:"ordered_by" db:"ordered_by"`
	Recipient       string     `json:"recipient" db:"recipient"`
	CostCenter      *string    `json:"cost_center,omitempty" db:"cost_center"`
	DeliveryMethod  string     `json:"delivery_method" db:"delivery_method"`
	ShippingAddress *string    `json:"shipping_address,omitempty" db:"shipping_address"`
	PickupLocation  *string    `json:"pickup_location,omitempty" db:"pickup_location"`
	TechDoneAt      *time.Time `json:"tech_done_at,omitempty" db:"tech_done_at"`
	ShippedAt       *time.Time `json:"shipped_at,omitempty" db:"shipped_at"`
	TrackingNumber  *string    `json:"tracking_number,omitempty" db:"tracking_number"`
	Notes           *string    `json:"notes,omitempty" db:"notes"`
	Status          string     `json:"status" db:"status"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`

	DerivedStatus  string          `json:"derived_status,omitempty"`
	Availability   string          `json:"availability,omitempty"`
	Items          []OrderItem     `json:"items,omitempty"`
	MobilfunkItems []MobilfunkItem `json:"mobilfunk_items,omitempty"`
}

// OrderFilters defines the available filters for querying orders.
type OrderFilters struct {
	Status         *string `form:"status"`
	CostCenter     *string `form:"cost_center"`
	DeliveryMethod *string `form:"delivery_method"`
	Page           int     `form:"page"`
	PageSize       int     `form:"page_size"`
}
