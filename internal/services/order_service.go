package services

import (
	"database/sql"
	"errors"
	"fmt"

	"itlager_backend/internal/models"
	"itlager_backend/internal/repositories"
	"itlager_backend/pkg/utils"
)

// CreateOrderLineRequest describes one order line: either a catalog article
// reference or a free text awaiting resolution, never both.
type CreateOrderLineRequest struct {
	ArticleID     *int64  `json:"article_id"`
	FreeText      *string `json:"free_text"`
	Quantity      int     `json:"quantity" binding:"required,gt=0"`
	NeedsOrdering bool    `json:"needs_ordering"`
	Notes         *string `json:"notes"`
}

// CreateMobilfunkLineRequest describes one mobile-service line.
type CreateMobilfunkLineRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// CreateOrderRequest is used for creating a new provisioning order.
type CreateOrderRequest struct {
	OrderedBy       string                       `json:"ordered_by" binding:"required"`
	Recipient       string                       `json:"recipient" binding:"required"`
	CostCenter      *string                      `json:"cost_center"`
	DeliveryMethod  string                       `json:"delivery_method" binding:"required"`
	ShippingAddress *string                      `json:"shipping_address"`
	PickupLocation  *string                      `json:"pickup_location"`
	Notes           *string                      `json:"notes"`
	Items           []CreateOrderLineRequest     `json:"items"`
	MobilfunkItems  []CreateMobilfunkLineRequest `json:"mobilfunk_items"`
}

// UpdateOrderRequest carries header updates for an order that is not yet
// completed or cancelled.
type UpdateOrderRequest struct {
	OrderedBy       *string `json:"ordered_by"`
	Recipient       *string `json:"recipient"`
	CostCenter      *string `json:"cost_center"`
	DeliveryMethod  *string `json:"delivery_method"`
	ShippingAddress *string `json:"shipping_address"`
	PickupLocation  *string `json:"pickup_location"`
	Notes           *string `json:"notes"`
}

// OrderService manages order creation and reads. Status and availability
// are derived on every read; the stored status column is refreshed
// opportunistically as a filter aid but never trusted for display.
type OrderService interface {
	CreateOrder(req CreateOrderRequest) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	UpdateOrder(orderID int64, req UpdateOrderRequest) (*models.Order, error)
}

type orderService struct {
	orderRepo repositories.OrderRepository
	db        *sql.DB
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(or repositories.OrderRepository, db *sql.DB) OrderService {
	return &orderService{orderRepo: or, db: db}
}

func isValidDeliveryMethod(method string) bool {
	return method == models.DeliveryPickup || method == models.DeliveryShipping
}

func isValidMobilfunkKind(kind string) bool {
	switch kind {
	case models.MobilfunkPhone, models.MobilfunkSIM, models.MobilfunkBoth:
		return true
	default:
		return false
	}
}

// assembleOrder loads an order with its items and mobilfunk lines and
// computes the derived projections. Shared by the order and fulfillment
// services so every read path reports the same truth.
func assembleOrder(repo repositories.OrderRepository, orderID int64) (*models.Order, error) {
	order, err := repo.GetOrderByID(nil, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	items, err := repo.GetOrderItemsByOrderID(nil, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	mobilfunk, err := repo.GetMobilfunkItemsByOrderID(nil, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get mobilfunk items: %w", err)
	}
	order.Items = items
	order.MobilfunkItems = mobilfunk
	order.DerivedStatus = DeriveOrderStatus(order)
	order.Availability = ComputeAvailability(order.Items)
	return order, nil
}

// refreshCoarseStatus aligns the persisted status column with the derived
// status. Best effort: a failure here only leaves the filter aid stale.
func refreshCoarseStatus(repo repositories.OrderRepository, db *sql.DB, order *models.Order) {
	if order.Status == StatusCancelled || order.DerivedStatus == order.Status {
		return
	}
	if err := repo.UpdateOrderStatus(db, order.ID, order.DerivedStatus); err != nil {
		utils.LogError(err, fmt.Sprintf("failed to refresh coarse status of order %d", order.ID))
		return
	}
	order.Status = order.DerivedStatus
}

func (s *orderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	if req.OrderedBy == "" {
		return nil, fmt.Errorf("%w: ordering party cannot be empty", ErrValidation)
	}
	if req.Recipient == "" {
		return nil, fmt.Errorf("%w: recipient cannot be empty", ErrValidation)
	}
	if !isValidDeliveryMethod(req.DeliveryMethod) {
		return nil, fmt.Errorf("%w: unknown delivery method '%s'", ErrValidation, req.DeliveryMethod)
	}
	if req.DeliveryMethod == models.DeliveryShipping && (req.ShippingAddress == nil || *req.ShippingAddress == "") {
		return nil, fmt.Errorf("%w: shipping orders require a shipping address", ErrValidation)
	}
	for i, line := range req.Items {
		hasArticle := line.ArticleID != nil && *line.ArticleID > 0
		hasFreeText := line.FreeText != nil && *line.FreeText != ""
		if hasArticle == hasFreeText {
			return nil, fmt.Errorf("%w: line %d must reference either an article or a free text", ErrValidation, i+1)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity of line %d must be positive", ErrValidation, i+1)
		}
	}
	for i, mf := range req.MobilfunkItems {
		if !isValidMobilfunkKind(mf.Kind) {
			return nil, fmt.Errorf("%w: unknown mobilfunk kind '%s' on line %d", ErrValidation, mf.Kind, i+1)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order := models.Order{
		OrderedBy:       req.OrderedBy,
		Recipient:       req.Recipient,
		CostCenter:      req.CostCenter,
		DeliveryMethod:  req.DeliveryMethod,
		ShippingAddress: req.ShippingAddress,
		PickupLocation:  req.PickupLocation,
		Notes:           req.Notes,
		Status:          StatusNew,
	}
	orderID, err := s.orderRepo.CreateOrder(tx, &order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order record: %w", err)
	}

	for _, line := range req.Items {
		item := models.OrderItem{
			OrderID:       orderID,
			Quantity:      line.Quantity,
			NeedsOrdering: line.NeedsOrdering,
			Notes:         line.Notes,
		}
		if line.ArticleID != nil && *line.ArticleID > 0 {
			item.Line = models.LineRef{Kind: models.LineKindArticle, ArticleID: line.ArticleID}
		} else {
			item.Line = models.LineRef{Kind: models.LineKindFreeText, FreeText: line.FreeText}
		}
		if _, err := s.orderRepo.CreateOrderItem(tx, &item); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}
	for _, mf := range req.MobilfunkItems {
		item := models.MobilfunkItem{OrderID: orderID, Kind: mf.Kind}
		if _, err := s.orderRepo.CreateMobilfunkItem(tx, &item); err != nil {
			return nil, fmt.Errorf("failed to create mobilfunk item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order transaction: %w", err)
	}
	return s.GetOrderByID(orderID)
}

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 200 {
		filters.PageSize = 50
	}
	orders, totalCount, err := s.orderRepo.GetOrders(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	// Derived fields are computed per order; the stored status is only the
	// pre-filter.
	for i := range orders {
		full, err := assembleOrder(s.orderRepo, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i] = *full
	}
	return orders, totalCount, nil
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := assembleOrder(s.orderRepo, orderID)
	if err != nil {
		return nil, err
	}
	refreshCoarseStatus(s.orderRepo, s.db, order)
	return order, nil
}

func (s *orderService) UpdateOrder(orderID int64, req UpdateOrderRequest) (*models.Order, error) {
	order, err := assembleOrder(s.orderRepo, orderID)
	if err != nil {
		return nil, err
	}
	if IsTerminalStatus(order.DerivedStatus) {
		return nil, fmt.Errorf("%w: order %s is %s", ErrPreconditionNotMet, order.OrderNumber, order.DerivedStatus)
	}

	if req.OrderedBy != nil {
		if *req.OrderedBy == "" {
			return nil, fmt.Errorf("%w: ordering party cannot be empty if provided", ErrValidation)
		}
		order.OrderedBy = *req.OrderedBy
	}
	if req.Recipient != nil {
		if *req.Recipient == "" {
			return nil, fmt.Errorf("%w: recipient cannot be empty if provided", ErrValidation)
		}
		order.Recipient = *req.Recipient
	}
	if req.CostCenter != nil {
		order.CostCenter = req.CostCenter
	}
	if req.DeliveryMethod != nil {
		if !isValidDeliveryMethod(*req.DeliveryMethod) {
			return nil, fmt.Errorf("%w: unknown delivery method '%s'", ErrValidation, *req.DeliveryMethod)
		}
		order.DeliveryMethod = *req.DeliveryMethod
	}
	if req.ShippingAddress != nil {
		order.ShippingAddress = req.ShippingAddress
	}
	if req.PickupLocation != nil {
		order.PickupLocation = req.PickupLocation
	}
	if req.Notes != nil {
		order.Notes = req.Notes
	}
	if order.DeliveryMethod == models.DeliveryShipping && (order.ShippingAddress == nil || *order.ShippingAddress == "") {
		return nil, fmt.Errorf("%w: shipping orders require a shipping address", ErrValidation)
	}

	if err := s.orderRepo.UpdateOrderHeader(s.db, order); err != nil {
		return nil, fmt.Errorf("failed to update order header: %w", err)
	}
	return s.GetOrderByID(orderID)
}
