package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"itlager_backend/internal/models"
	"itlager_backend/internal/repositories"
)

// PickItemRequest takes units of an order item from stock. A serial number
// may be bound along with the pick; that requires picking exactly one unit.
type PickItemRequest struct {
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	SerialID   *int64 `json:"serial_id"`
	Technician string `json:"technician" binding:"required"`
}

// UnpickItemRequest is the inverse of a pick.
type UnpickItemRequest struct {
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	SerialID   *int64 `json:"serial_id"`
	Technician string `json:"technician" binding:"required"`
}

// ResolveItemRequest binds a free-text line to a catalog article. The line
// keeps its quantity and procurement state; only the reference changes.
type ResolveItemRequest struct {
	ArticleID int64  `json:"article_id" binding:"required"`
	Actor     string `json:"actor" binding:"required"`
}

// SetupMobilfunkRequest completes the technical setup of a mobile-service
// line.
type SetupMobilfunkRequest struct {
	IMEI        *string `json:"imei"`
	PhoneNumber *string `json:"phone_number"`
	Technician  string  `json:"technician" binding:"required"`
}

// ResetMobilfunkRequest reverts a completed setup.
type ResetMobilfunkRequest struct {
	Technician string `json:"technician" binding:"required"`
}

// FinishTechWorkRequest closes the technical phase of an order.
type FinishTechWorkRequest struct {
	TrackingNumber *string `json:"tracking_number"`
	Technician     string  `json:"technician" binding:"required"`
}

// MarkItemOrderedRequest records external procurement of an order item.
type MarkItemOrderedRequest struct {
	Supplier        *string `json:"supplier"`
	SupplierOrderNo *string `json:"supplier_order_no"`
	Buyer           string  `json:"buyer" binding:"required"`
}

// MarkMobilfunkOrderedRequest records the provider order of a mobilfunk line.
type MarkMobilfunkOrderedRequest struct {
	ProviderOrderNo *string `json:"provider_order_no"`
	Buyer           string  `json:"buyer" binding:"required"`
}

// ReceiveOrderItemRequest books procured units of an order item into stock.
type ReceiveOrderItemRequest struct {
	Quantity  int      `json:"quantity" binding:"required,gt=0"`
	Serials   []string `json:"serials"`
	Performer string   `json:"performer"`
}

// ReceiveFreeTextItemRequest books units of an unresolved free-text line.
type ReceiveFreeTextItemRequest struct {
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Performer string `json:"performer"`
}

// ReceiveMobilfunkRequest marks a mobilfunk line as received from the
// provider, optionally as handed over already.
type ReceiveMobilfunkRequest struct {
	Delivered bool   `json:"delivered"`
	Performer string `json:"performer"`
}

// FulfillmentService drives an order through its lifecycle. Every operation
// runs as one request-scoped transaction; status is never stored as a
// transition table but re-derived from sub-entity state after each step.
type FulfillmentService interface {
	PickItem(orderItemID int64, req PickItemRequest) (*models.OrderItem, *models.Article, error)
	UnpickItem(orderItemID int64, req UnpickItemRequest) (*models.OrderItem, *models.Article, error)
	ResolveItem(orderItemID int64, req ResolveItemRequest) (*models.OrderItem, error)
	SetupMobilfunk(mobilfunkID int64, req SetupMobilfunkRequest) (*models.MobilfunkItem, error)
	ResetMobilfunkSetup(mobilfunkID int64, req ResetMobilfunkRequest) (*models.MobilfunkItem, error)
	FinishTechWork(orderID int64, req FinishTechWorkRequest) (*models.Order, error)
	MarkItemOrdered(orderItemID int64, req MarkItemOrderedRequest) (*models.OrderItem, error)
	MarkMobilfunkOrdered(mobilfunkID int64, req MarkMobilfunkOrderedRequest) (*models.MobilfunkItem, error)
	ReceiveOrderItem(orderItemID int64, req ReceiveOrderItemRequest) (*models.OrderItem, error)
	ReceiveFreeTextItem(orderItemID int64, req ReceiveFreeTextItemRequest) (*models.OrderItem, error)
	ReceiveMobilfunk(mobilfunkID int64, req ReceiveMobilfunkRequest) (*models.MobilfunkItem, error)
	CancelOrder(orderID int64, actor string) (*models.Order, error)
}

type fulfillmentService struct {
	orderRepo   repositories.OrderRepository
	articleRepo repositories.ArticleRepository
	serialRepo  repositories.SerialNumberRepository
	serials     SerialService
	stock       StockService
	db          *sql.DB
}

// NewFulfillmentService creates a new instance of FulfillmentService.
func NewFulfillmentService(
	or repositories.OrderRepository,
	ar repositories.ArticleRepository,
	sr repositories.SerialNumberRepository,
	serials SerialService,
	stock StockService,
	db *sql.DB,
) FulfillmentService {
	return &fulfillmentService{
		orderRepo:   or,
		articleRepo: ar,
		serialRepo:  sr,
		serials:     serials,
		stock:       stock,
		db:          db,
	}
}

// guardOrderOpen rejects operations on cancelled or shipped orders.
func (s *fulfillmentService) guardOrderOpen(executor repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(executor, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	if order.Status == StatusCancelled {
		return nil, fmt.Errorf("%w: order %s is cancelled", ErrPreconditionNotMet, order.OrderNumber)
	}
	if order.ShippedAt != nil {
		return nil, fmt.Errorf("%w: order %s has already been shipped or picked up", ErrPreconditionNotMet, order.OrderNumber)
	}
	return order, nil
}

func (s *fulfillmentService) getOrderItem(executor repositories.SQLExecutor, id int64) (*models.OrderItem, error) {
	item, err := s.orderRepo.GetOrderItemByID(executor, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrOrderItemNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch order item: %w", err)
	}
	return item, nil
}

func (s *fulfillmentService) getMobilfunkItem(executor repositories.SQLExecutor, id int64) (*models.MobilfunkItem, error) {
	item, err := s.orderRepo.GetMobilfunkItemByID(executor, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrMobilfunkNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch mobilfunk item: %w", err)
	}
	return item, nil
}

// refreshOrder recomputes the derived status after a mutation and realigns
// the stored filter column.
func (s *fulfillmentService) refreshOrder(orderID int64) {
	if order, err := assembleOrder(s.orderRepo, orderID); err == nil {
		refreshCoarseStatus(s.orderRepo, s.db, order)
	}
}

func (s *fulfillmentService) PickItem(orderItemID int64, req PickItemRequest) (*models.OrderItem, *models.Article, error) {
	if req.Technician == "" {
		return nil, nil, fmt.Errorf("%w: technician is required for picking", ErrValidation)
	}
	if req.Quantity <= 0 {
		return nil, nil, fmt.Errorf("%w: pick quantity must be positive", ErrValidation)
	}
	if req.SerialID != nil && req.Quantity != 1 {
		return nil, nil, fmt.Errorf("%w: a serial number binds exactly one unit", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.getOrderItem(tx, orderItemID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.guardOrderOpen(tx, item.OrderID); err != nil {
		return nil, nil, err
	}
	articleID, resolved := item.Line.Resolved()
	if !resolved {
		return nil, nil, fmt.Errorf("%w: free-text line must be resolved to an article before picking", ErrPreconditionNotMet)
	}
	if item.PickedQty+req.Quantity > item.Quantity {
		return nil, nil, fmt.Errorf("%w: picking %d would exceed ordered quantity (%d of %d picked)",
			ErrPreconditionNotMet, req.Quantity, item.PickedQty, item.Quantity)
	}

	_, _, err = s.stock.ApplyMovementTx(tx, CreateMovementRequest{
		ArticleID: articleID,
		Kind:      models.MovementOut,
		Quantity:  req.Quantity,
		Reason:    fmt.Sprintf("Pick for order item %d", orderItemID),
		Actor:     req.Technician,
	})
	if err != nil {
		return nil, nil, err
	}

	if req.SerialID != nil {
		serial, err := s.serialRepo.GetSerialByID(tx, *req.SerialID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil, fmt.Errorf("%w: ID %d", ErrSerialNotFound, *req.SerialID)
			}
			return nil, nil, fmt.Errorf("failed to fetch serial for pick: %w", err)
		}
		if serial.ArticleID != articleID {
			return nil, nil, fmt.Errorf("%w: serial '%s' belongs to a different article", ErrSerialNumberUnavailable, serial.Serial)
		}
		if err := s.serialRepo.BindToOrderItem(tx, *req.SerialID, orderItemID, models.SerialReserved); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil, fmt.Errorf("%w: serial '%s' is not in stock", ErrSerialNumberUnavailable, serial.Serial)
			}
			return nil, nil, fmt.Errorf("failed to bind serial: %w", err)
		}
	}

	if err := s.orderRepo.UpdateItemPick(tx, orderItemID, item.PickedQty+req.Quantity, &req.Technician); err != nil {
		return nil, nil, fmt.Errorf("failed to update pick state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit pick transaction: %w", err)
	}
	s.refreshOrder(item.OrderID)

	item, err = s.getOrderItem(nil, orderItemID)
	if err != nil {
		return nil, nil, err
	}
	article, err := s.articleRepo.GetArticleByID(nil, articleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-read article after pick: %w", err)
	}
	return item, article, nil
}

func (s *fulfillmentService) UnpickItem(orderItemID int64, req UnpickItemRequest) (*models.OrderItem, *models.Article, error) {
	if req.Technician == "" {
		return nil, nil, fmt.Errorf("%w: technician is required for unpicking", ErrValidation)
	}
	if req.Quantity <= 0 {
		return nil, nil, fmt.Errorf("%w: unpick quantity must be positive", ErrValidation)
	}
	if req.SerialID != nil && req.Quantity != 1 {
		return nil, nil, fmt.Errorf("%w: a serial number binds exactly one unit", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.getOrderItem(tx, orderItemID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.guardOrderOpen(tx, item.OrderID); err != nil {
		return nil, nil, err
	}
	articleID, resolved := item.Line.Resolved()
	if !resolved {
		return nil, nil, fmt.Errorf("%w: free-text line has no pick state to revert", ErrPreconditionNotMet)
	}
	if item.PickedQty < req.Quantity {
		return nil, nil, fmt.Errorf("%w: cannot unpick %d, only %d picked", ErrPreconditionNotMet, req.Quantity, item.PickedQty)
	}

	if req.SerialID != nil {
		serial, err := s.serialRepo.GetSerialByID(tx, *req.SerialID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil, fmt.Errorf("%w: ID %d", ErrSerialNotFound, *req.SerialID)
			}
			return nil, nil, fmt.Errorf("failed to fetch serial for unpick: %w", err)
		}
		if serial.OrderItemID == nil || *serial.OrderItemID != orderItemID {
			return nil, nil, fmt.Errorf("%w: serial '%s' is not bound to this order item", ErrPreconditionNotMet, serial.Serial)
		}
		if err := s.serialRepo.ReleaseFromOrderItem(tx, *req.SerialID); err != nil {
			return nil, nil, fmt.Errorf("failed to release serial: %w", err)
		}
	}

	_, _, err = s.stock.ApplyMovementTx(tx, CreateMovementRequest{
		ArticleID: articleID,
		Kind:      models.MovementIn,
		Quantity:  req.Quantity,
		Reason:    fmt.Sprintf("Unpick for order item %d", orderItemID),
		Actor:     req.Technician,
	})
	if err != nil {
		return nil, nil, err
	}

	newPicked := item.PickedQty - req.Quantity
	pickedBy := &req.Technician
	if newPicked == 0 {
		pickedBy = nil
	}
	if err := s.orderRepo.UpdateItemPick(tx, orderItemID, newPicked, pickedBy); err != nil {
		return nil, nil, fmt.Errorf("failed to update pick state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit unpick transaction: %w", err)
	}
	s.refreshOrder(item.OrderID)

	item, err = s.getOrderItem(nil, orderItemID)
	if err != nil {
		return nil, nil, err
	}
	article, err := s.articleRepo.GetArticleByID(nil, articleID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-read article after unpick: %w", err)
	}
	return item, article, nil
}

func (s *fulfillmentService) ResolveItem(orderItemID int64, req ResolveItemRequest) (*models.OrderItem, error) {
	if req.Actor == "" {
		return nil, fmt.Errorf("%w: actor is required for resolving a line", ErrValidation)
	}
	if req.ArticleID <= 0 {
		return nil, fmt.Errorf("%w: article ID is required", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.getOrderItem(tx, orderItemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guardOrderOpen(tx, item.OrderID); err != nil {
		return nil, err
	}
	if !item.Line.IsFreeText() {
		return nil, fmt.Errorf("%w: item %d already references a catalog article", ErrPreconditionNotMet, orderItemID)
	}

	article, err := s.articleRepo.GetArticleByID(tx, req.ArticleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrArticleNotFound, req.ArticleID)
		}
		return nil, fmt.Errorf("failed to fetch article for resolution: %w", err)
	}
	if !article.IsActive {
		return nil, fmt.Errorf("%w: article %s is inactive", ErrPreconditionNotMet, article.SKU)
	}

	if err := s.orderRepo.ResolveItemLine(tx, orderItemID, req.ArticleID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: item %d was resolved concurrently", ErrPreconditionNotMet, orderItemID)
		}
		return nil, fmt.Errorf("failed to resolve line: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit line resolution: %w", err)
	}
	s.refreshOrder(item.OrderID)
	return s.getOrderItem(nil, orderItemID)
}

func (s *fulfillmentService) SetupMobilfunk(mobilfunkID int64, req SetupMobilfunkRequest) (*models.MobilfunkItem, error) {
	if req.Technician == "" {
		return nil, fmt.Errorf("%w: technician is required for mobilfunk setup", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.getMobilfunkItem(tx, mobilfunkID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guardOrderOpen(tx, item.OrderID); err != nil {
		return nil, err
	}
	if item.SetupDone {
		return nil, fmt.Errorf("%w: mobilfunk line %d is already set up", ErrPreconditionNotMet, mobilfunkID)
	}

	if err := s.orderRepo.UpdateMobilfunkSetup(tx, mobilfunkID, true, &req.Technician, req.IMEI, req.PhoneNumber); err != nil {
		return nil, fmt.Errorf("failed to record mobilfunk setup: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit mobilfunk setup: %w", err)
	}
	s.refreshOrder(item.OrderID)
	return s.getMobilfunkItem(nil, mobilfunkID)
}

func (s *fulfillmentService) ResetMobilfunkSetup(mobilfunkID int64, req ResetMobilfunkRequest) (*models.MobilfunkItem, error) {
	if req.Technician == "" {
		return nil, fmt.Errorf("%w: technician is required for resetting mobilfunk setup", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.getMobilfunkItem(tx, mobilfunkID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guardOrderOpen(tx, item.OrderID); err != nil {
		return nil, err
	}
	if !item.SetupDone {
		return nil, fmt.Errorf("%w: mobilfunk line %d is not set up", ErrPreconditionNotMet, mobilfunkID)
	}

	if err := s.orderRepo.UpdateMobilfunkSetup(tx, mobilfunkID, false, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to reset mobilfunk setup: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit mobilfunk reset: %w", err)
	}
	s.refreshOrder(item.OrderID)
	return s.getMobilfunkItem(nil, mobilfunkID)
}

func (s *fulfillmentService) FinishTechWork(orderID int64, req FinishTechWorkRequest) (*models.Order, error) {
	if req.Technician == "" {
		return nil, fmt.Errorf("%w: technician is required for finishing tech work", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.guardOrderOpen(tx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orderRepo.GetOrderItemsByOrderID(tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}
	mobilfunk, err := s.orderRepo.GetMobilfunkItemsByOrderID(tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mobilfunk items: %w", err)
	}
	for i := range items {
		if items[i].PickedQty < items[i].Quantity {
			return nil, fmt.Errorf("%w: item %d is not fully picked (%d of %d)",
				ErrPreconditionNotMet, items[i].ID, items[i].PickedQty, items[i].Quantity)
		}
	}
	for i := range mobilfunk {
		if !mobilfunk[i].SetupDone {
			return nil, fmt.Errorf("%w: mobilfunk line %d is not set up", ErrPreconditionNotMet, mobilfunk[i].ID)
		}
	}

	now := time.Now()
	techDoneAt := &now
	var shippedAt *time.Time
	var trackingNumber *string
	if req.TrackingNumber != nil && *req.TrackingNumber != "" {
		trackingNumber = req.TrackingNumber
		shippedAt = &now
	}
	// A pickup order is handed over the moment tech work ends.
	if order.DeliveryMethod == models.DeliveryPickup {
		shippedAt = &now
	}

	if err := s.orderRepo.SetMilestones(tx, orderID, techDoneAt, shippedAt, trackingNumber); err != nil {
		return nil, fmt.Errorf("failed to set order milestones: %w", err)
	}
	if shippedAt != nil {
		if err := s.serialRepo.MarkDeployedByOrder(tx, orderID); err != nil {
			return nil, fmt.Errorf("failed to mark serials deployed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit finish-tech transaction: %w", err)
	}

	full, err := assembleOrder(s.orderRepo, orderID)
	if err != nil {
		return nil, err
	}
	refreshCoarseStatus(s.orderRepo, s.db, full)
	return full, nil
}

func (s *fulfillmentService) MarkItemOrdered(orderItemID int64, req MarkItemOrderedRequest) (*models.OrderItem, error) {
	if req.Buyer == "" {
		return nil, fmt.Errorf("%w: buyer is required for marking an item ordered", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.getOrderItem(tx, orderItemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guardOrderOpen(tx, item.OrderID); err != nil {
		return nil, err
	}
	if item.OrderedAt != nil {
		return nil, fmt.Errorf("%w: item %d is already marked ordered", ErrPreconditionNotMet, orderItemID)
	}

	articleID, resolved := item.Line.Resolved()
	if resolved && (req.Supplier == nil || *req.Supplier == "") {
		return nil, fmt.Errorf("%w: catalog items require a supplier", ErrValidation)
	}

	if err := s.orderRepo.UpdateItemProcurement(tx, orderItemID, time.Now(), req.Buyer, req.Supplier, req.SupplierOrderNo); err != nil {
		return nil, fmt.Errorf("failed to record item procurement: %w", err)
	}
	if resolved {
		outstanding := item.Quantity - item.ReceivedQty
		if outstanding > 0 {
			if err := s.articleRepo.AdjustIncomingStock(tx, articleID, outstanding); err != nil {
				return nil, fmt.Errorf("failed to adjust incoming stock: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item procurement: %w", err)
	}
	s.refreshOrder(item.OrderID)
	return s.getOrderItem(nil, orderItemID)
}

func (s *fulfillmentService) MarkMobilfunkOrdered(mobilfunkID int64, req MarkMobilfunkOrderedRequest) (*models.MobilfunkItem, error) {
	if req.Buyer == "" {
		return nil, fmt.Errorf("%w: buyer is required for marking a mobilfunk line ordered", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.getMobilfunkItem(tx, mobilfunkID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guardOrderOpen(tx, item.OrderID); err != nil {
		return nil, err
	}
	if item.OrderedAt != nil {
		return nil, fmt.Errorf("%w: mobilfunk line %d is already marked ordered", ErrPreconditionNotMet, mobilfunkID)
	}

	if err := s.orderRepo.UpdateMobilfunkProcurement(tx, mobilfunkID, time.Now(), req.Buyer, req.ProviderOrderNo); err != nil {
		return nil, fmt.Errorf("failed to record mobilfunk procurement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit mobilfunk procurement: %w", err)
	}
	s.refreshOrder(item.OrderID)
	return s.getMobilfunkItem(nil, mobilfunkID)
}

func (s *fulfillmentService) ReceiveOrderItem(orderItemID int64, req ReceiveOrderItemRequest) (*models.OrderItem, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: received quantity must be positive", ErrValidation)
	}
	performer := req.Performer
	if performer == "" {
		performer = "receiving"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.getOrderItem(tx, orderItemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guardOrderOpen(tx, item.OrderID); err != nil {
		return nil, err
	}
	articleID, resolved := item.Line.Resolved()
	if !resolved {
		return nil, fmt.Errorf("%w: use the free-text receipt for unresolved lines", ErrPreconditionNotMet)
	}
	if item.ReceivedQty+req.Quantity > item.Quantity {
		return nil, fmt.Errorf("%w: receiving %d would exceed ordered quantity (%d of %d received)",
			ErrPreconditionNotMet, req.Quantity, item.ReceivedQty, item.Quantity)
	}

	article, err := s.articleRepo.GetArticleByID(tx, articleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrArticleNotFound, articleID)
		}
		return nil, fmt.Errorf("failed to fetch article for receipt: %w", err)
	}
	if article.IsSerialized {
		if len(req.Serials) != req.Quantity {
			return nil, fmt.Errorf("%w: article %s is serialized; expected %d serials, got %d",
				ErrValidation, article.SKU, req.Quantity, len(req.Serials))
		}
		if _, err := s.serials.ReceiveTx(tx, articleID, req.Serials, false, nil); err != nil {
			return nil, err
		}
	} else if len(req.Serials) > 0 {
		return nil, fmt.Errorf("%w: article %s does not track serial numbers", ErrValidation, article.SKU)
	}

	// Receiving into an order and receiving into general stock share the
	// same ledger mutation.
	_, _, err = s.stock.ApplyMovementTx(tx, CreateMovementRequest{
		ArticleID: articleID,
		Kind:      models.MovementIn,
		Quantity:  req.Quantity,
		Reason:    fmt.Sprintf("Receipt for order item %d", orderItemID),
		Actor:     performer,
	})
	if err != nil {
		return nil, err
	}
	if item.OrderedAt != nil {
		if err := s.articleRepo.AdjustIncomingStock(tx, articleID, -req.Quantity); err != nil {
			return nil, fmt.Errorf("failed to adjust incoming stock: %w", err)
		}
	}
	if err := s.orderRepo.UpdateItemReceipt(tx, orderItemID, item.ReceivedQty+req.Quantity, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update receipt state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item receipt: %w", err)
	}
	s.refreshOrder(item.OrderID)
	return s.getOrderItem(nil, orderItemID)
}

func (s *fulfillmentService) ReceiveFreeTextItem(orderItemID int64, req ReceiveFreeTextItemRequest) (*models.OrderItem, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: received quantity must be positive", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.getOrderItem(tx, orderItemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guardOrderOpen(tx, item.OrderID); err != nil {
		return nil, err
	}
	if !item.Line.IsFreeText() {
		return nil, fmt.Errorf("%w: item %d references a catalog article", ErrPreconditionNotMet, orderItemID)
	}
	if item.ReceivedQty+req.Quantity > item.Quantity {
		return nil, fmt.Errorf("%w: receiving %d would exceed ordered quantity (%d of %d received)",
			ErrPreconditionNotMet, req.Quantity, item.ReceivedQty, item.Quantity)
	}

	// No ledger movement: a free-text line has no article whose counter
	// could move. The receipt is recorded on the line only.
	if err := s.orderRepo.UpdateItemReceipt(tx, orderItemID, item.ReceivedQty+req.Quantity, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update receipt state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit free-text receipt: %w", err)
	}
	s.refreshOrder(item.OrderID)
	return s.getOrderItem(nil, orderItemID)
}

func (s *fulfillmentService) ReceiveMobilfunk(mobilfunkID int64, req ReceiveMobilfunkRequest) (*models.MobilfunkItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.getMobilfunkItem(tx, mobilfunkID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guardOrderOpen(tx, item.OrderID); err != nil {
		return nil, err
	}
	if item.Received {
		return nil, fmt.Errorf("%w: mobilfunk line %d is already received", ErrPreconditionNotMet, mobilfunkID)
	}

	if err := s.orderRepo.UpdateMobilfunkReceipt(tx, mobilfunkID, true, req.Delivered); err != nil {
		return nil, fmt.Errorf("failed to record mobilfunk receipt: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit mobilfunk receipt: %w", err)
	}
	s.refreshOrder(item.OrderID)
	return s.getMobilfunkItem(nil, mobilfunkID)
}

func (s *fulfillmentService) CancelOrder(orderID int64, actor string) (*models.Order, error) {
	if actor == "" {
		return nil, fmt.Errorf("%w: actor is required for cancelling an order", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderByID(tx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to fetch order for cancellation: %w", err)
	}
	if order.Status == StatusCancelled {
		return assembleOrder(s.orderRepo, orderID)
	}
	if order.ShippedAt != nil || (order.TrackingNumber != nil && *order.TrackingNumber != "") {
		return nil, fmt.Errorf("%w: order %s has already been shipped or picked up", ErrPreconditionNotMet, order.OrderNumber)
	}

	// Cancellation is a terminal flag, not a ledger rollback: movements
	// already issued stay untouched.
	if err := s.orderRepo.UpdateOrderStatus(tx, orderID, StatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}
	return assembleOrder(s.orderRepo, orderID)
}
