package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"itlager_backend/internal/models"
)

// OrderRepository defines the interface for order, order item and mobilfunk
// line persistence. Field-group updates are split per workflow step so each
// fulfillment operation touches only the columns it owns.
type OrderRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	GetOrderByID(executor SQLExecutor, id int64) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	UpdateOrderHeader(executor SQLExecutor, order *models.Order) error
	UpdateOrderStatus(executor SQLExecutor, orderID int64, status string) error
	SetMilestones(executor SQLExecutor, orderID int64, techDoneAt, shippedAt *time.Time, trackingNumber *string) error

	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error)
	GetOrderItemByID(executor SQLExecutor, id int64) (*models.OrderItem, error)
	GetOrderItemsByOrderID(executor SQLExecutor, orderID int64) ([]models.OrderItem, error)
	UpdateItemPick(executor SQLExecutor, itemID int64, pickedQty int, pickedBy *string) error
	ResolveItemLine(executor SQLExecutor, itemID, articleID int64) error
	UpdateItemProcurement(executor SQLExecutor, itemID int64, orderedAt time.Time, orderedBy string, supplier, supplierOrderNo *string) error
	UpdateItemReceipt(executor SQLExecutor, itemID int64, receivedQty int, receivedAt time.Time) error

	CreateMobilfunkItem(executor SQLExecutor, item *models.MobilfunkItem) (int64, error)
	GetMobilfunkItemByID(executor SQLExecutor, id int64) (*models.MobilfunkItem, error)
	GetMobilfunkItemsByOrderID(executor SQLExecutor, orderID int64) ([]models.MobilfunkItem, error)
	UpdateMobilfunkSetup(executor SQLExecutor, id int64, setupDone bool, setupBy, imei, phoneNumber *string) error
	UpdateMobilfunkProcurement(executor SQLExecutor, id int64, orderedAt time.Time, orderedBy string, providerOrderNo *string) error
	UpdateMobilfunkReceipt(executor SQLExecutor, id int64, received, delivered bool) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, ordered_by, recipient, cost_center, delivery_method,
	shipping_address, pickup_location, tech_done_at, shipped_at, tracking_number, notes,
	status, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }, o *models.Order) error {
	return row.Scan(
		&o.ID, &o.OrderNumber, &o.OrderedBy, &o.Recipient, &o.CostCenter, &o.DeliveryMethod,
		&o.ShippingAddress, &o.PickupLocation, &o.TechDoneAt, &o.ShippedAt, &o.TrackingNumber,
		&o.Notes, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	// Human-readable sequential order number, drawn from a dedicated
	// sequence so concurrent creations never collide.
	var seq int64
	if err := executor.QueryRow(`SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("%w: fetching next order number: %v", ErrDatabaseError, err)
	}
	order.OrderNumber = fmt.Sprintf("BST-%06d", seq)

	query := `INSERT INTO orders
	          (order_number, ordered_by, recipient, cost_center, delivery_method, shipping_address,
	           pickup_location, notes, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id, created_at, updated_at`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		order.OrderNumber, order.OrderedBy, order.Recipient, order.CostCenter,
		order.DeliveryMethod, order.ShippingAddress, order.PickupLocation,
		order.Notes, order.Status, currentTime, currentTime,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

func (r *orderRepository) GetOrderByID(executor SQLExecutor, id int64) (*models.Order, error) {
	if executor == nil {
		executor = r.db
	}
	order := &models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	err := scanOrder(executor.QueryRow(query, id), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, id, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + orderColumns + `, COUNT(*) OVER() AS total_count FROM orders`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.CostCenter != nil && *filters.CostCenter != "" {
		conditions = append(conditions, fmt.Sprintf("cost_center = $%d", argCount))
		args = append(args, *filters.CostCenter)
		argCount++
	}
	if filters.DeliveryMethod != nil && *filters.DeliveryMethod != "" {
		conditions = append(conditions, fmt.Sprintf("delivery_method = $%d", argCount))
		args = append(args, *filters.DeliveryMethod)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.OrderedBy, &o.Recipient, &o.CostCenter, &o.DeliveryMethod,
			&o.ShippingAddress, &o.PickupLocation, &o.TechDoneAt, &o.ShippedAt, &o.TrackingNumber,
			&o.Notes, &o.Status, &o.CreatedAt, &o.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating orders: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

func (r *orderRepository) UpdateOrderHeader(executor SQLExecutor, order *models.Order) error {
	query := `UPDATE orders SET
	          ordered_by = $1, recipient = $2, cost_center = $3, delivery_method = $4,
	          shipping_address = $5, pickup_location = $6, notes = $7, updated_at = $8
	          WHERE id = $9`
	result, err := executor.Exec(query,
		order.OrderedBy, order.Recipient, order.CostCenter, order.DeliveryMethod,
		order.ShippingAddress, order.PickupLocation, order.Notes, time.Now(), order.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating order header %d: %v", ErrDatabaseError, order.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID int64, status string) error {
	result, err := executor.Exec(`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("%w: updating status of order %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) SetMilestones(executor SQLExecutor, orderID int64, techDoneAt, shippedAt *time.Time, trackingNumber *string) error {
	query := `UPDATE orders SET
	          tech_done_at = COALESCE($1, tech_done_at),
	          shipped_at = COALESCE($2, shipped_at),
	          tracking_number = COALESCE($3, tracking_number),
	          updated_at = $4
	          WHERE id = $5`
	result, err := executor.Exec(query, techDoneAt, shippedAt, trackingNumber, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("%w: setting milestones of order %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Order items ---

const orderItemColumns = `id, order_id, line_kind, article_id, free_text, quantity, picked_qty, picked_by,
	needs_ordering, ordered_at, ordered_by, supplier, supplier_order_no, received_qty, received_at,
	notes, created_at, updated_at`

func scanOrderItem(row interface{ Scan(...interface{}) error }, item *models.OrderItem) error {
	return row.Scan(
		&item.ID, &item.OrderID, &item.Line.Kind, &item.Line.ArticleID, &item.Line.FreeText,
		&item.Quantity, &item.PickedQty, &item.PickedBy, &item.NeedsOrdering,
		&item.OrderedAt, &item.OrderedBy, &item.Supplier, &item.SupplierOrderNo,
		&item.ReceivedQty, &item.ReceivedAt, &item.Notes, &item.CreatedAt, &item.UpdatedAt,
	)
}

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error) {
	query := `INSERT INTO order_items
	          (order_id, line_kind, article_id, free_text, quantity, needs_ordering, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		item.OrderID, item.Line.Kind, item.Line.ArticleID, item.Line.FreeText,
		item.Quantity, item.NeedsOrdering, item.Notes, currentTime, currentTime,
	).Scan(&item.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *orderRepository) GetOrderItemByID(executor SQLExecutor, id int64) (*models.OrderItem, error) {
	if executor == nil {
		executor = r.db
	}
	item := &models.OrderItem{}
	query := `SELECT ` + orderItemColumns + ` FROM order_items WHERE id = $1`
	err := scanOrderItem(executor.QueryRow(query, id), item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order item by ID %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

func (r *orderRepository) GetOrderItemsByOrderID(executor SQLExecutor, orderID int64) ([]models.OrderItem, error) {
	if executor == nil {
		executor = r.db
	}
	query := `SELECT
	    oi.id, oi.order_id, oi.line_kind, oi.article_id, oi.free_text, oi.quantity,
	    oi.picked_qty, oi.picked_by, oi.needs_ordering, oi.ordered_at, oi.ordered_by,
	    oi.supplier, oi.supplier_order_no, oi.received_qty, oi.received_at, oi.notes,
	    oi.created_at, oi.updated_at,
	    a.sku, a.name, a.unit, a.is_serialized, a.current_stock
	  FROM order_items oi
	  LEFT JOIN articles a ON oi.article_id = a.id
	  WHERE oi.order_id = $1
	  ORDER BY oi.id`
	rows, err := executor.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting items for order %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		var sku, name, unit sql.NullString
		var isSerialized sql.NullBool
		var currentStock sql.NullInt64
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.Line.Kind, &item.Line.ArticleID, &item.Line.FreeText,
			&item.Quantity, &item.PickedQty, &item.PickedBy, &item.NeedsOrdering,
			&item.OrderedAt, &item.OrderedBy, &item.Supplier, &item.SupplierOrderNo,
			&item.ReceivedQty, &item.ReceivedAt, &item.Notes, &item.CreatedAt, &item.UpdatedAt,
			&sku, &name, &unit, &isSerialized, &currentStock,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning item of order %d: %v", ErrDatabaseError, orderID, err)
		}
		if item.Line.ArticleID != nil && sku.Valid {
			item.Article = &models.Article{
				ID:           *item.Line.ArticleID,
				SKU:          sku.String,
				Name:         name.String,
				Unit:         unit.String,
				IsSerialized: isSerialized.Bool,
				CurrentStock: int(currentStock.Int64),
			}
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating items of order %d: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

func (r *orderRepository) UpdateItemPick(executor SQLExecutor, itemID int64, pickedQty int, pickedBy *string) error {
	result, err := executor.Exec(`UPDATE order_items SET picked_qty = $1, picked_by = $2, updated_at = $3 WHERE id = $4`,
		pickedQty, pickedBy, time.Now(), itemID)
	if err != nil {
		return fmt.Errorf("%w: updating pick state of order item %d: %v", ErrDatabaseError, itemID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) ResolveItemLine(executor SQLExecutor, itemID, articleID int64) error {
	// Guarded on the free-text kind so a resolved line cannot be re-pointed
	// at a different article.
	query := `UPDATE order_items SET
	          line_kind = $1, article_id = $2, free_text = NULL, updated_at = $3
	          WHERE id = $4 AND line_kind = $5`
	result, err := executor.Exec(query, models.LineKindArticle, articleID, time.Now(), itemID, models.LineKindFreeText)
	if err != nil {
		return fmt.Errorf("%w: resolving line of order item %d: %v", ErrDatabaseError, itemID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdateItemProcurement(executor SQLExecutor, itemID int64, orderedAt time.Time, orderedBy string, supplier, supplierOrderNo *string) error {
	query := `UPDATE order_items SET
	          ordered_at = $1, ordered_by = $2, supplier = $3, supplier_order_no = $4,
	          needs_ordering = TRUE, updated_at = $5
	          WHERE id = $6`
	result, err := executor.Exec(query, orderedAt, orderedBy, supplier, supplierOrderNo, time.Now(), itemID)
	if err != nil {
		return fmt.Errorf("%w: updating procurement of order item %d: %v", ErrDatabaseError, itemID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdateItemReceipt(executor SQLExecutor, itemID int64, receivedQty int, receivedAt time.Time) error {
	result, err := executor.Exec(`UPDATE order_items SET received_qty = $1, received_at = $2, updated_at = $3 WHERE id = $4`,
		receivedQty, receivedAt, time.Now(), itemID)
	if err != nil {
		return fmt.Errorf("%w: updating receipt of order item %d: %v", ErrDatabaseError, itemID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Mobilfunk items ---

const mobilfunkColumns = `id, order_id, kind, setup_done, setup_by, ordered_at, ordered_by,
	provider_order_no, received, delivered, imei, phone_number, created_at, updated_at`

func scanMobilfunkItem(row interface{ Scan(...interface{}) error }, item *models.MobilfunkItem) error {
	return row.Scan(
		&item.ID, &item.OrderID, &item.Kind, &item.SetupDone, &item.SetupBy,
		&item.OrderedAt, &item.OrderedBy, &item.ProviderOrderNo, &item.Received,
		&item.Delivered, &item.IMEI, &item.PhoneNumber, &item.CreatedAt, &item.UpdatedAt,
	)
}

func (r *orderRepository) CreateMobilfunkItem(executor SQLExecutor, item *models.MobilfunkItem) (int64, error) {
	query := `INSERT INTO mobilfunk_items (order_id, kind, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query, item.OrderID, item.Kind, currentTime, currentTime).Scan(&item.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating mobilfunk item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *orderRepository) GetMobilfunkItemByID(executor SQLExecutor, id int64) (*models.MobilfunkItem, error) {
	if executor == nil {
		executor = r.db
	}
	item := &models.MobilfunkItem{}
	query := `SELECT ` + mobilfunkColumns + ` FROM mobilfunk_items WHERE id = $1`
	err := scanMobilfunkItem(executor.QueryRow(query, id), item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting mobilfunk item by ID %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

func (r *orderRepository) GetMobilfunkItemsByOrderID(executor SQLExecutor, orderID int64) ([]models.MobilfunkItem, error) {
	if executor == nil {
		executor = r.db
	}
	query := `SELECT ` + mobilfunkColumns + ` FROM mobilfunk_items WHERE order_id = $1 ORDER BY id`
	rows, err := executor.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting mobilfunk items for order %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	items := []models.MobilfunkItem{}
	for rows.Next() {
		var item models.MobilfunkItem
		if err := scanMobilfunkItem(rows, &item); err != nil {
			return nil, fmt.Errorf("%w: scanning mobilfunk item of order %d: %v", ErrDatabaseError, orderID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating mobilfunk items of order %d: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

func (r *orderRepository) UpdateMobilfunkSetup(executor SQLExecutor, id int64, setupDone bool, setupBy, imei, phoneNumber *string) error {
	query := `UPDATE mobilfunk_items SET
	          setup_done = $1, setup_by = $2, imei = $3, phone_number = $4, updated_at = $5
	          WHERE id = $6`
	result, err := executor.Exec(query, setupDone, setupBy, imei, phoneNumber, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating setup of mobilfunk item %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdateMobilfunkProcurement(executor SQLExecutor, id int64, orderedAt time.Time, orderedBy string, providerOrderNo *string) error {
	query := `UPDATE mobilfunk_items SET
	          ordered_at = $1, ordered_by = $2, provider_order_no = $3, updated_at = $4
	          WHERE id = $5`
	result, err := executor.Exec(query, orderedAt, orderedBy, providerOrderNo, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating procurement of mobilfunk item %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdateMobilfunkReceipt(executor SQLExecutor, id int64, received, delivered bool) error {
	result, err := executor.Exec(`UPDATE mobilfunk_items SET received = $1, delivered = $2, updated_at = $3 WHERE id = $4`,
		received, delivered, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating receipt of mobilfunk item %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
