package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"itlager_backend/internal/models"

	"github.com/lib/pq"
)

// SerialNumberRepository defines the interface for serialized-unit
// persistence. Binding updates are guarded on the current status so a
// serial can never be attached to two order items.
type SerialNumberRepository interface {
	CreateSerial(executor SQLExecutor, serial *models.SerialNumber) (int64, error)
	GetSerialByID(executor SQLExecutor, id int64) (*models.SerialNumber, error)
	GetSerials(filters models.SerialFilters) ([]models.SerialNumber, int, error)
	GetSerialsByOrderItem(executor SQLExecutor, orderItemID int64) ([]models.SerialNumber, error)

	// BindToOrderItem transitions IN_STOCK -> toStatus and attaches the
	// serial to the order item in one guarded statement. Returns
	// ErrNotFound when the serial is missing or not currently IN_STOCK.
	BindToOrderItem(executor SQLExecutor, serialID, orderItemID int64, toStatus string) error
	// ReleaseFromOrderItem is the inverse: detaches the serial and puts it
	// back to IN_STOCK.
	ReleaseFromOrderItem(executor SQLExecutor, serialID int64) error
	UpdateSerialStatus(executor SQLExecutor, serialID int64, status string) error
	UpdateSerialDetails(executor SQLExecutor, serialID int64, location, notes *string, isUsed *bool) error
	MarkDeployedByOrder(executor SQLExecutor, orderID int64) error
}

type serialNumberRepository struct {
	db *sql.DB
}

// NewSerialNumberRepository creates a new instance of SerialNumberRepository.
func NewSerialNumberRepository(db *sql.DB) SerialNumberRepository {
	return &serialNumberRepository{db: db}
}

const serialColumns = `id, article_id, serial, status, is_used, location, notes, order_item_id, created_at, updated_at`

func scanSerial(row interface{ Scan(...interface{}) error }, s *models.SerialNumber) error {
	return row.Scan(
		&s.ID, &s.ArticleID, &s.Serial, &s.Status, &s.IsUsed,
		&s.Location, &s.Notes, &s.OrderItemID, &s.CreatedAt, &s.UpdatedAt,
	)
}

func (r *serialNumberRepository) CreateSerial(executor SQLExecutor, serial *models.SerialNumber) (int64, error) {
	query := `INSERT INTO serial_numbers
	          (article_id, serial, status, is_used, location, notes, order_item_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`
	currentTime := time.Now()
	if serial.Status == "" {
		serial.Status = models.SerialInStock
	}
	err := executor.QueryRow(query,
		serial.ArticleID, serial.Serial, serial.Status, serial.IsUsed,
		serial.Location, serial.Notes, serial.OrderItemID, currentTime, currentTime,
	).Scan(&serial.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: serial number '%s' already exists (constraint: %s)", ErrDuplicateKey, serial.Serial, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating serial number: %v", ErrDatabaseError, err)
	}
	return serial.ID, nil
}

func (r *serialNumberRepository) GetSerialByID(executor SQLExecutor, id int64) (*models.SerialNumber, error) {
	if executor == nil {
		executor = r.db
	}
	serial := &models.SerialNumber{}
	query := `SELECT ` + serialColumns + ` FROM serial_numbers WHERE id = $1`
	err := scanSerial(executor.QueryRow(query, id), serial)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting serial number by ID %d: %v", ErrDatabaseError, id, err)
	}
	return serial, nil
}

func (r *serialNumberRepository) GetSerials(filters models.SerialFilters) ([]models.SerialNumber, int, error) {
	serials := []models.SerialNumber{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    sn.id, sn.article_id, sn.serial, sn.status, sn.is_used, sn.location, sn.notes,
	    sn.order_item_id, sn.created_at, sn.updated_at,
	    a.sku AS article_sku, a.name AS article_name,
	    COUNT(*) OVER() AS total_count
	  FROM serial_numbers sn
	  JOIN articles a ON sn.article_id = a.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.ArticleID != nil {
		conditions = append(conditions, fmt.Sprintf("sn.article_id = $%d", argCount))
		args = append(args, *filters.ArticleID)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("sn.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("sn.serial ILIKE $%d", argCount))
		args = append(args, "%"+*filters.Search+"%")
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY sn.serial")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting serial numbers: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.SerialNumber
		var article models.Article
		if err := rows.Scan(
			&s.ID, &s.ArticleID, &s.Serial, &s.Status, &s.IsUsed, &s.Location, &s.Notes,
			&s.OrderItemID, &s.CreatedAt, &s.UpdatedAt,
			&article.SKU, &article.Name,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning serial number: %v", ErrDatabaseError, err)
		}
		article.ID = s.ArticleID
		s.Article = &article
		serials = append(serials, s)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating serial numbers: %v", ErrDatabaseError, err)
	}
	return serials, totalCount, nil
}

func (r *serialNumberRepository) GetSerialsByOrderItem(executor SQLExecutor, orderItemID int64) ([]models.SerialNumber, error) {
	if executor == nil {
		executor = r.db
	}
	query := `SELECT ` + serialColumns + ` FROM serial_numbers WHERE order_item_id = $1 ORDER BY serial`
	rows, err := executor.Query(query, orderItemID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting serials for order item %d: %v", ErrDatabaseError, orderItemID, err)
	}
	defer rows.Close()

	serials := []models.SerialNumber{}
	for rows.Next() {
		var s models.SerialNumber
		if err := scanSerial(rows, &s); err != nil {
			return nil, fmt.Errorf("%w: scanning serial for order item %d: %v", ErrDatabaseError, orderItemID, err)
		}
		serials = append(serials, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating serials for order item %d: %v", ErrDatabaseError, orderItemID, err)
	}
	return serials, nil
}

func (r *serialNumberRepository) BindToOrderItem(executor SQLExecutor, serialID, orderItemID int64, toStatus string) error {
	query := `UPDATE serial_numbers
	          SET status = $1, order_item_id = $2, updated_at = $3
	          WHERE id = $4 AND status = $5 AND order_item_id IS NULL`
	result, err := executor.Exec(query, toStatus, orderItemID, time.Now(), serialID, models.SerialInStock)
	if err != nil {
		return fmt.Errorf("%w: binding serial %d to order item %d: %v", ErrDatabaseError, serialID, orderItemID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *serialNumberRepository) ReleaseFromOrderItem(executor SQLExecutor, serialID int64) error {
	query := `UPDATE serial_numbers
	          SET status = $1, order_item_id = NULL, updated_at = $2
	          WHERE id = $3 AND order_item_id IS NOT NULL`
	result, err := executor.Exec(query, models.SerialInStock, time.Now(), serialID)
	if err != nil {
		return fmt.Errorf("%w: releasing serial %d: %v", ErrDatabaseError, serialID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *serialNumberRepository) UpdateSerialStatus(executor SQLExecutor, serialID int64, status string) error {
	result, err := executor.Exec(`UPDATE serial_numbers SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), serialID)
	if err != nil {
		return fmt.Errorf("%w: updating status of serial %d: %v", ErrDatabaseError, serialID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *serialNumberRepository) UpdateSerialDetails(executor SQLExecutor, serialID int64, location, notes *string, isUsed *bool) error {
	query := `UPDATE serial_numbers
	          SET location = COALESCE($1, location),
	              notes = COALESCE($2, notes),
	              is_used = COALESCE($3, is_used),
	              updated_at = $4
	          WHERE id = $5`
	result, err := executor.Exec(query, location, notes, isUsed, time.Now(), serialID)
	if err != nil {
		return fmt.Errorf("%w: updating details of serial %d: %v", ErrDatabaseError, serialID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *serialNumberRepository) MarkDeployedByOrder(executor SQLExecutor, orderID int64) error {
	query := `UPDATE serial_numbers sn
	          SET status = $1, updated_at = $2
	          FROM order_items oi
	          WHERE sn.order_item_id = oi.id AND oi.order_id = $3 AND sn.status = $4`
	_, err := executor.Exec(query, models.SerialDeployed, time.Now(), orderID, models.SerialReserved)
	if err != nil {
		return fmt.Errorf("%w: marking serials deployed for order %d: %v", ErrDatabaseError, orderID, err)
	}
	return nil
}
