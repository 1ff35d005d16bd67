package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"itlager_backend/internal/models"
)

// StockMovementRepository defines the interface for the append-only
// movement ledger. Movement rows are never updated or deleted.
type StockMovementRepository interface {
	CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error)
	GetMovements(filters models.MovementFilters) ([]models.StockMovement, int, error)
	GetMovementSummary(filters models.ReportFilters) ([]models.MovementSummaryRow, error)
}

type stockMovementRepository struct {
	db *sql.DB
}

// NewStockMovementRepository creates a new instance of StockMovementRepository.
func NewStockMovementRepository(db *sql.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) CreateMovement(executor SQLExecutor, movement *models.StockMovement) (int64, error) {
	query := `INSERT INTO stock_movements
	          (article_id, kind, quantity_changed, absolute_quantity, reason, actor, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at`
	err := executor.QueryRow(query,
		movement.ArticleID, movement.Kind, movement.QuantityChanged,
		movement.AbsoluteQuantity, movement.Reason, movement.Actor, time.Now(),
	).Scan(&movement.ID, &movement.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("%w: creating stock movement: %v", ErrDatabaseError, err)
	}
	return movement.ID, nil
}

func (r *stockMovementRepository) GetMovements(filters models.MovementFilters) ([]models.StockMovement, int, error) {
	movements := []models.StockMovement{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    sm.id, sm.article_id, sm.kind, sm.quantity_changed, sm.absolute_quantity,
	    sm.reason, sm.actor, sm.created_at,
	    a.sku AS article_sku, a.name AS article_name, a.unit AS article_unit,
	    COUNT(*) OVER() AS total_count
	  FROM stock_movements sm
	  JOIN articles a ON sm.article_id = a.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.ArticleID != nil {
		conditions = append(conditions, fmt.Sprintf("sm.article_id = $%d", argCount))
		args = append(args, *filters.ArticleID)
		argCount++
	}
	if filters.Kind != nil && *filters.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("sm.kind = $%d", argCount))
		args = append(args, *filters.Kind)
		argCount++
	}
	if filters.Actor != nil && *filters.Actor != "" {
		conditions = append(conditions, fmt.Sprintf("sm.actor = $%d", argCount))
		args = append(args, *filters.Actor)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY sm.created_at DESC, sm.id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting stock movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var movement models.StockMovement
		var article models.Article
		if err := rows.Scan(
			&movement.ID, &movement.ArticleID, &movement.Kind, &movement.QuantityChanged,
			&movement.AbsoluteQuantity, &movement.Reason, &movement.Actor, &movement.CreatedAt,
			&article.SKU, &article.Name, &article.Unit,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock movement: %v", ErrDatabaseError, err)
		}
		article.ID = movement.ArticleID
		movement.Article = &article
		movements = append(movements, movement)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock movements: %v", ErrDatabaseError, err)
	}
	return movements, totalCount, nil
}

func (r *stockMovementRepository) GetMovementSummary(filters models.ReportFilters) ([]models.MovementSummaryRow, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    a.id, a.name, a.sku, a.current_stock,
	    COALESCE(SUM(CASE WHEN sm.kind = 'IN' THEN sm.quantity_changed ELSE 0 END), 0) AS total_in,
	    COALESCE(SUM(CASE WHEN sm.kind = 'OUT' THEN -sm.quantity_changed ELSE 0 END), 0) AS total_out,
	    COALESCE(SUM(CASE WHEN sm.kind = 'ADJUSTMENT' THEN sm.quantity_changed ELSE 0 END), 0) AS adjustments,
	    COALESCE(SUM(sm.quantity_changed), 0) AS net_change
	  FROM articles a
	  JOIN stock_movements sm ON sm.article_id = a.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.ArticleID != nil {
		conditions = append(conditions, fmt.Sprintf("a.id = $%d", argCount))
		args = append(args, *filters.ArticleID)
		argCount++
	}
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("sm.created_at >= $%d", argCount))
		args = append(args, *filters.From)
		argCount++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("sm.created_at < $%d", argCount))
		args = append(args, *filters.To)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" GROUP BY a.id, a.name, a.sku, a.current_stock ORDER BY a.sku")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting movement summary: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	summary := []models.MovementSummaryRow{}
	for rows.Next() {
		var row models.MovementSummaryRow
		if err := rows.Scan(
			&row.ArticleID, &row.ArticleName, &row.SKU, &row.CurrentStock,
			&row.TotalIn, &row.TotalOut, &row.Adjustments, &row.NetChange,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning movement summary row: %v", ErrDatabaseError, err)
		}
		summary = append(summary, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating movement summary: %v", ErrDatabaseError, err)
	}
	return summary, nil
}
