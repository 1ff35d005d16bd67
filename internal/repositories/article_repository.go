package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"itlager_backend/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ArticleRepository defines the interface for article-related database
// operations. All stock-changing methods take an SQLExecutor so the service
// layer can run them inside the same transaction as the movement append.
type ArticleRepository interface {
	CreateArticle(executor SQLExecutor, article *models.Article) (int64, error)
	GetArticleByID(executor SQLExecutor, id int64) (*models.Article, error)
	GetArticles(filters models.ArticleFilters) ([]models.Article, int, error)
	GetActiveArticles(executor SQLExecutor) ([]models.Article, error)
	UpdateArticle(executor SQLExecutor, article *models.Article) error
	DeactivateArticle(executor SQLExecutor, id int64) error

	// DeductStock atomically checks sufficiency and decrements in a single
	// guarded statement, returning the new stock level. Returns
	// ErrInsufficientStock when current_stock < quantity.
	DeductStock(executor SQLExecutor, articleID int64, quantity int) (int, error)
	IncreaseStock(executor SQLExecutor, articleID int64, quantity int) (int, error)
	// SetStock overwrites current_stock with an absolute value and returns
	// the previous level. Used only by inventory corrections.
	SetStock(executor SQLExecutor, articleID int64, absolute int) (int, error)
	AdjustIncomingStock(executor SQLExecutor, articleID int64, delta int) error
	UpdateAvgPurchasePrice(executor SQLExecutor, articleID int64, price decimal.Decimal) error

	GetLowStockArticles() ([]models.Article, error)
}

type articleRepository struct {
	db *sql.DB
}

// NewArticleRepository creates a new instance of ArticleRepository.
func NewArticleRepository(db *sql.DB) ArticleRepository {
	return &articleRepository{db: db}
}

const articleColumns = `id, sku, name, tier, unit, is_serialized, current_stock, incoming_stock,
	min_stock_level, avg_purchase_price, is_active, created_at, updated_at`

func scanArticle(row interface{ Scan(...interface{}) error }, a *models.Article) error {
	return row.Scan(
		&a.ID, &a.SKU, &a.Name, &a.Tier, &a.Unit, &a.IsSerialized, &a.CurrentStock,
		&a.IncomingStock, &a.MinStockLevel, &a.AvgPurchasePrice, &a.IsActive,
		&a.CreatedAt, &a.UpdatedAt,
	)
}

func (r *articleRepository) CreateArticle(executor SQLExecutor, article *models.Article) (int64, error) {
	query := `INSERT INTO articles
	          (sku, name, tier, unit, is_serialized, current_stock, incoming_stock, min_stock_level, avg_purchase_price, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		article.SKU, article.Name, article.Tier, article.Unit, article.IsSerialized,
		article.CurrentStock, article.IncomingStock, article.MinStockLevel,
		article.AvgPurchasePrice, article.IsActive, currentTime, currentTime,
	).Scan(&article.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: article SKU '%s' already exists (constraint: %s)", ErrDuplicateKey, article.SKU, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating article: %v", ErrDatabaseError, err)
	}
	return article.ID, nil
}

func (r *articleRepository) GetArticleByID(executor SQLExecutor, id int64) (*models.Article, error) {
	if executor == nil {
		executor = r.db
	}
	article := &models.Article{}
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	err := scanArticle(executor.QueryRow(query, id), article)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting article by ID %d: %v", ErrDatabaseError, id, err)
	}
	return article, nil
}

func (r *articleRepository) GetArticles(filters models.ArticleFilters) ([]models.Article, int, error) {
	articles := []models.Article{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + articleColumns + `, COUNT(*) OVER() AS total_count FROM articles`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if !filters.IncludeInactive {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filters.Tier != nil && *filters.Tier != "" {
		conditions = append(conditions, fmt.Sprintf("tier = $%d", argCount))
		args = append(args, *filters.Tier)
		argCount++
	}
	if filters.Serialized != nil {
		conditions = append(conditions, fmt.Sprintf("is_serialized = $%d", argCount))
		args = append(args, *filters.Serialized)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY name")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting articles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Article
		if err := rows.Scan(
			&a.ID, &a.SKU, &a.Name, &a.Tier, &a.Unit, &a.IsSerialized, &a.CurrentStock,
			&a.IncomingStock, &a.MinStockLevel, &a.AvgPurchasePrice, &a.IsActive,
			&a.CreatedAt, &a.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning article: %v", ErrDatabaseError, err)
		}
		articles = append(articles, a)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating articles: %v", ErrDatabaseError, err)
	}
	return articles, totalCount, nil
}

func (r *articleRepository) GetActiveArticles(executor SQLExecutor) ([]models.Article, error) {
	if executor == nil {
		executor = r.db
	}
	query := `SELECT ` + articleColumns + ` FROM articles WHERE is_active = TRUE ORDER BY sku`
	rows, err := executor.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: getting active articles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		var a models.Article
		if err := scanArticle(rows, &a); err != nil {
			return nil, fmt.Errorf("%w: scanning active article: %v", ErrDatabaseError, err)
		}
		articles = append(articles, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating active articles: %v", ErrDatabaseError, err)
	}
	return articles, nil
}

func (r *articleRepository) UpdateArticle(executor SQLExecutor, article *models.Article) error {
	query := `UPDATE articles SET
	          sku = $1, name = $2, tier = $3, unit = $4, is_serialized = $5,
	          min_stock_level = $6, is_active = $7, updated_at = $8
	          WHERE id = $9`
	result, err := executor.Exec(query,
		article.SKU, article.Name, article.Tier, article.Unit, article.IsSerialized,
		article.MinStockLevel, article.IsActive, time.Now(), article.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: article SKU '%s' already exists (constraint: %s)", ErrDuplicateKey, article.SKU, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating article ID %d: %v", ErrDatabaseError, article.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepository) DeactivateArticle(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`UPDATE articles SET is_active = FALSE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: deactivating article ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepository) DeductStock(executor SQLExecutor, articleID int64, quantity int) (int, error) {
	var newStock int
	// The sufficiency check and the decrement are one statement; two
	// concurrent deductions serialize on the row and the second one fails
	// instead of driving the stock negative.
	query := `UPDATE articles
	          SET current_stock = current_stock - $1, updated_at = $2
	          WHERE id = $3 AND current_stock >= $1
	          RETURNING current_stock`
	err := executor.QueryRow(query, quantity, time.Now(), articleID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			checkErr := executor.QueryRow("SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)", articleID).Scan(&exists)
			if checkErr != nil {
				return 0, fmt.Errorf("%w: checking article %d existence: %v", ErrDatabaseError, articleID, checkErr)
			}
			if !exists {
				return 0, ErrNotFound
			}
			return 0, ErrInsufficientStock
		}
		return 0, fmt.Errorf("%w: deducting stock for article %d: %v", ErrDatabaseError, articleID, err)
	}
	return newStock, nil
}

func (r *articleRepository) IncreaseStock(executor SQLExecutor, articleID int64, quantity int) (int, error) {
	var newStock int
	query := `UPDATE articles
	          SET current_stock = current_stock + $1, updated_at = $2
	          WHERE id = $3
	          RETURNING current_stock`
	err := executor.QueryRow(query, quantity, time.Now(), articleID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: increasing stock for article %d: %v", ErrDatabaseError, articleID, err)
	}
	return newStock, nil
}

func (r *articleRepository) SetStock(executor SQLExecutor, articleID int64, absolute int) (int, error) {
	var oldStock int
	// current_stock is read and overwritten in one statement so the audit
	// delta (absolute - old) is computed against the value actually replaced.
	query := `UPDATE articles a
	          SET current_stock = $1, updated_at = $2
	          FROM (SELECT id, current_stock AS old_stock FROM articles WHERE id = $3 FOR UPDATE) prev
	          WHERE a.id = prev.id
	          RETURNING prev.old_stock`
	err := executor.QueryRow(query, absolute, time.Now(), articleID).Scan(&oldStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: setting stock for article %d: %v", ErrDatabaseError, articleID, err)
	}
	return oldStock, nil
}

func (r *articleRepository) AdjustIncomingStock(executor SQLExecutor, articleID int64, delta int) error {
	query := `UPDATE articles
	          SET incoming_stock = GREATEST(incoming_stock + $1, 0), updated_at = $2
	          WHERE id = $3`
	result, err := executor.Exec(query, delta, time.Now(), articleID)
	if err != nil {
		return fmt.Errorf("%w: adjusting incoming stock for article %d: %v", ErrDatabaseError, articleID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepository) UpdateAvgPurchasePrice(executor SQLExecutor, articleID int64, price decimal.Decimal) error {
	result, err := executor.Exec(`UPDATE articles SET avg_purchase_price = $1, updated_at = $2 WHERE id = $3`,
		price, time.Now(), articleID)
	if err != nil {
		return fmt.Errorf("%w: updating avg purchase price for article %d: %v", ErrDatabaseError, articleID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepository) GetLowStockArticles() ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles
	          WHERE is_active = TRUE AND current_stock < min_stock_level
	          ORDER BY current_stock - min_stock_level`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: getting low stock articles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		var a models.Article
		if err := scanArticle(rows, &a); err != nil {
			return nil, fmt.Errorf("%w: scanning low stock article: %v", ErrDatabaseError, err)
		}
		articles = append(articles, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating low stock articles: %v", ErrDatabaseError, err)
	}
	return articles, nil
}
