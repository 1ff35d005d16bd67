package services

import (
	"fmt"

	"itlager_backend/internal/models"
	"itlager_backend/internal/repositories"
)

// ReportService provides read-only aggregations over the ledger and the
// order book.
type ReportService interface {
	// LowStockArticles lists active articles whose current stock has fallen
	// below their minimum stock level.
	LowStockArticles() ([]models.Article, error)
	// MovementSummary aggregates ledger movements per article for a period.
	MovementSummary(filters models.ReportFilters) ([]models.MovementSummaryRow, error)
	// OpenOrders lists all orders whose derived status is not terminal.
	OpenOrders() ([]models.Order, error)
}

type reportService struct {
	articleRepo  repositories.ArticleRepository
	movementRepo repositories.StockMovementRepository
	orderRepo    repositories.OrderRepository
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	ar repositories.ArticleRepository,
	mr repositories.StockMovementRepository,
	or repositories.OrderRepository,
) ReportService {
	return &reportService{articleRepo: ar, movementRepo: mr, orderRepo: or}
}

func (s *reportService) LowStockArticles() ([]models.Article, error) {
	articles, err := s.articleRepo.GetLowStockArticles()
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock articles: %w", err)
	}
	return articles, nil
}

func (s *reportService) MovementSummary(filters models.ReportFilters) ([]models.MovementSummaryRow, error) {
	if filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
		return nil, fmt.Errorf("%w: report period end is before its start", ErrValidation)
	}
	rows, err := s.movementRepo.GetMovementSummary(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get movement summary: %w", err)
	}
	return rows, nil
}

func (s *reportService) OpenOrders() ([]models.Order, error) {
	var open []models.Order
	const pageSize = 200
	for page := 1; ; page++ {
		orders, _, err := s.orderRepo.GetOrders(models.OrderFilters{Page: page, PageSize: pageSize})
		if err != nil {
			return nil, fmt.Errorf("failed to get orders: %w", err)
		}
		for i := range orders {
			full, err := assembleOrder(s.orderRepo, orders[i].ID)
			if err != nil {
				return nil, err
			}
			if !IsTerminalStatus(full.DerivedStatus) {
				open = append(open, *full)
			}
		}
		if len(orders) < pageSize {
			break
		}
	}
	return open, nil
}
