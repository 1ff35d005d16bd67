package services

import (
	"testing"
	"time"

	"itlager_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateArticleInputValidation(t *testing.T) {
	svc := NewArticleService(nil, nil, nil, nil)

	_, err := svc.CreateArticle(CreateArticleRequest{Name: "ThinkPad X1"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateArticle(CreateArticleRequest{SKU: "NB-0001"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateArticle(CreateArticleRequest{SKU: "NB-0001", Name: "ThinkPad X1", MinStockLevel: -2})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReceiveGoodsInputValidation(t *testing.T) {
	svc := NewArticleService(nil, nil, nil, nil)
	badPrice := "12,99"
	negativePrice := "-5"

	_, _, err := svc.ReceiveGoods(1, ReceiveGoodsRequest{Quantity: 5})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.ReceiveGoods(1, ReceiveGoodsRequest{Quantity: 0, Actor: "wagner"})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.ReceiveGoods(1, ReceiveGoodsRequest{Quantity: 5, Actor: "wagner", UnitPrice: &badPrice})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.ReceiveGoods(1, ReceiveGoodsRequest{Quantity: 5, Actor: "wagner", UnitPrice: &negativePrice})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMovementSummaryPeriodValidation(t *testing.T) {
	svc := NewReportService(nil, nil, nil)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, -1, 0)

	_, err := svc.MovementSummary(models.ReportFilters{From: &from, To: &to})
	assert.ErrorIs(t, err, ErrValidation)
}
