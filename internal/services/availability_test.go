package services

import (
	"testing"

	"itlager_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func articleLine(stock, quantity, picked int) models.OrderItem {
	articleID := int64(1)
	return models.OrderItem{
		Line:      models.LineRef{Kind: models.LineKindArticle, ArticleID: &articleID},
		Quantity:  quantity,
		PickedQty: picked,
		Article:   &models.Article{ID: articleID, CurrentStock: stock},
	}
}

func freeTextLine(quantity int) models.OrderItem {
	text := "USB-C dock, any brand"
	return models.OrderItem{
		Line:     models.LineRef{Kind: models.LineKindFreeText, FreeText: &text},
		Quantity: quantity,
	}
}

func TestComputeAvailability(t *testing.T) {
	tests := []struct {
		name  string
		items []models.OrderItem
		want  string
	}{
		{
			name:  "no lines is green",
			items: nil,
			want:  AvailabilityFull,
		},
		{
			name:  "every line coverable is green",
			items: []models.OrderItem{articleLine(10, 2, 0), articleLine(5, 5, 0)},
			want:  AvailabilityFull,
		},
		{
			name:  "stock exactly matching demand is green",
			items: []models.OrderItem{articleLine(3, 3, 0)},
			want:  AvailabilityFull,
		},
		{
			name:  "no line coverable is red",
			items: []models.OrderItem{articleLine(0, 2, 0), articleLine(1, 5, 0)},
			want:  AvailabilityNone,
		},
		{
			name:  "mixed coverage is yellow",
			items: []models.OrderItem{articleLine(10, 2, 0), articleLine(0, 1, 0)},
			want:  AvailabilityPartial,
		},
		{
			name:  "free-text line counts as not coverable",
			items: []models.OrderItem{articleLine(10, 2, 0), freeTextLine(1)},
			want:  AvailabilityPartial,
		},
		{
			name:  "only free-text lines is red",
			items: []models.OrderItem{freeTextLine(1), freeTextLine(2)},
			want:  AvailabilityNone,
		},
		{
			name:  "fully picked line is satisfied despite empty shelf",
			items: []models.OrderItem{articleLine(0, 2, 2)},
			want:  AvailabilityFull,
		},
		{
			name:  "partially picked line only needs the remainder",
			items: []models.OrderItem{articleLine(1, 3, 2)},
			want:  AvailabilityFull,
		},
		{
			name:  "partially picked line with too little stock for remainder",
			items: []models.OrderItem{articleLine(0, 3, 2)},
			want:  AvailabilityNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeAvailability(tt.items))
		})
	}
}
