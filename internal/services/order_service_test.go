package services

import (
	"testing"

	"itlager_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrderRequest() CreateOrderRequest {
	articleID := int64(3)
	return CreateOrderRequest{
		OrderedBy:      "jschmidt",
		Recipient:      "Anna Fischer",
		DeliveryMethod: models.DeliveryPickup,
		Items: []CreateOrderLineRequest{
			{ArticleID: &articleID, Quantity: 1},
		},
	}
}

func TestCreateOrderInputValidation(t *testing.T) {
	svc := NewOrderService(nil, nil)
	articleID := int64(3)
	freeText := "HDMI adapter"
	empty := ""

	tests := []struct {
		name   string
		mutate func(*CreateOrderRequest)
	}{
		{
			name:   "missing ordering party",
			mutate: func(r *CreateOrderRequest) { r.OrderedBy = "" },
		},
		{
			name:   "missing recipient",
			mutate: func(r *CreateOrderRequest) { r.Recipient = "" },
		},
		{
			name:   "unknown delivery method",
			mutate: func(r *CreateOrderRequest) { r.DeliveryMethod = "CARRIER_PIGEON" },
		},
		{
			name: "shipping without address",
			mutate: func(r *CreateOrderRequest) {
				r.DeliveryMethod = models.DeliveryShipping
				r.ShippingAddress = nil
			},
		},
		{
			name: "shipping with blank address",
			mutate: func(r *CreateOrderRequest) {
				r.DeliveryMethod = models.DeliveryShipping
				r.ShippingAddress = &empty
			},
		},
		{
			name: "line with both article and free text",
			mutate: func(r *CreateOrderRequest) {
				r.Items = []CreateOrderLineRequest{{ArticleID: &articleID, FreeText: &freeText, Quantity: 1}}
			},
		},
		{
			name: "line with neither article nor free text",
			mutate: func(r *CreateOrderRequest) {
				r.Items = []CreateOrderLineRequest{{Quantity: 1}}
			},
		},
		{
			name: "line with zero quantity",
			mutate: func(r *CreateOrderRequest) {
				r.Items = []CreateOrderLineRequest{{ArticleID: &articleID, Quantity: 0}}
			},
		},
		{
			name: "unknown mobilfunk kind",
			mutate: func(r *CreateOrderRequest) {
				r.MobilfunkItems = []CreateMobilfunkLineRequest{{Kind: "PAGER"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validOrderRequest()
			tt.mutate(&req)
			_, err := svc.CreateOrder(req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLineRefResolution(t *testing.T) {
	articleID := int64(9)
	text := "Docking station"

	articleRef := models.LineRef{Kind: models.LineKindArticle, ArticleID: &articleID}
	id, ok := articleRef.Resolved()
	assert.True(t, ok)
	assert.Equal(t, articleID, id)
	assert.False(t, articleRef.IsFreeText())

	freeRef := models.LineRef{Kind: models.LineKindFreeText, FreeText: &text}
	_, ok = freeRef.Resolved()
	assert.False(t, ok)
	assert.True(t, freeRef.IsFreeText())
}
