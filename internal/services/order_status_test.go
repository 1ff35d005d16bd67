package services

import (
	"testing"
	"time"

	"itlager_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDeriveOrderStatus(t *testing.T) {
	now := time.Now()
	tracking := "DHL-12345"
	emptyTracking := ""

	tests := []struct {
		name  string
		order models.Order
		want  string
	}{
		{
			name:  "cancelled wins over everything",
			order: models.Order{Status: StatusCancelled, ShippedAt: &now},
			want:  StatusCancelled,
		},
		{
			name:  "shipped timestamp means completed",
			order: models.Order{ShippedAt: &now},
			want:  StatusCompleted,
		},
		{
			name:  "tracking number alone means completed",
			order: models.Order{TrackingNumber: &tracking},
			want:  StatusCompleted,
		},
		{
			name:  "empty tracking number does not complete",
			order: models.Order{TrackingNumber: &emptyTracking},
			want:  StatusReady,
		},
		{
			name: "untouched order is new",
			order: models.Order{
				Items: []models.OrderItem{{Quantity: 2}},
			},
			want: StatusNew,
		},
		{
			name: "partial pick is in progress",
			order: models.Order{
				Items: []models.OrderItem{{Quantity: 2, PickedQty: 1}},
			},
			want: StatusInProgress,
		},
		{
			name: "procurement started is in progress",
			order: models.Order{
				Items: []models.OrderItem{{Quantity: 2, OrderedAt: &now}},
			},
			want: StatusInProgress,
		},
		{
			name: "all items picked is ready",
			order: models.Order{
				Items: []models.OrderItem{
					{Quantity: 2, PickedQty: 2},
					{Quantity: 1, PickedQty: 1},
				},
			},
			want: StatusReady,
		},
		{
			name: "picked items but pending mobilfunk setup is in progress",
			order: models.Order{
				Items:          []models.OrderItem{{Quantity: 1, PickedQty: 1}},
				MobilfunkItems: []models.MobilfunkItem{{Kind: models.MobilfunkSIM}},
			},
			want: StatusInProgress,
		},
		{
			name: "picked items and set-up mobilfunk is ready",
			order: models.Order{
				Items:          []models.OrderItem{{Quantity: 1, PickedQty: 1}},
				MobilfunkItems: []models.MobilfunkItem{{Kind: models.MobilfunkSIM, SetupDone: true}},
			},
			want: StatusReady,
		},
		{
			name: "mobilfunk ordered at provider is in progress",
			order: models.Order{
				Items:          []models.OrderItem{{Quantity: 1}},
				MobilfunkItems: []models.MobilfunkItem{{Kind: models.MobilfunkPhone, OrderedAt: &now}},
			},
			want: StatusInProgress,
		},
		{
			name:  "degenerate order without lines is ready",
			order: models.Order{},
			want:  StatusReady,
		},
		{
			name: "tech done without lines picked is in progress",
			order: models.Order{
				Items:      []models.OrderItem{{Quantity: 3, PickedQty: 0}, {Quantity: 1, PickedQty: 1}},
				TechDoneAt: &now,
			},
			want: StatusInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveOrderStatus(&tt.order))
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(StatusCompleted))
	assert.True(t, IsTerminalStatus(StatusCancelled))
	assert.False(t, IsTerminalStatus(StatusNew))
	assert.False(t, IsTerminalStatus(StatusInProgress))
	assert.False(t, IsTerminalStatus(StatusReady))
}
