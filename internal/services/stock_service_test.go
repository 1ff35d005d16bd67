package services

import (
	"testing"

	"itlager_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMovementRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateMovementRequest
		wantErr bool
	}{
		{
			name:    "valid IN movement",
			req:     CreateMovementRequest{ArticleID: 1, Kind: models.MovementIn, Quantity: 5, Actor: "mmeyer"},
			wantErr: false,
		},
		{
			name:    "valid OUT movement",
			req:     CreateMovementRequest{ArticleID: 1, Kind: models.MovementOut, Quantity: 1, Actor: "mmeyer"},
			wantErr: false,
		},
		{
			name:    "adjustment to zero is allowed",
			req:     CreateMovementRequest{ArticleID: 1, Kind: models.MovementAdjustment, Quantity: 0, Actor: "mmeyer"},
			wantErr: false,
		},
		{
			name:    "missing article",
			req:     CreateMovementRequest{Kind: models.MovementIn, Quantity: 5, Actor: "mmeyer"},
			wantErr: true,
		},
		{
			name:    "missing actor",
			req:     CreateMovementRequest{ArticleID: 1, Kind: models.MovementIn, Quantity: 5},
			wantErr: true,
		},
		{
			name:    "zero quantity IN",
			req:     CreateMovementRequest{ArticleID: 1, Kind: models.MovementIn, Quantity: 0, Actor: "mmeyer"},
			wantErr: true,
		},
		{
			name:    "negative quantity OUT",
			req:     CreateMovementRequest{ArticleID: 1, Kind: models.MovementOut, Quantity: -2, Actor: "mmeyer"},
			wantErr: true,
		},
		{
			name:    "negative adjustment target",
			req:     CreateMovementRequest{ArticleID: 1, Kind: models.MovementAdjustment, Quantity: -1, Actor: "mmeyer"},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			req:     CreateMovementRequest{ArticleID: 1, Kind: "TRANSFER", Quantity: 1, Actor: "mmeyer"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMovementRequest(tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateMovementRejectsInvalidInputBeforeTouchingStorage(t *testing.T) {
	// No repositories and no database: validation has to fail first.
	svc := NewStockService(nil, nil, nil)

	_, _, err := svc.CreateMovement(CreateMovementRequest{
		ArticleID: 1, Kind: "SIDEWAYS", Quantity: 3, Actor: "mmeyer",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateMovementRejectsAdjustments(t *testing.T) {
	// Absolute corrections only come out of inventory reconciliation; the
	// public entry point rejects the kind even though ApplyMovementTx
	// supports it.
	svc := NewStockService(nil, nil, nil)

	_, _, err := svc.CreateMovement(CreateMovementRequest{
		ArticleID: 1, Kind: models.MovementAdjustment, Quantity: 8, Actor: "mmeyer",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMovingAveragePrice(t *testing.T) {
	tests := []struct {
		name       string
		currentAvg string
		currentQty int
		price      string
		qty        int
		want       string
	}{
		{
			name:       "first priced receipt sets the average",
			currentAvg: "0", currentQty: 0,
			price: "125.50", qty: 4,
			want: "125.5",
		},
		{
			name:       "zero average is replaced even with stock on hand",
			currentAvg: "0", currentQty: 10,
			price: "80", qty: 5,
			want: "80",
		},
		{
			name:       "receipt is weighted against on-hand stock",
			currentAvg: "100", currentQty: 10,
			price: "200", qty: 10,
			want: "150",
		},
		{
			name:       "uneven weights round to four places",
			currentAvg: "10", currentQty: 1,
			price: "20", qty: 2,
			want: "16.6667",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			currentAvg := decimal.RequireFromString(tt.currentAvg)
			price := decimal.RequireFromString(tt.price)
			got := movingAveragePrice(currentAvg, tt.currentQty, price, tt.qty)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}
