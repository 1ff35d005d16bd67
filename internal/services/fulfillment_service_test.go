package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Input validation runs before any transaction is opened, so these paths
// are exercisable without a database.
func TestPickItemInputValidation(t *testing.T) {
	svc := NewFulfillmentService(nil, nil, nil, nil, nil, nil)
	serialID := int64(7)

	tests := []struct {
		name string
		req  PickItemRequest
	}{
		{name: "missing technician", req: PickItemRequest{Quantity: 1}},
		{name: "zero quantity", req: PickItemRequest{Quantity: 0, Technician: "tmueller"}},
		{name: "negative quantity", req: PickItemRequest{Quantity: -1, Technician: "tmueller"}},
		{name: "serial with multi-unit pick", req: PickItemRequest{Quantity: 2, SerialID: &serialID, Technician: "tmueller"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.PickItem(1, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUnpickItemInputValidation(t *testing.T) {
	svc := NewFulfillmentService(nil, nil, nil, nil, nil, nil)
	serialID := int64(7)

	tests := []struct {
		name string
		req  UnpickItemRequest
	}{
		{name: "missing technician", req: UnpickItemRequest{Quantity: 1}},
		{name: "zero quantity", req: UnpickItemRequest{Quantity: 0, Technician: "tmueller"}},
		{name: "serial with multi-unit unpick", req: UnpickItemRequest{Quantity: 3, SerialID: &serialID, Technician: "tmueller"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.UnpickItem(1, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestResolveItemInputValidation(t *testing.T) {
	svc := NewFulfillmentService(nil, nil, nil, nil, nil, nil)

	tests := []struct {
		name string
		req  ResolveItemRequest
	}{
		{name: "missing actor", req: ResolveItemRequest{ArticleID: 3}},
		{name: "missing article", req: ResolveItemRequest{Actor: "tmueller"}},
		{name: "negative article ID", req: ResolveItemRequest{ArticleID: -1, Actor: "tmueller"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ResolveItem(1, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestActorRequiredOnFulfillmentSteps(t *testing.T) {
	svc := NewFulfillmentService(nil, nil, nil, nil, nil, nil)

	_, err := svc.SetupMobilfunk(1, SetupMobilfunkRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ResetMobilfunkSetup(1, ResetMobilfunkRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.FinishTechWork(1, FinishTechWorkRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.MarkItemOrdered(1, MarkItemOrderedRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.MarkMobilfunkOrdered(1, MarkMobilfunkOrderedRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CancelOrder(1, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReceiveQuantityMustBePositive(t *testing.T) {
	svc := NewFulfillmentService(nil, nil, nil, nil, nil, nil)

	_, err := svc.ReceiveOrderItem(1, ReceiveOrderItemRequest{Quantity: 0, Performer: "wagner"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ReceiveFreeTextItem(1, ReceiveFreeTextItemRequest{Quantity: -1})
	assert.ErrorIs(t, err, ErrValidation)
}
