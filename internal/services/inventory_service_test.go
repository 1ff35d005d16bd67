package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartInventoryInputValidation(t *testing.T) {
	svc := NewInventoryService(nil, nil, nil, nil)

	_, err := svc.StartInventory(StartInventoryRequest{StartedBy: "kbauer"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.StartInventory(StartInventoryRequest{Name: "Jahresinventur 2026"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCheckItemInputValidation(t *testing.T) {
	svc := NewInventoryService(nil, nil, nil, nil)

	_, err := svc.CheckItem(1, CheckInventoryItemRequest{CountedQty: 5})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CheckItem(1, CheckInventoryItemRequest{CountedQty: -1, CheckedBy: "kbauer"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInventoryCompletionRequiresActor(t *testing.T) {
	svc := NewInventoryService(nil, nil, nil, nil)

	_, err := svc.ApplyCorrections(1, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CompleteWithoutCorrections(1, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CancelInventory(1, "")
	assert.ErrorIs(t, err, ErrValidation)
}
