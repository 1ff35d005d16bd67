package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReceiveSerialsInputValidation(t *testing.T) {
	svc := NewSerialService(nil, nil, nil, nil)

	_, _, err := svc.Receive(ReceiveSerialsRequest{ArticleID: 1, Serials: []string{"SN-1"}})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Receive(ReceiveSerialsRequest{ArticleID: 1, Actor: "mmeyer"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSerialBindingRequiresActor(t *testing.T) {
	svc := NewSerialService(nil, nil, nil, nil)

	_, err := svc.ReserveForPick(1, 2, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Release(1, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSideBranchStatusClassification(t *testing.T) {
	assert.True(t, isSideBranchStatus("DEFECTIVE"))
	assert.True(t, isSideBranchStatus("RETURNED"))
	assert.True(t, isSideBranchStatus("DISPOSED"))
	assert.False(t, isSideBranchStatus("IN_STOCK"))
	assert.False(t, isSideBranchStatus("RESERVED"))
	assert.False(t, isSideBranchStatus("DEPLOYED"))
}
