package services

import "itlager_backend/internal/models"

// Order lifecycle statuses. Only CANCELLED (and opportunistically the rest)
// is persisted; the authoritative value is always derived from sub-entity
// state by DeriveOrderStatus.
const (
	StatusNew        = "NEW"
	StatusInProgress = "IN_PROGRESS"
	StatusReady      = "READY"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// DeriveOrderStatus computes the fine-grained order status bottom-up from
// the order's items, mobilfunk lines and milestone timestamps. The stored
// coarse status is consulted only as the terminal cancellation marker.
//
// An order with zero items and zero mobilfunk lines counts as fully picked
// and fully set up, so degenerate orders become READY instead of stalling.
func DeriveOrderStatus(order *models.Order) string {
	if order.Status == StatusCancelled {
		return StatusCancelled
	}

	shipped := order.ShippedAt != nil ||
		(order.TrackingNumber != nil && *order.TrackingNumber != "")
	if shipped {
		return StatusCompleted
	}

	allPicked := true
	anyProgress := false
	for i := range order.Items {
		item := &order.Items[i]
		if item.PickedQty < item.Quantity {
			allPicked = false
		}
		if item.PickedQty > 0 || item.OrderedAt != nil || item.ReceivedQty > 0 {
			anyProgress = true
		}
	}

	allSetUp := true
	for i := range order.MobilfunkItems {
		mf := &order.MobilfunkItems[i]
		if !mf.SetupDone {
			allSetUp = false
		}
		if mf.SetupDone || mf.OrderedAt != nil || mf.Received {
			anyProgress = true
		}
	}

	if allPicked && allSetUp {
		return StatusReady
	}
	if anyProgress || order.TechDoneAt != nil {
		return StatusInProgress
	}
	return StatusNew
}

// IsTerminalStatus reports whether a derived status permits no further
// fulfillment operations.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}
