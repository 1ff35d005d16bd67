package services

import "itlager_backend/internal/models"

// Traffic-light availability levels for an order.
const (
	AvailabilityFull    = "GREEN"
	AvailabilityPartial = "YELLOW"
	AvailabilityNone    = "RED"
)

// ComputeAvailability classifies whether an order's lines can be fulfilled
// from current stock: GREEN when every line is satisfiable now, RED when
// none is, YELLOW for a mix. Unresolved free-text lines count as
// unsatisfiable until bound to an article. The result is a read-time
// projection and is never persisted.
//
// A line already picked in full counts as satisfied regardless of the
// remaining shelf stock, because its quantity has left the shelf already.
func ComputeAvailability(items []models.OrderItem) string {
	if len(items) == 0 {
		return AvailabilityFull
	}

	satisfiable := 0
	for i := range items {
		item := &items[i]
		if item.PickedQty >= item.Quantity {
			satisfiable++
			continue
		}
		if _, ok := item.Line.Resolved(); !ok || item.Article == nil {
			continue
		}
		remaining := item.Quantity - item.PickedQty
		if item.Article.CurrentStock >= remaining {
			satisfiable++
		}
	}

	switch satisfiable {
	case len(items):
		return AvailabilityFull
	case 0:
		return AvailabilityNone
	default:
		return AvailabilityPartial
	}
}
