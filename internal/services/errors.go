package services

import "errors"

// Business-rule violations surfaced to callers as structured failures.
// These are expected outcomes, not faults; handlers translate them to
// HTTP status codes. Storage faults propagate wrapped in
// repositories.ErrDatabaseError instead.
var (
	// ErrValidation marks malformed or incomplete input, including empty
	// actor identities on operations that require one.
	ErrValidation = errors.New("validation error")

	// ErrInsufficientStock is returned when an OUT movement or a pick would
	// overdraw an article's on-hand stock.
	ErrInsufficientStock = errors.New("insufficient stock for article")

	// ErrPreconditionNotMet blocks a lifecycle transition whose entry
	// condition does not hold (finishing tech work before all items are
	// picked, applying corrections before all items are checked, starting
	// an inventory session while one is active, ...).
	ErrPreconditionNotMet = errors.New("operation precondition not met")

	// ErrSerialNumberUnavailable is returned when a serial number cannot be
	// bound: unknown, wrong article, or already reserved elsewhere.
	ErrSerialNumberUnavailable = errors.New("serial number unavailable")

	// ErrDuplicateIdentifier is returned when a unique business key (SKU,
	// serial string) is already taken.
	ErrDuplicateIdentifier = errors.New("identifier already exists")

	ErrArticleNotFound   = errors.New("article not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrMobilfunkNotFound = errors.New("mobilfunk item not found")
	ErrInventoryNotFound = errors.New("inventory session not found")
	ErrSerialNotFound    = errors.New("serial number not found")
)
