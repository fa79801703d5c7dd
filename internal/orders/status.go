package orders

import (
	"github.com/minhvnd/lumenshop-backend/pkg/enums"
	pkgerrors "github.com/minhvnd/lumenshop-backend/pkg/errors"
)

// validNext is the full transition table. Terminal statuses have no entries:
// once completed or cancelled an order only accepts the no-op repeat of its
// current status.
var validNext = map[enums.OrderStatus]map[enums.OrderStatus]struct{}{
	enums.OrderStatusPending: {
		enums.OrderStatusProcessing: {},
		// Staff can complete directly, skipping processing.
		enums.OrderStatusCompleted: {},
		enums.OrderStatusCancelled: {},
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusCompleted: {},
		enums.OrderStatusCancelled: {},
	},
	enums.OrderStatusCompleted: {},
	enums.OrderStatusCancelled: {},
}

// CanTransition reports whether from may move to to. Repeating the current
// status is always allowed and treated as a no-op by callers.
func CanTransition(from, to enums.OrderStatus) bool {
	if from == to {
		return true
	}
	next, ok := validNext[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// CheckTransition validates the move and returns a STATE_CONFLICT carrying
// both statuses when it is disallowed.
func CheckTransition(from, to enums.OrderStatus) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]any{"status": to.String()})
	}
	if !CanTransition(from, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition disallowed").
			WithDetails(map[string]any{
				"from": from.String(),
				"to":   to.String(),
			})
	}
	return nil
}
