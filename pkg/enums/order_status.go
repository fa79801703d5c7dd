package enums

import "fmt"

// OrderStatus tracks the order through its lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status accepts no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ParseOrderStatus normalizes external input. "delivered" is accepted as a
// legacy alias for completed.
func ParseOrderStatus(v string) (OrderStatus, error) {
	if v == "delivered" {
		return OrderStatusCompleted, nil
	}
	s := OrderStatus(v)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid order status %q", v)
	}
	return s, nil
}
