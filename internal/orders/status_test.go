package orders

import (
	"testing"

	"github.com/minhvnd/lumenshop-backend/pkg/enums"
	pkgerrors "github.com/minhvnd/lumenshop-backend/pkg/errors"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	allowed := [][2]enums.OrderStatus{
		{enums.OrderStatusPending, enums.OrderStatusProcessing},
		{enums.OrderStatusPending, enums.OrderStatusCompleted},
		{enums.OrderStatusPending, enums.OrderStatusCancelled},
		{enums.OrderStatusProcessing, enums.OrderStatusCompleted},
		{enums.OrderStatusProcessing, enums.OrderStatusCancelled},
		{enums.OrderStatusCompleted, enums.OrderStatusCompleted},
		{enums.OrderStatusCancelled, enums.OrderStatusCancelled},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]enums.OrderStatus{
		{enums.OrderStatusProcessing, enums.OrderStatusPending},
		{enums.OrderStatusCompleted, enums.OrderStatusProcessing},
		{enums.OrderStatusCompleted, enums.OrderStatusCancelled},
		{enums.OrderStatusCancelled, enums.OrderStatusPending},
		{enums.OrderStatusCancelled, enums.OrderStatusCompleted},
	}
	for _, pair := range denied {
		if CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be denied", pair[0], pair[1])
		}
	}
}

func TestCheckTransitionErrors(t *testing.T) {
	t.Parallel()

	err := CheckTransition(enums.OrderStatusCompleted, enums.OrderStatusCancelled)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}

	err = CheckTransition(enums.OrderStatusPending, enums.OrderStatus("shipped"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := CheckTransition(enums.OrderStatusPending, enums.OrderStatusPending); err != nil {
		t.Fatalf("repeat of current status should pass: %v", err)
	}
}
