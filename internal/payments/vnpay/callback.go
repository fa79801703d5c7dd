package vnpay

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/minhvnd/lumenshop-backend/pkg/db/models"
	pkgerrors "github.com/minhvnd/lumenshop-backend/pkg/errors"
	"github.com/minhvnd/lumenshop-backend/pkg/logger"
)

// OrderUpdater is the slice of the order service the callback needs.
type OrderUpdater interface {
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ApplyPaymentResult(ctx context.Context, orderID uuid.UUID, success bool, gatewayRef string) (*models.Order, error)
}

// Outcome is the handler's answer to one callback delivery. Accepted is false
// when the delivery was well-signed but referenced an unknown order.
type Outcome struct {
	Accepted bool
	Success  bool
	Order    *models.Order
}

// CallbackService processes gateway returns: verify the signature, fence
// duplicates, then record the payment outcome on the order.
type CallbackService struct {
	gateway *Gateway
	guard   *IdempotencyGuard
	orders  OrderUpdater
	logg    *logger.Logger
}

func NewCallbackService(gateway *Gateway, guard *IdempotencyGuard, orders OrderUpdater, logg *logger.Logger) (*CallbackService, error) {
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "callback service requires a gateway")
	}
	if guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "callback service requires an idempotency guard")
	}
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "callback service requires an order updater")
	}
	return &CallbackService{gateway: gateway, guard: guard, orders: orders, logg: logg}, nil
}

// Handle verifies and applies one callback delivery. Duplicate deliveries
// return the current order without touching it again; a well-signed delivery
// for an unknown order is acknowledged as rejected rather than errored, so
// the gateway stops retrying it.
func (s *CallbackService) Handle(ctx context.Context, query url.Values) (*Outcome, error) {
	data, err := s.gateway.VerifyCallback(query)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.Get(ctx, data.OrderID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "txn_ref", data.OrderID.String()), "payment callback for unknown order")
			}
			return &Outcome{Accepted: false}, nil
		}
		return nil, err
	}
	if data.AmountCents != order.TotalCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "callback amount does not match order total").
			WithDetails(map[string]any{
				"order_id": order.ID.String(),
				"expected": order.TotalCents,
				"got":      data.AmountCents,
			})
	}

	duplicate, err := s.guard.CheckAndMark(ctx, data.EventID())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency store unavailable")
	}
	if duplicate {
		if s.logg != nil {
			s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "duplicate payment callback ignored")
		}
		return &Outcome{Accepted: true, Success: data.Success(), Order: order}, nil
	}

	updated, err := s.orders.ApplyPaymentResult(ctx, data.OrderID, data.Success(), data.TransactionNo)
	if err != nil {
		// Unfence so the gateway's retry can be processed.
		_ = s.guard.Delete(ctx, data.EventID())
		return nil, err
	}

	if s.logg != nil {
		lctx := s.logg.WithOrderID(ctx, updated.ID.String())
		lctx = s.logg.WithField(lctx, "response_code", data.ResponseCode)
		s.logg.Info(lctx, "payment callback processed")
	}
	return &Outcome{Accepted: true, Success: data.Success(), Order: updated}, nil
}
