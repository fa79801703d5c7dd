package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/minhvnd/lumenshop-backend/api/responses"
	"github.com/minhvnd/lumenshop-backend/api/validators"
	checkoutsvc "github.com/minhvnd/lumenshop-backend/internal/checkout"
	"github.com/minhvnd/lumenshop-backend/pkg/errors"
	"github.com/minhvnd/lumenshop-backend/pkg/logger"
	"github.com/minhvnd/lumenshop-backend/pkg/metrics"
)

type checkoutRequest struct {
	CustomerID      uuid.UUID `json:"customer_id" validate:"required"`
	ShippingAddress string    `json:"shipping_address" validate:"max=500"`
}

// Checkout converts the customer's active cart into an order.
func Checkout(svc *checkoutsvc.Service, m *metrics.CommerceMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrderFromCart(r.Context(), payload.CustomerID, checkoutsvc.Input{
			ShippingAddress: payload.ShippingAddress,
		})
		if err != nil {
			if typed := errors.As(err); typed != nil {
				m.IncCheckoutFailure(string(typed.Code()))
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncOrderCreated()
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
