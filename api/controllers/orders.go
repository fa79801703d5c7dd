package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minhvnd/lumenshop-backend/api/responses"
	"github.com/minhvnd/lumenshop-backend/api/validators"
	ordersvc "github.com/minhvnd/lumenshop-backend/internal/orders"
	"github.com/minhvnd/lumenshop-backend/internal/warranty"
	"github.com/minhvnd/lumenshop-backend/pkg/enums"
	"github.com/minhvnd/lumenshop-backend/pkg/errors"
	"github.com/minhvnd/lumenshop-backend/pkg/logger"
	"github.com/minhvnd/lumenshop-backend/pkg/metrics"
)

func orderIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "orderID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New(errors.CodeValidation, "order id must be a valid uuid")
	}
	return id, nil
}

// OrderDetail returns one order with its line items.
func OrderDetail(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderList returns the orders belonging to the customer in the query string.
func OrderList(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := uuid.Parse(r.URL.Query().Get("customer_id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				errors.New(errors.CodeValidation, "customer_id query parameter must be a valid uuid"))
			return
		}

		list, err := svc.ListForCustomer(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(list))
		for i := range list {
			out = append(out, newOrderResponse(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type statusChangeRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderStatusChange applies a lifecycle transition to an order.
func OrderStatusChange(svc *ordersvc.Service, m *metrics.CommerceMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload statusChangeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				errors.New(errors.CodeValidation, "unknown order status").
					WithDetails(map[string]any{"status": payload.Status}))
			return
		}

		order, err := svc.Transition(r.Context(), orderID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncStatusChange(target.String())
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderWarrantyReissue retries warranty issuance for a completed order,
// filling in any line items that missed coverage when the order completed.
func OrderWarrantyReissue(svc *ordersvc.Service, repo *warranty.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.ReissueWarranties(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warranties, err := repo.ListByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newWarrantyResponses(warranties))
	}
}

// OrderWarranties lists the warranties issued for an order.
func OrderWarranties(repo *warranty.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warranties, err := repo.ListByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newWarrantyResponses(warranties))
	}
}
