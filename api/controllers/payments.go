package controllers

import (
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/minhvnd/lumenshop-backend/api/responses"
	ordersvc "github.com/minhvnd/lumenshop-backend/internal/orders"
	"github.com/minhvnd/lumenshop-backend/internal/payments/vnpay"
	"github.com/minhvnd/lumenshop-backend/pkg/enums"
	"github.com/minhvnd/lumenshop-backend/pkg/errors"
	"github.com/minhvnd/lumenshop-backend/pkg/logger"
	"github.com/minhvnd/lumenshop-backend/pkg/metrics"
)

// PaymentRedirect builds the signed hosted-payment URL for a pending order.
func PaymentRedirect(gw *vnpay.Gateway, svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(r.URL.Query().Get("order_id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				errors.New(errors.CodeValidation, "order_id query parameter must be a valid uuid"))
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order.PaymentStatus == enums.PaymentStatusPaid {
			responses.WriteError(r.Context(), logg, w,
				errors.New(errors.CodeStateConflict, "order is already paid"))
			return
		}
		if order.Status.IsTerminal() {
			responses.WriteError(r.Context(), logg, w,
				errors.New(errors.CodeStateConflict, "order no longer accepts payment"))
			return
		}

		redirectURL, err := gw.BuildRedirectURL(vnpay.RedirectRequest{
			Order:    order,
			ClientIP: clientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"redirect_url": redirectURL})
	}
}

type paymentReturnResponse struct {
	Accepted bool           `json:"accepted"`
	Success  bool           `json:"success"`
	Order    *orderResponse `json:"order,omitempty"`
}

// PaymentReturn handles the signed gateway callback after the customer pays.
func PaymentReturn(svc *vnpay.CallbackService, m *metrics.CommerceMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		outcome, err := svc.Handle(r.Context(), r.URL.Query())
		if err != nil {
			m.IncPaymentCallback("rejected")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := paymentReturnResponse{Accepted: outcome.Accepted, Success: outcome.Success}
		switch {
		case !outcome.Accepted:
			m.IncPaymentCallback("rejected")
		case outcome.Success:
			m.IncPaymentCallback("success")
		default:
			m.IncPaymentCallback("failed")
		}
		if outcome.Order != nil {
			view := newOrderResponse(outcome.Order)
			resp.Order = &view
		}
		responses.WriteSuccess(w, resp)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
