package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CommerceMetrics records order lifecycle and payment counters.
type CommerceMetrics struct {
	ordersCreated    prometheus.Counter
	checkoutFailures *prometheus.CounterVec
	paymentCallbacks *prometheus.CounterVec
	statusChanges    *prometheus.CounterVec
	warrantiesIssued prometheus.Counter
}

// NewCommerceMetrics registers the commerce metrics on the provided registerer.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders successfully created from carts.",
	})
	checkoutFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout attempts that failed, by error code.",
	}, []string{"code"})
	paymentCallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_callbacks_total",
		Help: "Payment gateway callbacks processed, by result.",
	}, []string{"result"})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Order status transitions applied, by target status.",
	}, []string{"to"})
	warrantiesIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warranties_issued_total",
		Help: "Warranties issued for completed orders.",
	})
	reg.MustRegister(ordersCreated, checkoutFailures, paymentCallbacks, statusChanges, warrantiesIssued)
	return &CommerceMetrics{
		ordersCreated:    ordersCreated,
		checkoutFailures: checkoutFailures,
		paymentCallbacks: paymentCallbacks,
		statusChanges:    statusChanges,
		warrantiesIssued: warrantiesIssued,
	}
}

// IncOrderCreated counts a successful checkout.
func (m *CommerceMetrics) IncOrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncCheckoutFailure counts a failed checkout by error code.
func (m *CommerceMetrics) IncCheckoutFailure(code string) {
	if m == nil || m.checkoutFailures == nil {
		return
	}
	m.checkoutFailures.WithLabelValues(normalizeLabel(code)).Inc()
}

// IncPaymentCallback counts a processed gateway callback.
func (m *CommerceMetrics) IncPaymentCallback(result string) {
	if m == nil || m.paymentCallbacks == nil {
		return
	}
	m.paymentCallbacks.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncStatusChange counts an applied status transition.
func (m *CommerceMetrics) IncStatusChange(to string) {
	if m == nil || m.statusChanges == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(to)).Inc()
}

// AddWarrantiesIssued counts warranties written for an order.
func (m *CommerceMetrics) AddWarrantiesIssued(n int) {
	if m == nil || m.warrantiesIssued == nil || n <= 0 {
		return
	}
	m.warrantiesIssued.Add(float64(n))
}
