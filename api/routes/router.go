package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minhvnd/lumenshop-backend/api/controllers"
	"github.com/minhvnd/lumenshop-backend/api/middleware"
	checkoutsvc "github.com/minhvnd/lumenshop-backend/internal/checkout"
	ordersvc "github.com/minhvnd/lumenshop-backend/internal/orders"
	"github.com/minhvnd/lumenshop-backend/internal/payments/vnpay"
	"github.com/minhvnd/lumenshop-backend/internal/warranty"
	"github.com/minhvnd/lumenshop-backend/pkg/config"
	"github.com/minhvnd/lumenshop-backend/pkg/db"
	"github.com/minhvnd/lumenshop-backend/pkg/logger"
	"github.com/minhvnd/lumenshop-backend/pkg/metrics"
	"github.com/minhvnd/lumenshop-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DBPinger        db.Pinger
	RedisPinger     redis.Pinger
	CheckoutService *checkoutsvc.Service
	OrderService    *ordersvc.Service
	WarrantyRepo    *warranty.Repository
	PaymentGateway  *vnpay.Gateway
	CallbackService *vnpay.CallbackService
	Metrics         *metrics.CommerceMetrics
	Registry        *prometheus.Registry
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, d.DBPinger, d.RedisPinger))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/checkout", controllers.Checkout(d.CheckoutService, d.Metrics, d.Logger))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(d.OrderService, d.Logger))
			r.Get("/{orderID}", controllers.OrderDetail(d.OrderService, d.Logger))
			r.Post("/{orderID}/status", controllers.OrderStatusChange(d.OrderService, d.Metrics, d.Logger))
			r.Get("/{orderID}/warranties", controllers.OrderWarranties(d.WarrantyRepo, d.Logger))
			r.Post("/{orderID}/warranties/reissue", controllers.OrderWarrantyReissue(d.OrderService, d.WarrantyRepo, d.Logger))
		})

		r.Route("/payments/vnpay", func(r chi.Router) {
			r.Get("/redirect", controllers.PaymentRedirect(d.PaymentGateway, d.OrderService, d.Logger))
			r.Get("/return", controllers.PaymentReturn(d.CallbackService, d.Metrics, d.Logger))
		})
	})

	return r
}
