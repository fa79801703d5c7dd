package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/minhvnd/lumenshop-backend/api/routes"
	"github.com/minhvnd/lumenshop-backend/internal/cart"
	"github.com/minhvnd/lumenshop-backend/internal/catalog"
	checkoutsvc "github.com/minhvnd/lumenshop-backend/internal/checkout"
	ordersvc "github.com/minhvnd/lumenshop-backend/internal/orders"
	"github.com/minhvnd/lumenshop-backend/internal/payments/vnpay"
	"github.com/minhvnd/lumenshop-backend/internal/warranty"
	"github.com/minhvnd/lumenshop-backend/pkg/config"
	"github.com/minhvnd/lumenshop-backend/pkg/db"
	"github.com/minhvnd/lumenshop-backend/pkg/logger"
	"github.com/minhvnd/lumenshop-backend/pkg/metrics"
	"github.com/minhvnd/lumenshop-backend/pkg/migrate"
	"github.com/minhvnd/lumenshop-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	commerceMetrics := metrics.NewCommerceMetrics(registry)

	orderRepo := ordersvc.NewRepository(dbClient.DB())
	warrantyIssuer := warranty.NewIssuer(cfg.Warranty.DefaultMonths, commerceMetrics, logg)
	warrantyRepo := warranty.NewRepository(dbClient.DB())

	orderService, err := ordersvc.NewService(dbClient, orderRepo, ordersvc.LedgerReleaser{}, warrantyIssuer, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		cart.NewRepository(dbClient.DB()),
		catalog.NewRepository(dbClient.DB()),
		orderRepo,
		cfg.Checkout,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	gateway, err := vnpay.NewGateway(cfg.VNPay)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway", err)
		os.Exit(1)
	}
	callbackGuard, err := vnpay.NewIdempotencyGuard(redisClient, cfg.Warranty.CallbackTTL, "vnpay_callback")
	if err != nil {
		logg.Error(context.Background(), "failed to create callback guard", err)
		os.Exit(1)
	}
	callbackService, err := vnpay.NewCallbackService(gateway, callbackGuard, orderService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create callback service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DBPinger:        dbClient,
			RedisPinger:     redisClient,
			CheckoutService: checkoutService,
			OrderService:    orderService,
			WarrantyRepo:    warrantyRepo,
			PaymentGateway:  gateway,
			CallbackService: callbackService,
			Metrics:         commerceMetrics,
			Registry:        registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
