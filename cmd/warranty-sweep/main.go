package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/minhvnd/lumenshop-backend/internal/warranty"
	"github.com/minhvnd/lumenshop-backend/pkg/config"
	"github.com/minhvnd/lumenshop-backend/pkg/db"
	"github.com/minhvnd/lumenshop-backend/pkg/logger"
	"github.com/minhvnd/lumenshop-backend/pkg/metrics"
)

const jobName = "warranty-sweep"

func main() {
	logg := logger.New(logger.Options{ServiceName: jobName})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: jobName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := logg.WithField(context.Background(), "job", jobName)

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	jobMetrics := metrics.NewJobMetrics(prometheus.NewRegistry())

	start := time.Now()
	expired, err := warranty.NewRepository(dbClient.DB()).ExpireOverdue(ctx, time.Now().UTC())
	jobMetrics.ObserveDuration(jobName, time.Since(start))
	if err != nil {
		jobMetrics.IncFailure(jobName)
		logg.Error(ctx, "warranty sweep failed", err)
		os.Exit(1)
	}
	jobMetrics.IncSuccess(jobName)

	ctx = logg.WithField(ctx, "expired", expired)
	logg.Info(ctx, "warranty sweep completed")
}
