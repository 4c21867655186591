package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/openmarket-labs/vendorflow-backend/api/routes"
	"github.com/openmarket-labs/vendorflow-backend/internal/events"
	"github.com/openmarket-labs/vendorflow-backend/internal/orchestration"
	"github.com/openmarket-labs/vendorflow-backend/internal/orders"
	"github.com/openmarket-labs/vendorflow-backend/internal/splitter"
	"github.com/openmarket-labs/vendorflow-backend/internal/vendors"
	"github.com/openmarket-labs/vendorflow-backend/pkg/config"
	"github.com/openmarket-labs/vendorflow-backend/pkg/db"
	"github.com/openmarket-labs/vendorflow-backend/pkg/logger"
	"github.com/openmarket-labs/vendorflow-backend/pkg/metrics"
	"github.com/openmarket-labs/vendorflow-backend/pkg/migrate"
	"github.com/openmarket-labs/vendorflow-backend/pkg/pubsub"
	"github.com/openmarket-labs/vendorflow-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	publisher, err := events.NewPublisher(events.PublisherParams{
		Config: cfg.PubSub,
		Logger: logg,
		PubSub: pubsubClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create event publisher", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	coordinationMetrics := metrics.NewCoordinationMetrics(registry)

	vendorDirectory, err := vendors.NewDirectory(vendors.DirectoryParams{
		Repository: vendors.NewRepository(dbClient.DB()),
		Config:     cfg.Commission,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor directory", err)
		os.Exit(1)
	}

	orderSplitter, err := splitter.New(cfg.Settlement, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create splitter", err)
		os.Exit(1)
	}

	stateStore, err := orchestration.NewStateStore(redisClient, cfg.Coordination.ContextTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create state store", err)
		os.Exit(1)
	}

	executor, err := orchestration.NewExecutor(orchestration.ExecutorParams{
		Sink:       publisher,
		Store:      stateStore,
		Logger:     logg,
		Metrics:    coordinationMetrics,
		MaxRetries: cfg.Coordination.MaxStepRetries,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create executor", err)
		os.Exit(1)
	}

	coordinationService, err := orchestration.NewService(orchestration.ServiceParams{
		Orders:   orders.NewRepository(dbClient.DB()),
		Vendors:  vendorDirectory,
		Splitter: orderSplitter,
		Store:    stateStore,
		Leaser:   redisClient,
		Executor: executor,
		Config:   cfg.Coordination,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create coordination service", err)
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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			pubsubClient,
			coordinationService,
			registry,
		),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}
