package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shopflow/shopflow/internal/config"
	"github.com/shopflow/shopflow/internal/frontend"
	"github.com/shopflow/shopflow/internal/health"
	"github.com/shopflow/shopflow/internal/messaging"
	"github.com/shopflow/shopflow/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "frontend", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("frontend", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	conn, err := messaging.Dial(ctx, cfg.RabbitURL, cfg.ConnectAttempts, cfg.ConnectRetryDelay)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer func() { _ = conn.Close() }()

	consumer, err := messaging.NewConsumer(conn, messaging.OrdersQueue, "frontend")
	if err != nil {
		logger.Error("failed to create consumer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = consumer.Close() }()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	eventHandler := frontend.NewOrderEventHandler(cfg.OrderServiceURL, httpClient, logger)

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		logger.Info("starting order consumer", "queue", messaging.OrdersQueue)
		if err := consumer.Consume(consumerCtx, eventHandler.Handle); err != nil {
			if consumerCtx.Err() != nil {
				logger.Info("order consumer stopped")
				return
			}
			logger.Error("consumer error", "error", err)
		}
	}()

	handler := frontend.NewHandler(
		frontend.NewServiceProxy(cfg.OrderServiceURL, httpClient),
		frontend.NewServiceProxy(cfg.CatalogServiceURL, httpClient),
		frontend.NewServiceProxy(cfg.SearchServiceURL, httpClient),
		logger,
	)

	reporter := health.NewReporter(cfg.ProbeTimeout, cfg.HealthFailureStatus, logger)
	reporter.AddMandatory("message_queue", messaging.Probe(cfg.RabbitURL, cfg.ProbeTimeout))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handler.HandleHome)
	mux.HandleFunc("POST /order", handler.HandleOrders)
	mux.HandleFunc("POST /create-order", handler.HandleOrders)
	mux.HandleFunc("GET /orders", handler.HandleOrders)
	mux.HandleFunc("GET /orders/{id}", handler.HandleOrders)
	mux.HandleFunc("GET /catalog", handler.HandleCatalog)
	mux.HandleFunc("GET /catalog/{id}", handler.HandleCatalog)
	mux.HandleFunc("GET /search", handler.HandleSearch)
	mux.HandleFunc("GET /health", reporter.Handler())
	mux.Handle("GET /metrics", metricsHandler)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      otelhttp.NewHandler(telemetry.RequestMetrics("frontend", mux), "frontend"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting frontend service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	// Stop the consumer after the HTTP server: no new deliveries are taken,
	// the in-flight message finishes and is acked before Consume returns.
	stopConsumer()
	select {
	case <-consumerDone:
	case <-time.After(10 * time.Second):
		logger.Error("consumer did not drain in time")
	}
}
