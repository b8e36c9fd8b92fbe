package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shopflow/shopflow/internal/config"
	"github.com/shopflow/shopflow/internal/health"
	"github.com/shopflow/shopflow/internal/messaging"
	"github.com/shopflow/shopflow/internal/orders"
	"github.com/shopflow/shopflow/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "order", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("order", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	db, err := telemetry.OpenDB(ctx, cfg.PostgresDSN(), cfg.ConnectAttempts, cfg.ConnectRetryDelay)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	conn, err := messaging.Dial(ctx, cfg.RabbitURL, cfg.ConnectAttempts, cfg.ConnectRetryDelay)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer func() { _ = conn.Close() }()

	publisher, err := messaging.NewPublisher(conn, messaging.OrdersQueue)
	if err != nil {
		logger.Error("failed to create publisher", "error", err)
		os.Exit(1)
	}
	defer func() { _ = publisher.Close() }()

	repo := orders.NewOrderRepository(db)
	handler := orders.NewHandler(repo, publisher, logger)

	reporter := health.NewReporter(cfg.ProbeTimeout, cfg.HealthFailureStatus, logger)
	reporter.AddMandatory("database", repo.Ping)
	reporter.AddMandatory("message_queue", messaging.Probe(cfg.RabbitURL, cfg.ProbeTimeout))
	reporter.AddOptional("orders_table", func(ctx context.Context) error {
		if !repo.SchemaExists(ctx) {
			return errors.New("orders table missing")
		}
		return nil
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handler.HandleHome)
	mux.HandleFunc("POST /order", handler.HandleCreate)
	// Deprecated route kept for older clients; /order is canonical.
	mux.HandleFunc("POST /create-order", handler.HandleCreate)
	mux.HandleFunc("GET /orders", handler.HandleList)
	mux.HandleFunc("GET /orders/{id}", handler.HandleGet)
	mux.HandleFunc("GET /health", reporter.Handler())
	mux.Handle("GET /metrics", metricsHandler)

	port := cfg.Port
	if port == "" {
		port = "8081"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      otelhttp.NewHandler(telemetry.RequestMetrics("order", mux), "order"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting order service", "port", port)
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
		os.Exit(1)
	}
}
