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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shopflow/shopflow/internal/config"
	"github.com/shopflow/shopflow/internal/health"
	"github.com/shopflow/shopflow/internal/retry"
	"github.com/shopflow/shopflow/internal/search"
	"github.com/shopflow/shopflow/internal/telemetry"
)

const productsIndex = "products"

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "search", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("search", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	index, err := search.NewIndex(cfg.ElasticsearchAddresses, productsIndex)
	if err != nil {
		logger.Error("failed to create elasticsearch client", "error", err)
		os.Exit(1)
	}

	// Best effort: the service still serves (and reports its state through
	// /health) when the index cannot be prepared at startup.
	seedPath := os.Getenv("SEARCH_DATA_PATH")
	if seedPath == "" {
		seedPath = "data/search_data.json"
	}
	err = retry.Do(ctx, cfg.ConnectAttempts, cfg.ConnectRetryDelay, func(ctx context.Context) error {
		return index.Ensure(ctx, seedPath)
	})
	if err != nil {
		logger.Error("failed to initialize products index", "error", err)
	}

	handler := search.NewHandler(index, logger)

	reporter := health.NewReporter(cfg.ProbeTimeout, cfg.HealthFailureStatus, logger)
	reporter.AddMandatory("elasticsearch", index.Ping)
	reporter.AddOptional("index", func(ctx context.Context) error {
		exists, err := index.Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return errors.New("products index missing")
		}
		return nil
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", handler.HandleSearch)
	mux.HandleFunc("GET /health", reporter.Handler())
	mux.Handle("GET /metrics", metricsHandler)

	port := cfg.Port
	if port == "" {
		port = "8083"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      otelhttp.NewHandler(telemetry.RequestMetrics("search", mux), "search"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting search service", "port", port)
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
