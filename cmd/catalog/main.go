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

	"github.com/shopflow/shopflow/internal/catalog"
	"github.com/shopflow/shopflow/internal/config"
	"github.com/shopflow/shopflow/internal/health"
	"github.com/shopflow/shopflow/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "catalog", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("catalog", "0.1.0")
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

	repo := catalog.NewCatalogRepository(db)
	handler := catalog.NewHandler(repo, logger)

	reporter := health.NewReporter(cfg.ProbeTimeout, cfg.HealthFailureStatus, logger)
	reporter.AddMandatory("database", repo.Ping)
	reporter.AddOptional("catalog_table", func(ctx context.Context) error {
		if !repo.TableExists(ctx) {
			return errors.New("catalog table missing")
		}
		return nil
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /catalog", handler.HandleList)
	mux.HandleFunc("GET /catalog/{id}", handler.HandleGet)
	mux.HandleFunc("GET /health", reporter.Handler())
	mux.Handle("GET /metrics", metricsHandler)

	port := cfg.Port
	if port == "" {
		port = "8082"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      otelhttp.NewHandler(telemetry.RequestMetrics("catalog", mux), "catalog"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting catalog service", "port", port)
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
