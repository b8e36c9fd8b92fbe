package telemetry

import (
	"context"
	"database/sql"
	"time"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/shopflow/shopflow/internal/retry"
)

// OpenDB opens an instrumented postgres handle and verifies it with bounded
// linear-backoff pings.
func OpenDB(ctx context.Context, dsn string, attempts int, step time.Duration) (*sql.DB, error) {
	db, err := otelsql.Open("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, err
	}

	if err := retry.Do(ctx, attempts, step, db.PingContext); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
