package orders

import (
	"context"
	"database/sql"

	"github.com/shopflow/shopflow/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Insert persists a single order row. The caller supplies the order id, so a
// retried insert with the same id is the only duplication risk, and the
// single-row statement is the atomicity boundary.
func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (order_id, product, quantity, created_at)
		VALUES ($1, $2, $3, $4)
	`, order.OrderID, order.Product, order.Quantity, order.CreatedAt)
	return err
}

func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT order_id, product, quantity, created_at
		FROM orders
		WHERE order_id = $1
	`, orderID).Scan(&order.OrderID, &order.Product, &order.Quantity, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product, quantity, created_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := []domain.Order{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.OrderID, &order.Product, &order.Quantity, &order.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// SchemaExists reports whether the orders table is queryable. Used for
// readiness only; any failure counts as missing.
func (r *OrderRepository) SchemaExists(ctx context.Context) bool {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM orders LIMIT 1`).Scan(&one)
	return err == nil || err == sql.ErrNoRows
}

func (r *OrderRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
