package catalog

import (
	"context"
	"database/sql"

	"github.com/shopflow/shopflow/internal/domain"
)

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price, stock
		FROM catalog
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *CatalogRepository) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	p := &domain.Product{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price, stock
		FROM catalog
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return p, nil
}

// TableExists reports whether the catalog table is queryable.
func (r *CatalogRepository) TableExists(ctx context.Context) bool {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM catalog LIMIT 1`).Scan(&one)
	return err == nil || err == sql.ErrNoRows
}

func (r *CatalogRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
