package repository

import (
	"context"

	"salescrm_backend/internal/crm/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Catalog is the read-only brand/product view. Catalog CRUD belongs to an
// external collaborator; the CRM core only needs names for selection inputs
// and the current price for the won-transition deal-value snapshot.
type Catalog struct {
	pool *pgxpool.Pool
}

// NewCatalog creates the catalog reader.
func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

// ListBrands returns all brands ordered by name.
func (r *Catalog) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, price
		FROM brands
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Brand, 0)
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Price); err != nil {
			return nil, err
		}
		items = append(items, b)
	}

	return items, rows.Err()
}
