package products

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
)

const listQuery = `SELECT p.id, p.sku, p.name, COALESCE(p.brand_id, 0), COALESCE(br.name, ''), p.price::float8, p.is_active
FROM products p
LEFT JOIN brands br ON br.id = p.brand_id
WHERE 1=1`

// Repository reads the product catalogue.
type Repository struct {
	db catalog.DB
}

// NewRepository builds a Repository.
func NewRepository(db catalog.DB) *Repository {
	return &Repository{db: db}
}

// ListScoped returns the products of the session company.
func (r *Repository) ListScoped(ctx context.Context, scope filters.Session) ([]Product, error) {
	query, args := catalog.Scoped(listQuery, scope, catalog.ScopeColumns{Company: "p.company_id"}, "p.name, p.id")
	return catalog.List(ctx, r.db, query, args, func(row pgx.CollectableRow) (Product, error) {
		var p Product
		err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.BrandID, &p.BrandName, &p.Price, &p.Active)
		return p, err
	})
}
