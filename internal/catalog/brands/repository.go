package brands

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
)

const listQuery = `SELECT br.id, br.name, (SELECT COUNT(*) FROM products p WHERE p.brand_id = br.id), br.is_active
FROM brands br
WHERE 1=1`

// Repository reads brands and serves them as filter options.
type Repository struct {
	db catalog.DB
}

// NewRepository builds a Repository.
func NewRepository(db catalog.DB) *Repository {
	return &Repository{db: db}
}

// ListScoped returns the brands of the session company.
func (r *Repository) ListScoped(ctx context.Context, scope filters.Session) ([]Brand, error) {
	query, args := catalog.Scoped(listQuery, scope, catalog.ScopeColumns{Company: "br.company_id"}, "br.name, br.id")
	return catalog.List(ctx, r.db, query, args, func(row pgx.CollectableRow) (Brand, error) {
		var b Brand
		err := row.Scan(&b.ID, &b.Name, &b.Products, &b.Active)
		return b, err
	})
}

// Options lists the active brands of the session company. It takes no
// parent.
func (r *Repository) Options(ctx context.Context, scope filters.Session, _ filters.Value) ([]filters.Option, error) {
	query, args := catalog.Scoped("SELECT br.id, br.name FROM brands br WHERE br.is_active", scope,
		catalog.ScopeColumns{Company: "br.company_id"}, "br.name")
	return catalog.Options(ctx, r.db, query, args...)
}
