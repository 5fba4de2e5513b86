package sales

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
)

const listQuery = `SELECT so.id, so.doc_number, so.order_date, so.company_id, so.branch_id, b.name, c.name, so.status, so.total::float8
FROM sales_orders so
JOIN branches b ON b.id = so.branch_id
JOIN customers c ON c.id = so.customer_id
WHERE 1=1`

// Repository reads sales orders.
type Repository struct {
	db catalog.DB
}

// NewRepository builds a Repository over a pgx pool or transaction.
func NewRepository(db catalog.DB) *Repository {
	return &Repository{db: db}
}

// ListScoped returns the sales orders visible to the session.
func (r *Repository) ListScoped(ctx context.Context, scope filters.Session) ([]Sale, error) {
	query, args := catalog.Scoped(listQuery, scope,
		catalog.ScopeColumns{Company: "so.company_id", Branch: "so.branch_id"},
		"so.order_date DESC, so.id DESC")
	return catalog.List(ctx, r.db, query, args, scanSale)
}

func scanSale(row pgx.CollectableRow) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.Number, &s.Date, &s.CompanyID, &s.BranchID, &s.BranchName, &s.Customer, &s.Status, &s.Total)
	return s, err
}
