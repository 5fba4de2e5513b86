package purchases

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
)

const listQuery = `SELECT po.id, po.doc_number, po.order_date, po.company_id, po.branch_id, b.name, s.name, po.status, po.total::float8
FROM purchase_orders po
JOIN branches b ON b.id = po.branch_id
JOIN suppliers s ON s.id = po.supplier_id
WHERE 1=1`

// Repository reads purchase orders.
type Repository struct {
	db catalog.DB
}

// NewRepository builds a Repository over a pgx pool or transaction.
func NewRepository(db catalog.DB) *Repository {
	return &Repository{db: db}
}

// ListScoped returns the purchase orders visible to the session.
func (r *Repository) ListScoped(ctx context.Context, scope filters.Session) ([]Purchase, error) {
	query, args := catalog.Scoped(listQuery, scope,
		catalog.ScopeColumns{Company: "po.company_id", Branch: "po.branch_id"},
		"po.order_date DESC, po.id DESC")
	return catalog.List(ctx, r.db, query, args, scanPurchase)
}

func scanPurchase(row pgx.CollectableRow) (Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.Number, &p.Date, &p.CompanyID, &p.BranchID, &p.BranchName, &p.Supplier, &p.Status, &p.Total)
	return p, err
}
