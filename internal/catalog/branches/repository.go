package branches

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
)

const listQuery = `SELECT b.id, b.company_id, c.name, b.code, b.name, COALESCE(b.city, '')
FROM branches b
JOIN companies c ON c.id = b.company_id
WHERE 1=1`

// Repository reads branches and serves them as options of a company.
type Repository struct {
	db catalog.DB
}

// NewRepository builds a Repository.
func NewRepository(db catalog.DB) *Repository {
	return &Repository{db: db}
}

// ListScoped returns the branches visible to the session. A session bound
// to a branch only sees that branch.
func (r *Repository) ListScoped(ctx context.Context, scope filters.Session) ([]Branch, error) {
	query, args := catalog.Scoped(listQuery, scope,
		catalog.ScopeColumns{Company: "b.company_id", Branch: "b.id"}, "c.name, b.name")
	return catalog.List(ctx, r.db, query, args, func(row pgx.CollectableRow) (Branch, error) {
		var b Branch
		err := row.Scan(&b.ID, &b.CompanyID, &b.CompanyName, &b.Code, &b.Name, &b.City)
		return b, err
	})
}

// Options lists the branches of the company in parent. Companies outside
// the session scope yield no options.
func (r *Repository) Options(ctx context.Context, scope filters.Session, parent filters.Value) ([]filters.Option, error) {
	company, ok := catalog.ParentID(parent)
	if !ok || (scope.CompanyID != 0 && scope.CompanyID != company) {
		return []filters.Option{}, nil
	}
	query, args := catalog.Scoped("SELECT b.id, b.name FROM branches b WHERE b.company_id = $1",
		filters.Session{BranchID: scope.BranchID}, catalog.ScopeColumns{Branch: "b.id"}, "b.name", company)
	return catalog.Options(ctx, r.db, query, args...)
}
