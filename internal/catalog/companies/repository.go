// Package companies serves the company options of the organisation filter.
package companies

import (
	"context"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
)

// Repository reads companies.
type Repository struct {
	db catalog.DB
}

// NewRepository builds a Repository.
func NewRepository(db catalog.DB) *Repository {
	return &Repository{db: db}
}

// Options lists the companies the session may select: its own company
// when bound to one, every company otherwise. It takes no parent.
func (r *Repository) Options(ctx context.Context, scope filters.Session, _ filters.Value) ([]filters.Option, error) {
	query, args := catalog.Scoped("SELECT c.id, c.name FROM companies c WHERE 1=1", scope,
		catalog.ScopeColumns{Company: "c.id"}, "c.name")
	return catalog.Options(ctx, r.db, query, args...)
}
