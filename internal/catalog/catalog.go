// Package catalog holds the helpers shared by the admin list view
// repositories: session scoping, row collection, and option queries.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/grid"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/tablestate"
)

// ErrSourceUnavailable reports a missing table, column, or grant.
var ErrSourceUnavailable = errors.New("catalog: source unavailable")

// DB is the query surface of a pgx pool or transaction.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ScopeColumns names the columns restricted by the session scope. Empty
// names are not restricted.
type ScopeColumns struct {
	Company string
	Branch  string
}

// Scoped appends the session predicates and the ordering to query, which
// must end in a WHERE clause. args are the parameters already referenced by
// query; scope parameters are numbered after them.
func Scoped(query string, session filters.Session, cols ScopeColumns, order string, args ...any) (string, []any) {
	if cols.Company != "" && session.CompanyID != 0 {
		args = append(args, session.CompanyID)
		query += " AND " + cols.Company + " = $" + strconv.Itoa(len(args))
	}
	if cols.Branch != "" && session.BranchID != 0 {
		args = append(args, session.BranchID)
		query += " AND " + cols.Branch + " = $" + strconv.Itoa(len(args))
	}
	if order != "" {
		query += " ORDER BY " + order
	}
	return query, args
}

// List runs query and collects every row through scan.
func List[T any](ctx context.Context, db DB, query string, args []any, scan pgx.RowToFunc[T]) ([]T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// Options runs a query returning (id, label) pairs.
func Options(ctx context.Context, db DB, query string, args ...any) ([]filters.Option, error) {
	return List(ctx, db, query, args, func(row pgx.CollectableRow) (filters.Option, error) {
		var (
			id    int64
			label string
		)
		if err := row.Scan(&id, &label); err != nil {
			return filters.Option{}, err
		}
		return filters.IDOption(id, label), nil
	})
}

// MapError wraps schema errors in ErrSourceUnavailable.
func MapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01", "42703", "42501":
			return fmt.Errorf("%w: %s", ErrSourceUnavailable, pgErr.Message)
		}
	}
	return fmt.Errorf("catalog: query: %w", err)
}

// ListSettings carries the configured pagination defaults.
type ListSettings struct {
	DefaultPageSize int
	PageSizes       []int
}

// TableConfig builds the URL state config of a view. Sortable columns come
// from the grid.
func TableConfig[T any](s ListSettings, g *grid.Grid[T], sorting []tablestate.Sort, columns ...tablestate.Column) tablestate.Config {
	return tablestate.Config{
		DefaultPageSize: s.DefaultPageSize,
		PageSizes:       s.PageSizes,
		SortableColumns: g.Sortable(),
		DefaultSorting:  sorting,
		Columns:         columns,
	}
}

// ParentID returns the numeric parent of an option request, or false.
func ParentID(parent filters.Value) (int64, bool) {
	if parent.IsEmpty() {
		return 0, false
	}
	id := parent.Int64()
	return id, id != 0
}

// Filter keys shared by several list views.
const (
	FieldDateFrom = "fecha_desde"
	FieldDateTo   = "fecha_hasta"
	FieldCompany  = "empresa_id"
	FieldBranch   = "sucursal_id"
	FieldStatus   = "estado"
)

// DateRangeCategory is the inclusive document date range.
func DateRangeCategory() filters.Category {
	return filters.Category{Name: "fecha_rango", Fields: []filters.Field{
		{Key: FieldDateFrom, Kind: filters.KindDate},
		{Key: FieldDateTo, Kind: filters.KindDate},
	}}
}

// OrganizationCategory selects a company and, when withBranch is set, one of
// its branches.
func OrganizationCategory(withBranch bool) filters.Category {
	cat := filters.Category{Name: "organizacion", Fields: []filters.Field{{Key: FieldCompany, Kind: filters.KindNumber}}}
	if withBranch {
		cat.Fields = append(cat.Fields, filters.Field{Key: FieldBranch, Kind: filters.KindNumber})
	}
	return cat
}

// BranchDependency refetches branch options whenever the company changes.
func BranchDependency() filters.Dependency {
	return filters.Dependency{Field: FieldBranch, DependsOn: FieldCompany, OnParentChange: filters.ActionClearAndRefetch}
}

// StatusCategory filters on a set of document states.
func StatusCategory() filters.Category {
	return filters.Category{Name: "estado", Fields: []filters.Field{{Key: FieldStatus, Kind: filters.KindList}}}
}
