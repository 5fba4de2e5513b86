// Package purchases is the purchase order list view.
package purchases

import (
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/grid"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/httpview"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/tablestate"
)

// FieldSupplier filters on the supplier name.
const FieldSupplier = "proveedor"

// Definition declares the purchase filter panel.
func Definition() filters.Definition {
	return filters.Definition{
		Categories: []filters.Category{
			catalog.DateRangeCategory(),
			catalog.OrganizationCategory(true),
			{Name: "proveedor", Fields: []filters.Field{{Key: FieldSupplier, Kind: filters.KindString}}},
			catalog.StatusCategory(),
		},
		Dependencies: []filters.Dependency{catalog.BranchDependency()},
	}
}

// Matchers evaluates the panel fields against rows.
func Matchers() filters.Matchers[Purchase] {
	return filters.Matchers[Purchase]{
		catalog.FieldDateFrom: filters.MatchDateFrom(func(p Purchase) time.Time { return p.Date }),
		catalog.FieldDateTo:   filters.MatchDateTo(func(p Purchase) time.Time { return p.Date }),
		catalog.FieldCompany:  filters.MatchID(func(p Purchase) int64 { return p.CompanyID }),
		catalog.FieldBranch:   filters.MatchID(func(p Purchase) int64 { return p.BranchID }),
		FieldSupplier:         filters.MatchContains(func(p Purchase) string { return p.Supplier }),
		catalog.FieldStatus:   filters.MatchOneOf(func(p Purchase) string { return p.Status }),
	}
}

// Grid declares the rendered columns.
func Grid() *grid.Grid[Purchase] {
	return grid.New(
		grid.Column[Purchase]{ID: "number", Sortable: true, Value: func(p Purchase) string { return p.Number }},
		grid.Column[Purchase]{ID: "date", Sortable: true,
			Value:   func(p Purchase) string { return p.Date.Format(filters.DateLayout) },
			SortKey: func(p Purchase) float64 { return float64(p.Date.Unix()) }},
		grid.Column[Purchase]{ID: "branch", Filter: grid.FilterIncludes, Value: func(p Purchase) string { return p.BranchName }},
		grid.Column[Purchase]{ID: "supplier", Sortable: true, Value: func(p Purchase) string { return p.Supplier }},
		grid.Column[Purchase]{ID: "status", Sortable: true, Filter: grid.FilterIncludes, Value: func(p Purchase) string { return p.Status }},
		grid.Column[Purchase]{ID: "total", Sortable: true,
			Value:   func(p Purchase) string { return strconv.FormatFloat(p.Total, 'f', 2, 64) },
			SortKey: func(p Purchase) float64 { return p.Total }},
	)
}

// View assembles the purchases list view.
func View(src httpview.Source[Purchase], settings catalog.ListSettings) httpview.View[Purchase] {
	g := Grid()
	return httpview.View[Purchase]{
		Name:     "purchases",
		Path:     "/purchases/",
		Filters:  Definition(),
		Matchers: Matchers(),
		Grid:     g,
		Source:   src,
		Table: catalog.TableConfig(settings, g,
			[]tablestate.Sort{{ColumnID: "date", Direction: tablestate.Desc}},
			tablestate.Column{ColumnID: "supplier", SearchKey: "supplier", Type: tablestate.ParamString},
			tablestate.Column{ColumnID: "status", SearchKey: "status", Type: tablestate.ParamArray},
			tablestate.Column{ColumnID: "branch", SearchKey: "branch", Type: tablestate.ParamArray},
		),
	}
}
