// Package sales is the sales order list view.
package sales

import (
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/grid"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/httpview"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/tablestate"
)

// FieldCustomer filters on the customer name.
const FieldCustomer = "cliente"

// Definition declares the sales filter panel.
func Definition() filters.Definition {
	return filters.Definition{
		Categories: []filters.Category{
			catalog.DateRangeCategory(),
			catalog.OrganizationCategory(true),
			{Name: "cliente", Fields: []filters.Field{{Key: FieldCustomer, Kind: filters.KindString}}},
			catalog.StatusCategory(),
		},
		Dependencies: []filters.Dependency{catalog.BranchDependency()},
	}
}

// Matchers evaluates the panel fields against rows.
func Matchers() filters.Matchers[Sale] {
	return filters.Matchers[Sale]{
		catalog.FieldDateFrom: filters.MatchDateFrom(func(s Sale) time.Time { return s.Date }),
		catalog.FieldDateTo:   filters.MatchDateTo(func(s Sale) time.Time { return s.Date }),
		catalog.FieldCompany:  filters.MatchID(func(s Sale) int64 { return s.CompanyID }),
		catalog.FieldBranch:   filters.MatchID(func(s Sale) int64 { return s.BranchID }),
		FieldCustomer:         filters.MatchContains(func(s Sale) string { return s.Customer }),
		catalog.FieldStatus:   filters.MatchOneOf(func(s Sale) string { return s.Status }),
	}
}

// Grid declares the rendered columns.
func Grid() *grid.Grid[Sale] {
	return grid.New(
		grid.Column[Sale]{ID: "number", Sortable: true, Value: func(s Sale) string { return s.Number }},
		grid.Column[Sale]{ID: "date", Sortable: true,
			Value:   func(s Sale) string { return s.Date.Format(filters.DateLayout) },
			SortKey: func(s Sale) float64 { return float64(s.Date.Unix()) }},
		grid.Column[Sale]{ID: "branch", Filter: grid.FilterIncludes, Value: func(s Sale) string { return s.BranchName }},
		grid.Column[Sale]{ID: "customer", Sortable: true, Value: func(s Sale) string { return s.Customer }},
		grid.Column[Sale]{ID: "status", Sortable: true, Filter: grid.FilterIncludes, Value: func(s Sale) string { return s.Status }},
		grid.Column[Sale]{ID: "total", Sortable: true,
			Value:   func(s Sale) string { return strconv.FormatFloat(s.Total, 'f', 2, 64) },
			SortKey: func(s Sale) float64 { return s.Total }},
	)
}

// View assembles the sales list view.
func View(src httpview.Source[Sale], settings catalog.ListSettings) httpview.View[Sale] {
	g := Grid()
	return httpview.View[Sale]{
		Name:     "sales",
		Path:     "/sales/",
		Filters:  Definition(),
		Matchers: Matchers(),
		Grid:     g,
		Source:   src,
		Table: catalog.TableConfig(settings, g,
			[]tablestate.Sort{{ColumnID: "date", Direction: tablestate.Desc}},
			tablestate.Column{ColumnID: "customer", SearchKey: "customer", Type: tablestate.ParamString},
			tablestate.Column{ColumnID: "status", SearchKey: "status", Type: tablestate.ParamArray},
			tablestate.Column{ColumnID: "branch", SearchKey: "branch", Type: tablestate.ParamArray},
		),
	}
}
