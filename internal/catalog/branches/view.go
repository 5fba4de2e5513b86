// Package branches is the branch list view and the source of branch options.
package branches

import (
	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/grid"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/httpview"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/tablestate"
)

// FieldCity filters on the branch city.
const FieldCity = "ciudad"

// Definition declares the branch filter panel.
func Definition() filters.Definition {
	return filters.Definition{
		Categories: []filters.Category{
			catalog.OrganizationCategory(false),
			{Name: "ubicacion", Fields: []filters.Field{{Key: FieldCity, Kind: filters.KindString}}},
		},
	}
}

// Matchers evaluates the panel fields against rows.
func Matchers() filters.Matchers[Branch] {
	return filters.Matchers[Branch]{
		catalog.FieldCompany: filters.MatchID(func(b Branch) int64 { return b.CompanyID }),
		FieldCity:            filters.MatchContains(func(b Branch) string { return b.City }),
	}
}

// Grid declares the rendered columns.
func Grid() *grid.Grid[Branch] {
	return grid.New(
		grid.Column[Branch]{ID: "code", Sortable: true, Value: func(b Branch) string { return b.Code }},
		grid.Column[Branch]{ID: "name", Sortable: true, Value: func(b Branch) string { return b.Name }},
		grid.Column[Branch]{ID: "company", Sortable: true, Filter: grid.FilterIncludes, Value: func(b Branch) string { return b.CompanyName }},
		grid.Column[Branch]{ID: "city", Sortable: true, Value: func(b Branch) string { return b.City }},
	)
}

// View assembles the branches list view.
func View(src httpview.Source[Branch], settings catalog.ListSettings) httpview.View[Branch] {
	g := Grid()
	return httpview.View[Branch]{
		Name:     "branches",
		Path:     "/branches/",
		Filters:  Definition(),
		Matchers: Matchers(),
		Grid:     g,
		Source:   src,
		Table: catalog.TableConfig(settings, g,
			[]tablestate.Sort{{ColumnID: "company", Direction: tablestate.Asc}, {ColumnID: "name", Direction: tablestate.Asc}},
			tablestate.Column{ColumnID: "name", SearchKey: "q", Type: tablestate.ParamString},
			tablestate.Column{ColumnID: "company", SearchKey: "company", Type: tablestate.ParamArray},
		),
	}
}
