// Package brands is the brand list view and the source of brand options.
package brands

import (
	"strconv"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/grid"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/httpview"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/tablestate"
)

// Brand filter keys.
const (
	FieldName   = "nombre"
	FieldActive = "activo"
)

// Definition declares the brand filter panel.
func Definition() filters.Definition {
	return filters.Definition{
		Categories: []filters.Category{
			{Name: "nombre", Fields: []filters.Field{{Key: FieldName, Kind: filters.KindString}}},
			{Name: "estado", Fields: []filters.Field{{Key: FieldActive, Kind: filters.KindBool}}},
		},
	}
}

// Matchers evaluates the panel fields against rows.
func Matchers() filters.Matchers[Brand] {
	return filters.Matchers[Brand]{
		FieldName:   filters.MatchContains(func(b Brand) string { return b.Name }),
		FieldActive: filters.MatchBool(func(b Brand) bool { return b.Active }),
	}
}

// Grid declares the rendered columns.
func Grid() *grid.Grid[Brand] {
	return grid.New(
		grid.Column[Brand]{ID: "name", Sortable: true, Value: func(b Brand) string { return b.Name }},
		grid.Column[Brand]{ID: "products", Sortable: true,
			Value:   func(b Brand) string { return strconv.FormatInt(b.Products, 10) },
			SortKey: func(b Brand) float64 { return float64(b.Products) }},
		grid.Column[Brand]{ID: "active", Filter: grid.FilterIncludes, Value: func(b Brand) string { return strconv.FormatBool(b.Active) }},
	)
}

// View assembles the brands list view.
func View(src httpview.Source[Brand], settings catalog.ListSettings) httpview.View[Brand] {
	g := Grid()
	return httpview.View[Brand]{
		Name:     "brands",
		Path:     "/brands/",
		Filters:  Definition(),
		Matchers: Matchers(),
		Grid:     g,
		Source:   src,
		Table: catalog.TableConfig(settings, g,
			[]tablestate.Sort{{ColumnID: "name", Direction: tablestate.Asc}},
			tablestate.Column{ColumnID: "name", SearchKey: "q", Type: tablestate.ParamString},
		),
	}
}
