// Package products is the product catalogue list view.
package products

import (
	"strconv"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/grid"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/httpview"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/tablestate"
)

// Product filter keys.
const (
	FieldBrand    = "marca_id"
	FieldPriceMin = "precio_min"
	FieldPriceMax = "precio_max"
	FieldActive   = "activo"
)

// Definition declares the product filter panel.
func Definition() filters.Definition {
	return filters.Definition{
		Categories: []filters.Category{
			{Name: "marca", Fields: []filters.Field{{Key: FieldBrand, Kind: filters.KindNumber}}},
			{Name: "precio", Fields: []filters.Field{
				{Key: FieldPriceMin, Kind: filters.KindNumber},
				{Key: FieldPriceMax, Kind: filters.KindNumber},
			}},
			{Name: "estado", Fields: []filters.Field{{Key: FieldActive, Kind: filters.KindBool}}},
		},
	}
}

// Matchers evaluates the panel fields against rows.
func Matchers() filters.Matchers[Product] {
	return filters.Matchers[Product]{
		FieldBrand:    filters.MatchID(func(p Product) int64 { return p.BrandID }),
		FieldPriceMin: filters.MatchMin(func(p Product) float64 { return p.Price }),
		FieldPriceMax: filters.MatchMax(func(p Product) float64 { return p.Price }),
		FieldActive:   filters.MatchBool(func(p Product) bool { return p.Active }),
	}
}

// Grid declares the rendered columns.
func Grid() *grid.Grid[Product] {
	return grid.New(
		grid.Column[Product]{ID: "sku", Sortable: true, Value: func(p Product) string { return p.SKU }},
		grid.Column[Product]{ID: "name", Sortable: true, Value: func(p Product) string { return p.Name }},
		grid.Column[Product]{ID: "brand", Sortable: true, Filter: grid.FilterIncludes, Value: func(p Product) string { return p.BrandName }},
		grid.Column[Product]{ID: "price", Sortable: true,
			Value:   func(p Product) string { return strconv.FormatFloat(p.Price, 'f', 2, 64) },
			SortKey: func(p Product) float64 { return p.Price }},
		grid.Column[Product]{ID: "active", Filter: grid.FilterIncludes, Value: func(p Product) string { return strconv.FormatBool(p.Active) }},
	)
}

// View assembles the products list view.
func View(src httpview.Source[Product], settings catalog.ListSettings) httpview.View[Product] {
	g := Grid()
	return httpview.View[Product]{
		Name:     "products",
		Path:     "/products/",
		Filters:  Definition(),
		Matchers: Matchers(),
		Grid:     g,
		Source:   src,
		Table: catalog.TableConfig(settings, g,
			[]tablestate.Sort{{ColumnID: "name", Direction: tablestate.Asc}},
			tablestate.Column{ColumnID: "name", SearchKey: "q", Type: tablestate.ParamString},
			tablestate.Column{ColumnID: "brand", SearchKey: "brand", Type: tablestate.ParamArray},
		),
	}
}
