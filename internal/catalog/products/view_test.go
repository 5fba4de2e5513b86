package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/catalog/catalogtest"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/tablestate"
)

func sampleProducts() []Product {
	return []Product{
		{ID: 1, SKU: "TAL-10", Name: "Taladro 10mm", BrandID: 2, BrandName: "Bosch", Price: 89.9, Active: true},
		{ID: 2, SKU: "MAR-01", Name: "Martillo", BrandID: 3, BrandName: "Truper", Price: 12.5, Active: true},
		{ID: 3, SKU: "SIE-22", Name: "Sierra circular", BrandID: 2, BrandName: "Bosch", Price: 149, Active: false},
	}
}

func TestDeclarationsAreValid(t *testing.T) {
	view := View(nil, catalog.ListSettings{DefaultPageSize: 20, PageSizes: []int{10, 20, 50}})
	require.NoError(t, view.Filters.Validate())
	require.NoError(t, view.Table.Validate())
}

func TestPriceRangeAndActive(t *testing.T) {
	effective := filters.NewFilters(map[string]filters.Value{
		FieldPriceMin: filters.Number(10),
		FieldPriceMax: filters.Number(100),
		FieldActive:   filters.Bool(true),
	})
	got := filters.FilterRows(sampleProducts(), effective, Matchers())
	assert.Len(t, got, 2)

	effective = effective.With(FieldBrand, filters.Int(2))
	got = filters.FilterRows(sampleProducts(), effective, Matchers())
	require.Len(t, got, 1)
	assert.Equal(t, "TAL-10", got[0].SKU)
}

func TestInactiveFilterKeepsFalseRows(t *testing.T) {
	effective := filters.NewFilters(map[string]filters.Value{FieldActive: filters.Bool(false)})
	got := filters.FilterRows(sampleProducts(), effective, Matchers())
	require.Len(t, got, 1)
	assert.Equal(t, "SIE-22", got[0].SKU)
}

func TestGridColumnFilterByBrand(t *testing.T) {
	page := Grid().Apply(sampleProducts(), tablestate.State{
		PageSize:      10,
		Sorting:       []tablestate.Sort{{ColumnID: "price", Direction: tablestate.Asc}},
		ColumnFilters: map[string]tablestate.FilterValue{"brand": {Items: []string{"Bosch"}}},
	})
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "TAL-10", page.Rows[0].SKU)
	assert.Equal(t, 1, page.PageCount)
}

func TestListScopedIgnoresBranch(t *testing.T) {
	db := &catalogtest.DB{}
	_, err := NewRepository(db).ListScoped(context.Background(), filters.Session{CompanyID: 4, BranchID: 9})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(4)}, db.Last().Args)
	assert.Contains(t, db.Last().SQL, "p.company_id = $1 ORDER BY p.name, p.id")
}
