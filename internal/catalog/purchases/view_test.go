package purchases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/catalog/catalogtest"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/tablestate"
)

func day(raw string) time.Time {
	t, _ := time.Parse(filters.DateLayout, raw)
	return t
}

func samplePurchases() []Purchase {
	return []Purchase{
		{ID: 1, Number: "OC-001", Date: day("2026-03-02"), CompanyID: 4, BranchID: 7, BranchName: "Centro", Supplier: "Aceros del Norte", Status: StatusPaid, Total: 1200},
		{ID: 2, Number: "OC-002", Date: day("2026-03-10"), CompanyID: 4, BranchID: 8, BranchName: "Puerto", Supplier: "Papelera Sur", Status: StatusDraft, Total: 80.5},
		{ID: 3, Number: "OC-003", Date: day("2026-04-01"), CompanyID: 4, BranchID: 7, BranchName: "Centro", Supplier: "aceros andinos", Status: StatusReceived, Total: 430},
	}
}

func TestDeclarationsAreValid(t *testing.T) {
	view := View(nil, catalog.ListSettings{DefaultPageSize: 10, PageSizes: []int{10, 20}})
	require.NoError(t, view.Filters.Validate())
	require.NoError(t, view.Table.Validate())
	assert.Equal(t, []string{"number", "date", "supplier", "status", "total"}, view.Table.SortableColumns)
}

func TestMatchersApplyEffectiveFilters(t *testing.T) {
	from, err := filters.ParseValue(filters.KindDate, "2026-03-05")
	require.NoError(t, err)
	effective := filters.NewFilters(map[string]filters.Value{
		catalog.FieldDateFrom: from,
		FieldSupplier:         filters.String("ACEROS"),
	})
	got := filters.FilterRows(samplePurchases(), effective, Matchers())
	require.Len(t, got, 1)
	assert.Equal(t, "OC-003", got[0].Number)

	effective = filters.NewFilters(map[string]filters.Value{
		catalog.FieldBranch: filters.Int(7),
		catalog.FieldStatus: filters.List(StatusPaid, StatusReceived),
	})
	got = filters.FilterRows(samplePurchases(), effective, Matchers())
	assert.Len(t, got, 2)
}

func TestGridSortsByTotal(t *testing.T) {
	page := Grid().Apply(samplePurchases(), tablestate.State{
		PageSize: 10,
		Sorting:  []tablestate.Sort{{ColumnID: "total", Direction: tablestate.Desc}},
	})
	require.Len(t, page.Rows, 3)
	assert.Equal(t, []string{"OC-001", "OC-003", "OC-002"},
		[]string{page.Rows[0].Number, page.Rows[1].Number, page.Rows[2].Number})
}

func TestListScopedRestrictsToSession(t *testing.T) {
	db := &catalogtest.DB{Rows: [][]any{
		{int64(1), "OC-001", day("2026-03-02"), int64(4), int64(7), "Centro", "Aceros del Norte", StatusPaid, 1200.0},
	}}
	repo := NewRepository(db)

	rows, err := repo.ListScoped(context.Background(), filters.Session{CompanyID: 4, BranchID: 7})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Aceros del Norte", rows[0].Supplier)

	call := db.Last()
	assert.True(t, strings.Contains(call.SQL, "po.company_id = $1 AND po.branch_id = $2"))
	assert.Equal(t, []any{int64(4), int64(7)}, call.Args)
}
