package brands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/catalog"
	"github.com/odyssey-erp/odyssey-admin/internal/catalog/catalogtest"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
)

func TestDeclarationsAreValid(t *testing.T) {
	view := View(nil, catalog.ListSettings{DefaultPageSize: 10})
	require.NoError(t, view.Filters.Validate())
	require.NoError(t, view.Table.Validate())
}

func TestNameFilterIsCaseInsensitive(t *testing.T) {
	rows := []Brand{{ID: 1, Name: "Bosch", Active: true}, {ID: 2, Name: "Truper", Active: true}, {ID: 3, Name: "BOSCH Pro", Active: false}}
	effective := filters.NewFilters(map[string]filters.Value{FieldName: filters.String("bosch")})
	assert.Len(t, filters.FilterRows(rows, effective, Matchers()), 2)

	effective = effective.With(FieldActive, filters.Bool(true))
	got := filters.FilterRows(rows, effective, Matchers())
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestOptionsOnlyActiveBrandsOfCompany(t *testing.T) {
	db := &catalogtest.DB{Rows: [][]any{{int64(2), "Bosch"}}}
	opts, err := NewRepository(db).Options(context.Background(), filters.Session{CompanyID: 4}, filters.Value{})
	require.NoError(t, err)
	assert.Equal(t, []filters.Option{{Value: "2", Label: "Bosch"}}, opts)
	assert.Equal(t, "SELECT br.id, br.name FROM brands br WHERE br.is_active AND br.company_id = $1 ORDER BY br.name", db.Last().SQL)
}

func TestListScopedScansRows(t *testing.T) {
	db := &catalogtest.DB{Rows: [][]any{{int64(1), "Bosch", int64(12), true}}}
	rows, err := NewRepository(db).ListScoped(context.Background(), filters.Session{})
	require.NoError(t, err)
	assert.Equal(t, []Brand{{ID: 1, Name: "Bosch", Products: 12, Active: true}}, rows)
	assert.Empty(t, db.Last().Args)
}
