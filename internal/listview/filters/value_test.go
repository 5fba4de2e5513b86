package filters

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasUnsavedChangesIgnoresOrder(t *testing.T) {
	a := NewFilters(map[string]Value{"estado": List("pagada", "pendiente"), "proveedor": String("Acme")})
	b := NewFilters(map[string]Value{"proveedor": String("Acme"), "estado": List("pendiente", "pagada")})
	assert.False(t, HasUnsavedChanges(a, b))

	c := b.With("proveedor", String("Globex"))
	assert.True(t, HasUnsavedChanges(a, c))
	assert.True(t, HasUnsavedChanges(a, b.Without("estado")))
	assert.False(t, HasUnsavedChanges(Filters{}, NewFilters(nil)))
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(KindNumber, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int64())

	v, err = ParseValue(KindList, "a, b,,c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, v.Items())

	v, err = ParseValue(KindDate, "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), v.Time())

	v, err = ParseValue(KindBool, "")
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())

	_, err = ParseValue(KindNumber, "abc")
	assert.ErrorIs(t, err, ErrKindMismatch)
	_, err = ParseValue(KindDate, "01/02/2024")
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestFiltersJSONKeepsKinds(t *testing.T) {
	in := NewFilters(map[string]Value{
		"fecha_desde": Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		"empresa_id":  Int(5),
		"activo":      Bool(false),
		"estado":      List("pagada"),
	})
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Filters
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, in.Equal(out))
	v, _ := out.Get("activo")
	assert.Equal(t, KindBool, v.Kind())
}

type purchaseRow struct {
	Supplier string
	Company  int64
	Status   string
	Date     time.Time
}

func TestFilterRows(t *testing.T) {
	rows := []purchaseRow{
		{Supplier: "ACME Corp", Company: 1, Status: "pagada", Date: time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC)},
		{Supplier: "Globex", Company: 1, Status: "pendiente", Date: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		{Supplier: "Acme Ltd", Company: 2, Status: "pagada", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	matchers := Matchers[purchaseRow]{
		"proveedor":   MatchContains(func(r purchaseRow) string { return r.Supplier }),
		"empresa_id":  MatchID(func(r purchaseRow) int64 { return r.Company }),
		"estado":      MatchOneOf(func(r purchaseRow) string { return r.Status }),
		"fecha_desde": MatchDateFrom(func(r purchaseRow) time.Time { return r.Date }),
		"fecha_hasta": MatchDateTo(func(r purchaseRow) time.Time { return r.Date }),
	}

	got := FilterRows(rows, NewFilters(map[string]Value{"proveedor": String("acme")}), matchers)
	assert.Len(t, got, 2)

	got = FilterRows(rows, NewFilters(map[string]Value{
		"fecha_desde": Date(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
		"fecha_hasta": Date(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)),
	}), matchers)
	assert.Len(t, got, 2)

	got = FilterRows(rows, NewFilters(map[string]Value{"empresa_id": Int(1), "estado": List("pagada")}), matchers)
	require.Len(t, got, 1)
	assert.Equal(t, "ACME Corp", got[0].Supplier)

	assert.Len(t, FilterRows(rows, Filters{}, matchers), 3)
}
