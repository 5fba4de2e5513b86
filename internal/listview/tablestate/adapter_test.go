package tablestate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchasesConfig() Config {
	return Config{
		DefaultPageSize: 10,
		PageSizes:       []int{10, 20, 50},
		SortableColumns: []string{"fecha", "proveedor", "total"},
		Columns: []Column{
			{ColumnID: "proveedor", SearchKey: "proveedor", Type: ParamString},
			{ColumnID: "estado", SearchKey: "estado", Type: ParamArray},
		},
	}
}

// fakeLocation is an in-memory URL that records every navigation.
type fakeLocation struct {
	values url.Values
	modes  []NavigateMode
	onNav  func()
}

func (l *fakeLocation) Navigate(patch QueryPatch, mode NavigateMode) {
	l.values = patch.Apply(l.values)
	l.modes = append(l.modes, mode)
	if l.onNav != nil {
		l.onNav()
	}
}

func (l *fakeLocation) CurrentSearchParams() url.Values { return l.values }

func newAdapter(t *testing.T, query string) (*Adapter, *fakeLocation) {
	t.Helper()
	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	loc := &fakeLocation{values: values}
	a, err := NewAdapter(purchasesConfig(), loc, loc, nil)
	require.NoError(t, err)
	return a, loc
}

func TestDecodeDefaults(t *testing.T) {
	a, _ := newAdapter(t, "")
	st := a.State()
	assert.Equal(t, 0, st.PageIndex)
	assert.Equal(t, 10, st.PageSize)
	assert.Empty(t, st.Sorting)
	assert.Empty(t, st.ColumnFilters)
}

func TestDecodeReadsDeclaredKeys(t *testing.T) {
	a, _ := newAdapter(t, "page=3&pageSize=20&sort=fecha:desc,total:asc&proveedor=acme&estado=pagada,pendiente")
	st := a.State()
	assert.Equal(t, 2, st.PageIndex)
	assert.Equal(t, 20, st.PageSize)
	assert.Equal(t, []Sort{{ColumnID: "fecha", Direction: Desc}, {ColumnID: "total", Direction: Asc}}, st.Sorting)
	assert.Equal(t, FilterValue{Text: "acme"}, st.ColumnFilters["proveedor"])
	assert.Equal(t, FilterValue{Items: []string{"pagada", "pendiente"}}, st.ColumnFilters["estado"])
}

func TestMalformedURLFallsBackToDefaults(t *testing.T) {
	a, _ := newAdapter(t, "page=abc&pageSize=7&sort=password:asc,fecha:sideways&estado=%25zz")
	st := a.State()
	assert.Equal(t, 0, st.PageIndex)
	assert.Equal(t, 10, st.PageSize)
	assert.Empty(t, st.Sorting)
	assert.NotContains(t, st.ColumnFilters, "estado")

	a, _ = newAdapter(t, "page=-4&pageSize=0")
	assert.Equal(t, 0, a.State().PageIndex)
	assert.Equal(t, 10, a.State().PageSize)
}

func TestLocalChangesReplaceURL(t *testing.T) {
	a, loc := newAdapter(t, "other=keep")

	a.OnSortingChange(func([]Sort) []Sort { return []Sort{{ColumnID: "total", Direction: Desc}} })
	a.OnPaginationChange(func(p Pagination) Pagination { p.PageIndex = 4; return p })
	a.OnColumnFiltersChange(func(map[string]FilterValue) map[string]FilterValue {
		return map[string]FilterValue{"estado": {Items: []string{"anulada"}}, "proveedor": {}}
	})

	assert.Equal(t, []NavigateMode{Replace, Replace, Replace}, loc.modes)
	assert.Equal(t, "keep", loc.values.Get("other"))
	assert.Equal(t, "total:desc", loc.values.Get("sort"))
	assert.Equal(t, "5", loc.values.Get("page"))
	assert.Equal(t, "anulada", loc.values.Get("estado"))
	assert.False(t, loc.values.Has("proveedor"))
	assert.False(t, loc.values.Has("pageSize"))
}

func TestExternalNavigationIsRead(t *testing.T) {
	a, loc := newAdapter(t, "page=2")
	loc.values = url.Values{"page": {"7"}, "proveedor": {"globex"}}

	assert.True(t, a.SyncFromURL())
	st := a.State()
	assert.Equal(t, 6, st.PageIndex)
	assert.Equal(t, "globex", st.ColumnFilters["proveedor"].Text)
}

func TestEchoDuringWriteIsSkipped(t *testing.T) {
	a, loc := newAdapter(t, "")
	var synced []bool
	loc.onNav = func() { synced = append(synced, a.SyncFromURL()) }

	a.OnPaginationChange(func(p Pagination) Pagination { p.PageIndex = 1; return p })

	assert.Equal(t, []bool{false}, synced)
	assert.Equal(t, StatusIdle, a.Status())
	assert.Equal(t, 1, a.State().PageIndex)
}

func TestEnsurePageInRangeClampsAfterShrink(t *testing.T) {
	a, loc := newAdapter(t, "page=3")
	require.Equal(t, 2, a.State().PageIndex)
	assert.False(t, a.EnsurePageInRange(5))

	var clamps [][2]int
	a.OnClamp = func(from, to int) { clamps = append(clamps, [2]int{from, to}) }

	assert.True(t, a.EnsurePageInRange(1))
	assert.Equal(t, 0, a.State().PageIndex)
	assert.False(t, loc.values.Has("page"))

	assert.False(t, a.EnsurePageInRange(1))
	assert.Equal(t, 0, a.State().PageIndex)
	assert.Equal(t, [][2]int{{2, 0}}, clamps)
}

func TestEnsurePageInRangeWithNoRows(t *testing.T) {
	a, _ := newAdapter(t, "page=4")
	a.EnsurePageInRange(0)
	assert.Equal(t, 0, a.State().PageIndex)
	a.EnsurePageInRange(0)
	assert.Equal(t, 0, a.State().PageIndex)
}

func TestEnsurePageInRangeIsIdempotent(t *testing.T) {
	for _, pageCount := range []int{0, 1, 2, 3, 9} {
		a, _ := newAdapter(t, "page=6")
		a.EnsurePageInRange(pageCount)
		first := a.State().PageIndex
		a.EnsurePageInRange(pageCount)
		assert.Equal(t, first, a.State().PageIndex, "page count %d", pageCount)
		assert.LessOrEqual(t, first, max(0, pageCount-1))
	}
}

func TestRoundTrip(t *testing.T) {
	cfg := purchasesConfig()
	states := []State{
		cfg.DefaultState(),
		{PageIndex: 0, PageSize: 50, ColumnFilters: map[string]FilterValue{}},
		{
			PageIndex: 12,
			PageSize:  20,
			Sorting:   []Sort{{ColumnID: "proveedor", Direction: Asc}, {ColumnID: "fecha", Direction: Desc}},
			ColumnFilters: map[string]FilterValue{
				"proveedor": {Text: "Acme, Inc. 100%"},
				"estado":    {Items: []string{"a,b", "100%", "pagada"}},
			},
		},
	}
	for _, st := range states {
		values := Encode(cfg, st).Apply(url.Values{})
		encoded, err := url.ParseQuery(values.Encode())
		require.NoError(t, err)
		assert.Equal(t, st, Decode(cfg, encoded))
	}
}

func TestRoundTripWithDefaultSort(t *testing.T) {
	cfg := purchasesConfig()
	cfg.DefaultSorting = []Sort{{ColumnID: "fecha", Direction: Desc}}
	states := []State{
		cfg.DefaultState(),
		{PageSize: 10, Sorting: []Sort{}, ColumnFilters: map[string]FilterValue{}},
		{PageSize: 10, Sorting: []Sort{{ColumnID: "total", Direction: Asc}}, ColumnFilters: map[string]FilterValue{}},
	}
	for _, st := range states {
		values := Encode(cfg, st).Apply(url.Values{})
		encoded, err := url.ParseQuery(values.Encode())
		require.NoError(t, err)
		assert.Equal(t, st, Decode(cfg, encoded), values.Encode())
	}

	assert.False(t, Encode(cfg, cfg.DefaultState()).Apply(url.Values{}).Has("sort"))
	assert.Equal(t, SortNone, Encode(cfg, states[1]).Apply(url.Values{}).Get("sort"))
}

func TestParseSorting(t *testing.T) {
	cfg := purchasesConfig()
	assert.Equal(t, []Sort{}, ParseSorting(cfg, ""))
	assert.Equal(t, []Sort{}, ParseSorting(cfg, SortNone))
	assert.Equal(t, []Sort{{ColumnID: "total", Direction: Desc}}, ParseSorting(cfg, "total:desc,secreto:asc"))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, purchasesConfig().Validate())

	bad := purchasesConfig()
	bad.Columns = append(bad.Columns, Column{ColumnID: "pagina", SearchKey: "page"})
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = purchasesConfig()
	bad.DefaultPageSize = 15
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = purchasesConfig()
	bad.DefaultSorting = []Sort{{ColumnID: "secreto", Direction: Asc}}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}
