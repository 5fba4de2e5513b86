// Package grid evaluates table state against an in-memory row set: column
// filters, sorting and the current page slice.
package grid

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/odyssey-erp/odyssey-admin/internal/listview/tablestate"
)

// FilterMode selects how a column filter value is evaluated.
type FilterMode int

const (
	// FilterSubstring keeps rows whose cell contains the text, case-folded.
	FilterSubstring FilterMode = iota
	// FilterIncludes keeps rows whose cell equals one of the items.
	FilterIncludes
)

// Column describes one rendered column.
type Column[T any] struct {
	ID       string
	Sortable bool
	Filter   FilterMode
	// Value renders the cell text used for filtering and display.
	Value func(T) string
	// SortKey overrides Value for ordering, for numeric or date columns.
	SortKey func(T) float64
}

// Page is one computed page of rows.
type Page[T any] struct {
	Rows      []T `json:"rows"`
	Total     int `json:"total"`
	PageCount int `json:"page_count"`
}

// Grid evaluates table state over rows of T.
type Grid[T any] struct {
	columns map[string]Column[T]
	order   []string
}

// New builds a grid from its column declarations.
func New[T any](columns ...Column[T]) *Grid[T] {
	g := &Grid[T]{columns: make(map[string]Column[T], len(columns))}
	for _, c := range columns {
		g.columns[c.ID] = c
		g.order = append(g.order, c.ID)
	}
	return g
}

// Columns returns the declared column ids in order.
func (g *Grid[T]) Columns() []string {
	return slices.Clone(g.order)
}

// Sortable lists the ids of sortable columns.
func (g *Grid[T]) Sortable() []string {
	var out []string
	for _, id := range g.order {
		if g.columns[id].Sortable {
			out = append(out, id)
		}
	}
	return out
}

// Apply filters, sorts and paginates rows. The page index is not clamped
// here; callers feed PageCount back into the table state.
func (g *Grid[T]) Apply(rows []T, state tablestate.State) Page[T] {
	filtered := g.filter(rows, state.ColumnFilters)
	g.sort(filtered, state.Sorting)

	size := state.PageSize
	if size <= 0 {
		size = tablestate.DefaultPageSize
	}
	total := len(filtered)
	pageCount := PageCount(total, size)
	start := min(max(0, state.PageIndex)*size, total)
	end := min(start+size, total)
	return Page[T]{Rows: filtered[start:end], Total: total, PageCount: pageCount}
}

// PageCount returns the number of pages needed for total rows.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

func (g *Grid[T]) filter(rows []T, filters map[string]tablestate.FilterValue) []T {
	out := make([]T, 0, len(rows))
	fold := cases.Fold()
	needles := make(map[string]string, len(filters))
	for id, v := range filters {
		needles[id] = fold.String(strings.TrimSpace(v.Text))
	}
	for _, row := range rows {
		keep := true
		for id, v := range filters {
			col, ok := g.columns[id]
			if !ok || col.Value == nil || v.IsEmpty() {
				continue
			}
			cell := col.Value(row)
			switch col.Filter {
			case FilterIncludes:
				items := v.Items
				if len(items) == 0 {
					items = []string{v.Text}
				}
				keep = slices.Contains(items, cell)
			default:
				keep = strings.Contains(fold.String(cell), needles[id])
			}
			if !keep {
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

func (g *Grid[T]) sort(rows []T, sorting []tablestate.Sort) {
	var keys []tablestate.Sort
	for _, s := range sorting {
		if col, ok := g.columns[s.ColumnID]; ok && col.Sortable {
			keys = append(keys, s)
		}
	}
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(rows, func(a, b T) int {
		for _, s := range keys {
			col := g.columns[s.ColumnID]
			var c int
			if col.SortKey != nil {
				c = cmp.Compare(col.SortKey(a), col.SortKey(b))
			} else {
				c = compareText(col.Value(a), col.Value(b))
			}
			if s.Direction == tablestate.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

func compareText(a, b string) int {
	if x, err := strconv.ParseFloat(a, 64); err == nil {
		if y, err := strconv.ParseFloat(b, 64); err == nil {
			return cmp.Compare(x, y)
		}
	}
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}
