// Package tablestate keeps a list view's pagination, sorting and column
// filters in step with the page URL.
package tablestate

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidConfig is returned for inconsistent adapter declarations.
var ErrInvalidConfig = errors.New("tablestate: invalid config")

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort orders the table by one column.
type Sort struct {
	ColumnID  string    `json:"id"`
	Direction Direction `json:"direction"`
}

// ParamType selects how a column filter is encoded in the URL.
type ParamType int

const (
	// ParamString stores the raw filter text.
	ParamString ParamType = iota
	// ParamArray stores a comma separated multi-value list.
	ParamArray
)

// Column declares a URL persisted column filter.
type Column struct {
	ColumnID  string
	SearchKey string
	Type      ParamType
}

// FilterValue is the raw value of one column filter. Text is used by
// string columns, Items by array columns.
type FilterValue struct {
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"`
}

// IsEmpty reports whether the filter is unset.
func (v FilterValue) IsEmpty() bool {
	return v.Text == "" && len(v.Items) == 0
}

// Pagination is the page index and size pair.
type Pagination struct {
	PageIndex int `json:"page_index"`
	PageSize  int `json:"page_size"`
}

// State is the in-memory table state.
type State struct {
	PageIndex     int                    `json:"page_index"`
	PageSize      int                    `json:"page_size"`
	Sorting       []Sort                 `json:"sorting"`
	ColumnFilters map[string]FilterValue `json:"column_filters"`
}

// Pagination returns the pagination part of the state.
func (s State) Pagination() Pagination {
	return Pagination{PageIndex: s.PageIndex, PageSize: s.PageSize}
}

func (s State) clone() State {
	out := State{
		PageIndex:     s.PageIndex,
		PageSize:      s.PageSize,
		Sorting:       slices.Clone(s.Sorting),
		ColumnFilters: make(map[string]FilterValue, len(s.ColumnFilters)),
	}
	for k, v := range s.ColumnFilters {
		out.ColumnFilters[k] = FilterValue{Text: v.Text, Items: slices.Clone(v.Items)}
	}
	return out
}

// Config declares which table dimensions are persisted and their defaults.
type Config struct {
	PageKey         string
	PageSizeKey     string
	SortKey         string
	DefaultPageSize int
	// PageSizes restricts page sizes read from the URL. Empty allows any
	// positive size.
	PageSizes []int
	// SortableColumns restricts sort columns read from the URL. Empty
	// allows any column.
	SortableColumns []string
	DefaultSorting  []Sort
	Columns         []Column
}

// DefaultPageSize is used when the config leaves it unset.
const DefaultPageSize = 10

func (c Config) withDefaults() Config {
	if c.PageKey == "" {
		c.PageKey = "page"
	}
	if c.PageSizeKey == "" {
		c.PageSizeKey = "pageSize"
	}
	if c.SortKey == "" {
		c.SortKey = "sort"
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = DefaultPageSize
	}
	return c
}

// Validate rejects duplicated query keys and a default page size outside
// the allowed set.
func (c Config) Validate() error {
	c = c.withDefaults()
	keys := map[string]string{c.PageKey: "page", c.PageSizeKey: "page size", c.SortKey: "sort"}
	if len(keys) != 3 {
		return fmt.Errorf("%w: pagination and sort keys must differ", ErrInvalidConfig)
	}
	columns := make(map[string]struct{}, len(c.Columns))
	for _, col := range c.Columns {
		if col.ColumnID == "" || col.SearchKey == "" {
			return fmt.Errorf("%w: column filter needs an id and a search key", ErrInvalidConfig)
		}
		if owner, dup := keys[col.SearchKey]; dup {
			return fmt.Errorf("%w: search key %q already used by %s", ErrInvalidConfig, col.SearchKey, owner)
		}
		keys[col.SearchKey] = col.ColumnID
		if _, dup := columns[col.ColumnID]; dup {
			return fmt.Errorf("%w: column %q declared twice", ErrInvalidConfig, col.ColumnID)
		}
		columns[col.ColumnID] = struct{}{}
	}
	if len(c.PageSizes) > 0 && !slices.Contains(c.PageSizes, c.DefaultPageSize) {
		return fmt.Errorf("%w: default page size %d not allowed", ErrInvalidConfig, c.DefaultPageSize)
	}
	for _, s := range c.DefaultSorting {
		if !c.sortable(s.ColumnID) || (s.Direction != Asc && s.Direction != Desc) {
			return fmt.Errorf("%w: invalid default sort %q", ErrInvalidConfig, s.ColumnID)
		}
	}
	return nil
}

// DefaultState returns the state used when the URL carries nothing.
func (c Config) DefaultState() State {
	c = c.withDefaults()
	return State{
		PageSize:      c.DefaultPageSize,
		Sorting:       slices.Clone(c.DefaultSorting),
		ColumnFilters: make(map[string]FilterValue),
	}
}

func (c Config) sortable(column string) bool {
	return len(c.SortableColumns) == 0 || slices.Contains(c.SortableColumns, column)
}

func (c Config) pageSizeAllowed(size int) bool {
	if size <= 0 {
		return false
	}
	return len(c.PageSizes) == 0 || slices.Contains(c.PageSizes, size)
}
