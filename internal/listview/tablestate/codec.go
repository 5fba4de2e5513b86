package tablestate

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// SortNone marks a sort cleared by the user on a view with a default sort.
const SortNone = "none"

// QueryPatch maps query keys to new values. An empty value removes the key.
type QueryPatch map[string]string

// Apply returns a copy of values with the patch applied.
func (p QueryPatch) Apply(values url.Values) url.Values {
	out := url.Values{}
	for k, v := range values {
		out[k] = slices.Clone(v)
	}
	for k, v := range p {
		if v == "" {
			out.Del(k)
			continue
		}
		out.Set(k, v)
	}
	return out
}

// Decode reads the table state from URL values. Absent or malformed
// entries fall back to the declared defaults.
func Decode(cfg Config, values url.Values) State {
	cfg = cfg.withDefaults()
	state := cfg.DefaultState()

	if page, err := strconv.Atoi(values.Get(cfg.PageKey)); err == nil && page >= 1 {
		state.PageIndex = page - 1
	}
	if size, err := strconv.Atoi(values.Get(cfg.PageSizeKey)); err == nil && cfg.pageSizeAllowed(size) {
		state.PageSize = size
	}
	if raw := values.Get(cfg.SortKey); raw != "" {
		if raw == SortNone {
			state.Sorting = []Sort{}
		} else if sorting := decodeSorting(cfg, raw); len(sorting) > 0 {
			state.Sorting = sorting
		}
	}
	for _, col := range cfg.Columns {
		raw := values.Get(col.SearchKey)
		if raw == "" {
			continue
		}
		switch col.Type {
		case ParamArray:
			items, ok := decodeList(raw)
			if ok && len(items) > 0 {
				state.ColumnFilters[col.ColumnID] = FilterValue{Items: items}
			}
		default:
			state.ColumnFilters[col.ColumnID] = FilterValue{Text: raw}
		}
	}
	return state
}

// Encode renders a full patch for every declared key. Keys holding their
// default are removed so that canonical URLs stay short.
func Encode(cfg Config, state State) QueryPatch {
	cfg = cfg.withDefaults()
	patch := QueryPatch{
		cfg.PageKey:     "",
		cfg.PageSizeKey: "",
		cfg.SortKey:     "",
	}
	if state.PageIndex > 0 {
		patch[cfg.PageKey] = strconv.Itoa(state.PageIndex + 1)
	}
	if state.PageSize > 0 && state.PageSize != cfg.DefaultPageSize {
		patch[cfg.PageSizeKey] = strconv.Itoa(state.PageSize)
	}
	switch {
	case slices.Equal(state.Sorting, cfg.DefaultSorting):
	case len(state.Sorting) == 0:
		patch[cfg.SortKey] = SortNone
	default:
		patch[cfg.SortKey] = encodeSorting(state.Sorting)
	}
	for _, col := range cfg.Columns {
		patch[col.SearchKey] = ""
		v, ok := state.ColumnFilters[col.ColumnID]
		if !ok || v.IsEmpty() {
			continue
		}
		switch col.Type {
		case ParamArray:
			patch[col.SearchKey] = encodeList(v.Items)
		default:
			patch[col.SearchKey] = v.Text
		}
	}
	return patch
}

// ParseSorting reads a sort parameter as posted by a table interaction.
// An empty value or SortNone clears the sort.
func ParseSorting(cfg Config, raw string) []Sort {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == SortNone {
		return []Sort{}
	}
	sorting := decodeSorting(cfg.withDefaults(), raw)
	if sorting == nil {
		return []Sort{}
	}
	return sorting
}

func decodeSorting(cfg Config, raw string) []Sort {
	var out []Sort
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		id, dir, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			dir = string(Asc)
		}
		d := Direction(dir)
		if id == "" || seen[id] || !cfg.sortable(id) || (d != Asc && d != Desc) {
			continue
		}
		seen[id] = true
		out = append(out, Sort{ColumnID: id, Direction: d})
	}
	return out
}

func encodeSorting(sorting []Sort) string {
	parts := make([]string, 0, len(sorting))
	for _, s := range sorting {
		dir := s.Direction
		if dir != Desc {
			dir = Asc
		}
		parts = append(parts, s.ColumnID+":"+string(dir))
	}
	return strings.Join(parts, ",")
}

var listEscaper = strings.NewReplacer("%", "%25", ",", "%2C")

func encodeList(items []string) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		parts = append(parts, listEscaper.Replace(item))
	}
	return strings.Join(parts, ",")
}

func decodeList(raw string) ([]string, bool) {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part == "" {
			continue
		}
		item, err := url.PathUnescape(part)
		if err != nil {
			return nil, false
		}
		items = append(items, item)
	}
	return items, true
}
