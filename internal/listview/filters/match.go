package filters

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Matcher reports whether a row satisfies one effective field value.
type Matcher[T any] func(row T, v Value) bool

// Matchers maps field keys to their row predicates.
type Matchers[T any] map[string]Matcher[T]

// FilterRows keeps the rows matching every effective field. Fields without
// a matcher do not restrict the result.
func FilterRows[T any](rows []T, effective Filters, matchers Matchers[T]) []T {
	if effective.Len() == 0 {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if matchAll(row, effective, matchers) {
			out = append(out, row)
		}
	}
	return out
}

func matchAll[T any](row T, effective Filters, matchers Matchers[T]) bool {
	for k, v := range effective.values {
		m, ok := matchers[k]
		if !ok {
			continue
		}
		if !m(row, v) {
			return false
		}
	}
	return true
}

// MatchContains matches a case-folded substring of the extracted text.
func MatchContains[T any](get func(T) string) Matcher[T] {
	return func(row T, v Value) bool {
		fold := cases.Fold()
		return strings.Contains(fold.String(get(row)), fold.String(strings.TrimSpace(v.Text())))
	}
}

// MatchID matches an identifier field against a numeric value.
func MatchID[T any](get func(T) int64) Matcher[T] {
	return func(row T, v Value) bool {
		return get(row) == v.Int64()
	}
}

// MatchBool matches a boolean field.
func MatchBool[T any](get func(T) bool) Matcher[T] {
	return func(row T, v Value) bool {
		return get(row) == v.Truth()
	}
}

// MatchOneOf matches when the extracted text is one of the listed items.
func MatchOneOf[T any](get func(T) string) Matcher[T] {
	return func(row T, v Value) bool {
		return slices.Contains(v.Items(), get(row))
	}
}

// MatchDateFrom keeps rows dated on or after the value.
func MatchDateFrom[T any](get func(T) time.Time) Matcher[T] {
	return func(row T, v Value) bool {
		return !day(get(row)).Before(v.Time())
	}
}

// MatchDateTo keeps rows dated on or before the value.
func MatchDateTo[T any](get func(T) time.Time) Matcher[T] {
	return func(row T, v Value) bool {
		return !day(get(row)).After(v.Time())
	}
}

// MatchMin keeps rows whose amount is at least the value.
func MatchMin[T any](get func(T) float64) Matcher[T] {
	return func(row T, v Value) bool {
		return get(row) >= v.Num()
	}
}

// MatchMax keeps rows whose amount is at most the value.
func MatchMax[T any](get func(T) float64) Matcher[T] {
	return func(row T, v Value) bool {
		return get(row) <= v.Num()
	}
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IDOption formats an identifier option.
func IDOption(id int64, label string) Option {
	return Option{Value: strconv.FormatInt(id, 10), Label: label}
}
