package filters

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire layout for date filter values.
const DateLayout = "2006-01-02"

// Kind identifies the type carried by a Value.
type Kind int

const (
	// KindUnset marks the zero Value.
	KindUnset Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
	KindList
)

// String returns the kind name used in definitions and snapshots.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	default:
		return "unset"
	}
}

func parseKind(name string) Kind {
	switch name {
	case "string":
		return KindString
	case "number":
		return KindNumber
	case "bool":
		return KindBool
	case "date":
		return KindDate
	case "list":
		return KindList
	default:
		return KindUnset
	}
}

// ErrKindMismatch is returned when a value does not match its field kind.
var ErrKindMismatch = errors.New("filters: value kind mismatch")

// Value is a tagged filter value. The zero Value is unset.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	date time.Time
	list []string
}

// String builds a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number builds a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Int builds a numeric value from an identifier.
func Int(n int64) Value { return Value{kind: KindNumber, num: float64(n)} }

// Bool builds a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Date builds a date value truncated to the day.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// List builds a multi-value list.
func List(items ...string) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// Kind reports the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value counts as unset: the zero Value, an
// empty or blank string, or an empty list.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindUnset:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindList:
		return len(v.list) == 0
	case KindDate:
		return v.date.IsZero()
	default:
		return false
	}
}

// Text returns the string payload.
func (v Value) Text() string { return v.str }

// Num returns the numeric payload.
func (v Value) Num() float64 { return v.num }

// Int64 returns the numeric payload as an identifier.
func (v Value) Int64() int64 { return int64(v.num) }

// Truth returns the boolean payload.
func (v Value) Truth() bool { return v.b }

// Time returns the date payload.
func (v Value) Time() time.Time { return v.date }

// Items returns a copy of the list payload.
func (v Value) Items() []string { return slices.Clone(v.list) }

// Equal compares two values. Lists compare as sets.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindDate:
		return v.date.Equal(o.date)
	case KindList:
		a, b := slices.Clone(v.list), slices.Clone(o.list)
		slices.Sort(a)
		slices.Sort(b)
		return slices.Equal(slices.Compact(a), slices.Compact(b))
	default:
		return true
	}
}

// Encode renders the value in its wire form. Lists are comma separated.
func (v Value) Encode() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		return v.date.Format(DateLayout)
	case KindList:
		return strings.Join(v.list, ",")
	default:
		return ""
	}
}

// ParseValue decodes raw into a value of the given kind. A blank input
// yields the unset Value.
func ParseValue(kind Kind, raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Value{}, nil
	}
	switch kind {
	case KindString:
		return String(raw), nil
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrKindMismatch, raw)
		}
		return Number(n), nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a boolean", ErrKindMismatch, raw)
		}
		return Bool(b), nil
	case KindDate:
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a date", ErrKindMismatch, raw)
		}
		return Date(t), nil
	case KindList:
		var items []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return List(items...), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown kind", ErrKindMismatch)
	}
}

type valuePayload struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// MarshalJSON stores the kind next to the encoded value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(valuePayload{Kind: v.kind.String(), Value: v.Encode()})
}

// UnmarshalJSON restores a value written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var p valuePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	kind := parseKind(p.Kind)
	if kind == KindUnset {
		*v = Value{}
		return nil
	}
	parsed, err := ParseValue(kind, p.Value)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Filters is a set of field values keyed by field key. A key is either
// absent or holds a non-empty value.
type Filters struct {
	values map[string]Value
}

// NewFilters builds a set from a plain map, dropping empty values.
func NewFilters(values map[string]Value) Filters {
	f := Filters{}
	for k, v := range values {
		f = f.With(k, v)
	}
	return f
}

// Get returns the value for key and whether it is present.
func (f Filters) Get(key string) (Value, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Has reports whether key is present.
func (f Filters) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Len returns the number of present keys.
func (f Filters) Len() int { return len(f.values) }

// Keys returns the present keys in sorted order.
func (f Filters) Keys() []string {
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Map returns a copy of the underlying values.
func (f Filters) Map() map[string]Value {
	out := make(map[string]Value, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// With returns a copy with key set to v, or removed when v is empty.
func (f Filters) With(key string, v Value) Filters {
	out := f.clone()
	if v.IsEmpty() {
		delete(out.values, key)
		return out
	}
	out.values[key] = v
	return out
}

// Without returns a copy with the given keys removed.
func (f Filters) Without(keys ...string) Filters {
	out := f.clone()
	for _, k := range keys {
		delete(out.values, k)
	}
	return out
}

// Equal is an order-insensitive structural comparison.
func (f Filters) Equal(o Filters) bool {
	if len(f.values) != len(o.values) {
		return false
	}
	for k, v := range f.values {
		ov, ok := o.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (f Filters) clone() Filters {
	out := Filters{values: make(map[string]Value, len(f.values))}
	for k, v := range f.values {
		out.values[k] = v
	}
	return out
}

// MarshalJSON encodes the set as an object.
func (f Filters) MarshalJSON() ([]byte, error) {
	if f.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f.values)
}

// UnmarshalJSON decodes an object written by MarshalJSON.
func (f *Filters) UnmarshalJSON(data []byte) error {
	var raw map[string]Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = NewFilters(raw)
	return nil
}
