package filters

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDefinition is returned by Definition.Validate.
	ErrInvalidDefinition = errors.New("filters: invalid definition")
	// ErrUnknownCategory is returned when toggling an undeclared category.
	ErrUnknownCategory = errors.New("filters: unknown category")
	// ErrUnknownField is returned when setting an undeclared field.
	ErrUnknownField = errors.New("filters: unknown field")
)

// Field declares one filter input.
type Field struct {
	Key  string
	Kind Kind
}

// Category is an independently toggleable group of fields.
type Category struct {
	Name   string
	Fields []Field
}

// ParentAction selects what happens to a dependent field when its parent changes.
type ParentAction int

const (
	// ActionClear deletes the dependent value.
	ActionClear ParentAction = iota
	// ActionClearAndRefetch deletes the dependent value and reloads its options
	// scoped to the new parent value.
	ActionClearAndRefetch
)

// Dependency declares that Field is scoped by DependsOn.
type Dependency struct {
	Field          string
	DependsOn      string
	OnParentChange ParentAction
}

// RetentionPolicy controls what deactivating a category does to its values.
type RetentionPolicy int

const (
	// RetentionDiscard deletes the category values permanently.
	RetentionDiscard RetentionPolicy = iota
	// RetentionPreserve hides the values and restores them when the category
	// is re-activated before the panel closes.
	RetentionPreserve
)

// ParseRetention maps a configuration name to a policy.
func ParseRetention(name string) (RetentionPolicy, error) {
	switch name {
	case "", "discard":
		return RetentionDiscard, nil
	case "preserve":
		return RetentionPreserve, nil
	default:
		return RetentionDiscard, fmt.Errorf("%w: unknown retention policy %q", ErrInvalidDefinition, name)
	}
}

// Definition is the static filter declaration of one list view.
type Definition struct {
	Categories   []Category
	Dependencies []Dependency
	Retention    RetentionPolicy
}

// Validate checks the declaration for duplicates, dangling references and
// dependency cycles.
func (d Definition) Validate() error {
	categories := make(map[string]struct{}, len(d.Categories))
	fields := make(map[string]string)
	for _, c := range d.Categories {
		if c.Name == "" {
			return fmt.Errorf("%w: category without name", ErrInvalidDefinition)
		}
		if _, dup := categories[c.Name]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidDefinition, c.Name)
		}
		categories[c.Name] = struct{}{}
		if len(c.Fields) == 0 {
			return fmt.Errorf("%w: category %q has no fields", ErrInvalidDefinition, c.Name)
		}
		for _, f := range c.Fields {
			if f.Key == "" || f.Kind == KindUnset {
				return fmt.Errorf("%w: category %q has an incomplete field", ErrInvalidDefinition, c.Name)
			}
			if owner, dup := fields[f.Key]; dup {
				return fmt.Errorf("%w: field %q declared in %q and %q", ErrInvalidDefinition, f.Key, owner, c.Name)
			}
			fields[f.Key] = c.Name
		}
	}

	parents := make(map[string]string, len(d.Dependencies))
	for _, dep := range d.Dependencies {
		if _, ok := fields[dep.Field]; !ok {
			return fmt.Errorf("%w: dependency on undeclared field %q", ErrInvalidDefinition, dep.Field)
		}
		if _, ok := fields[dep.DependsOn]; !ok {
			return fmt.Errorf("%w: %q depends on undeclared field %q", ErrInvalidDefinition, dep.Field, dep.DependsOn)
		}
		if _, dup := parents[dep.Field]; dup {
			return fmt.Errorf("%w: field %q has more than one parent", ErrInvalidDefinition, dep.Field)
		}
		parents[dep.Field] = dep.DependsOn
	}
	for field := range parents {
		seen := map[string]bool{field: true}
		for p, ok := parents[field]; ok; p, ok = parents[p] {
			if seen[p] {
				return fmt.Errorf("%w: dependency cycle through %q", ErrInvalidDefinition, field)
			}
			seen[p] = true
		}
	}
	return nil
}

// CategoryOf returns the category owning a field key.
func (d Definition) CategoryOf(key string) (string, bool) {
	for _, c := range d.Categories {
		for _, f := range c.Fields {
			if f.Key == key {
				return c.Name, true
			}
		}
	}
	return "", false
}

// Field returns the declaration for key.
func (d Definition) Field(key string) (Field, bool) {
	for _, c := range d.Categories {
		for _, f := range c.Fields {
			if f.Key == key {
				return f, true
			}
		}
	}
	return Field{}, false
}

// Category returns the named category.
func (d Definition) Category(name string) (Category, bool) {
	for _, c := range d.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// FieldKeys lists the keys owned by a category.
func (c Category) FieldKeys() []string {
	keys := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Dependents returns the transitive dependents of parent in declaration
// order, direct children first.
func (d Definition) Dependents(parent string) []Dependency {
	var out []Dependency
	queue := []string{parent}
	visited := map[string]bool{parent: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dep := range d.Dependencies {
			if dep.DependsOn != current || visited[dep.Field] {
				continue
			}
			visited[dep.Field] = true
			out = append(out, dep)
			queue = append(queue, dep.Field)
		}
	}
	return out
}

// Effective restricts draft to the fields of active categories. Keys outside
// the definition are dropped.
func (d Definition) Effective(draft Filters, active map[string]bool) Filters {
	out := Filters{values: make(map[string]Value)}
	for k, v := range draft.values {
		category, ok := d.CategoryOf(k)
		if !ok || !active[category] {
			continue
		}
		if v.IsEmpty() {
			continue
		}
		out.values[k] = v
	}
	return out
}

// ActiveFrom marks a category active iff any of its fields is present in current.
func (d Definition) ActiveFrom(current Filters) map[string]bool {
	active := make(map[string]bool, len(d.Categories))
	for _, c := range d.Categories {
		active[c.Name] = false
		for _, f := range c.Fields {
			if current.Has(f.Key) {
				active[c.Name] = true
				break
			}
		}
	}
	return active
}
