// Package catalogtest provides an in-memory stand-in for the pgx query
// surface used by the catalog repositories.
package catalogtest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Call records one query.
type Call struct {
	SQL  string
	Args []any
}

// DB answers every query with Rows, or fails with Err.
type DB struct {
	Rows [][]any
	Err  error

	mu    sync.Mutex
	calls []Call
}

// Query implements catalog.DB.
func (d *DB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	d.mu.Lock()
	d.calls = append(d.calls, Call{SQL: sql, Args: args})
	d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	return &rows{values: d.Rows, index: -1}, nil
}

// Calls returns the recorded queries.
func (d *DB) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Last returns the most recent query.
func (d *DB) Last() Call {
	calls := d.Calls()
	if len(calls) == 0 {
		return Call{}
	}
	return calls[len(calls)-1]
}

type rows struct {
	values [][]any
	index  int
	err    error
}

func (r *rows) Close() { r.index = len(r.values) }

func (r *rows) Err() error { return r.err }

func (r *rows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (r *rows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *rows) Next() bool {
	if r.index+1 >= len(r.values) {
		r.index = len(r.values)
		return false
	}
	r.index++
	return true
}

func (r *rows) Scan(dest ...any) error {
	if r.index < 0 || r.index >= len(r.values) {
		return fmt.Errorf("catalogtest: no row available")
	}
	row := r.values[r.index]
	if len(dest) != len(row) {
		return fmt.Errorf("catalogtest: %d destinations for %d values", len(dest), len(row))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("catalogtest: destination %d is not a pointer", i)
		}
		value := reflect.ValueOf(row[i])
		if !value.Type().AssignableTo(target.Elem().Type()) {
			return fmt.Errorf("catalogtest: cannot scan %T into %T", row[i], d)
		}
		target.Elem().Set(value)
	}
	return nil
}

func (r *rows) Values() ([]any, error) {
	if r.index < 0 || r.index >= len(r.values) {
		return nil, fmt.Errorf("catalogtest: no row available")
	}
	return r.values[r.index], nil
}

func (r *rows) RawValues() [][]byte { return nil }

func (r *rows) Conn() *pgx.Conn { return nil }
