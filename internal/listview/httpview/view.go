// Package httpview binds the filter panel and table state engine to chi
// routes for one list view.
package httpview

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/odyssey-erp/odyssey-admin/internal/listview/filters"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/grid"
	"github.com/odyssey-erp/odyssey-admin/internal/listview/tablestate"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// Source loads the scoped, unfiltered collection of a list view.
type Source[T any] interface {
	ListScoped(ctx context.Context, scope filters.Session) ([]T, error)
}

// View declares one list view.
type View[T any] struct {
	// Name keys persisted panel state and metrics.
	Name string
	// Path is the mount path, used to build canonical URLs.
	Path     string
	Filters  filters.Definition
	Matchers filters.Matchers[T]
	Table    tablestate.Config
	Grid     *grid.Grid[T]
	Source   Source[T]
}

func (v View[T]) validate() error {
	if v.Name == "" || v.Path == "" {
		return fmt.Errorf("httpview: view needs a name and a path")
	}
	if v.Grid == nil || v.Source == nil {
		return fmt.Errorf("httpview: view %s needs a grid and a source", v.Name)
	}
	if err := v.Filters.Validate(); err != nil {
		return fmt.Errorf("httpview: view %s: %w", v.Name, err)
	}
	if err := v.Table.Validate(); err != nil {
		return fmt.Errorf("httpview: view %s: %w", v.Name, err)
	}
	return nil
}

// Session keys populated by the authentication layer.
const (
	SessionCompanyKey = "company_id"
	SessionBranchKey  = "branch_id"
)

// ScopeFromSession builds the explicit scope handed to the engine.
func ScopeFromSession(sess *shared.Session) filters.Session {
	if sess == nil {
		return filters.Session{}
	}
	company, _ := strconv.ParseInt(sess.Get(SessionCompanyKey), 10, 64)
	branch, _ := strconv.ParseInt(sess.Get(SessionBranchKey), 10, 64)
	return filters.Session{UserID: sess.User(), CompanyID: company, BranchID: branch}
}

// pageLocation is the URL of the list page during one request. It serves as
// both the navigator and the search params source of the table adapter.
type pageLocation struct {
	path    string
	values  url.Values
	changed bool
	mode    tablestate.NavigateMode
}

func (l *pageLocation) Navigate(patch tablestate.QueryPatch, mode tablestate.NavigateMode) {
	next := patch.Apply(l.values)
	if next.Encode() != l.values.Encode() {
		l.changed = true
	}
	l.values = next
	l.mode = mode
}

func (l *pageLocation) CurrentSearchParams() url.Values {
	return l.values
}

func (l *pageLocation) String() string {
	if len(l.values) == 0 {
		return l.path
	}
	return l.path + "?" + l.values.Encode()
}
