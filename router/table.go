package router

import (
	"fmt"
	"net/url"
	"strings"
)

// Table is an immutable route table.
//
// Patterns are compared for exact equality against the escaped pathname;
// query string and fragment never take part, and "/settings/" does not match
// "/settings". When two definitions share a pattern the first one wins.
type Table struct {
	routes   []RouteDefinition
	notFound *NotFoundConfig
}

// Resolution is the outcome of resolving a pathname.
type Resolution struct {
	Component string
	Loader    Loader
	NotFound  bool
}

// NewTable validates and copies routes. notFound may be nil, in which case
// unmatched paths resolve to ErrNoRoute.
func NewTable(routes []RouteDefinition, notFound *NotFoundConfig) (*Table, error) {
	t := &Table{routes: make([]RouteDefinition, len(routes))}
	for i, r := range routes {
		if !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("%w: pattern %q must start with /", ErrInvalidRoute, r.Pattern)
		}
		if strings.ContainsAny(r.Pattern, "?#") {
			return nil, fmt.Errorf("%w: pattern %q contains a query or fragment", ErrInvalidRoute, r.Pattern)
		}
		if r.Component == "" {
			return nil, fmt.Errorf("%w: pattern %q has no component", ErrInvalidRoute, r.Pattern)
		}
		t.routes[i] = r
	}
	if notFound != nil {
		if notFound.Component == "" {
			return nil, fmt.Errorf("%w: not-found route has no component", ErrInvalidRoute)
		}
		nf := *notFound
		t.notFound = &nf
	}
	return t, nil
}

// Routes returns a copy of the definitions in registration order.
func (t *Table) Routes() []RouteDefinition {
	out := make([]RouteDefinition, len(t.routes))
	copy(out, t.routes)
	return out
}

// Lookup returns the first definition whose pattern equals pathname.
func (t *Table) Lookup(pathname string) (RouteDefinition, bool) {
	for _, r := range t.routes {
		if r.Pattern == pathname {
			return r, true
		}
	}
	return RouteDefinition{}, false
}

// Resolve maps pathname to a component, falling back to the not-found route.
func (t *Table) Resolve(pathname string) (Resolution, error) {
	if r, ok := t.Lookup(pathname); ok {
		return Resolution{Component: r.Component, Loader: r.Loader}, nil
	}
	if t.notFound == nil {
		return Resolution{}, fmt.Errorf("%w: %s", ErrNoRoute, pathname)
	}
	return Resolution{Component: t.notFound.Component, Loader: t.notFound.Loader, NotFound: true}, nil
}

// Pathname isolates the pathname of u the way window.location.pathname
// reports it: percent-encoded, and "/" for an empty path.
func Pathname(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		return "/"
	}
	return p
}

// MatchFor builds the RouteMatch for u.
func MatchFor(u *url.URL) RouteMatch {
	m := RouteMatch{Pathname: Pathname(u)}
	if u.RawQuery != "" {
		m.Search = "?" + u.RawQuery
	}
	if f := u.EscapedFragment(); f != "" {
		m.Hash = "#" + f
	}
	return m
}
