package router

import "context"

// Loader makes a route's component implementation available, e.g. by
// importing its bundle. It is called at most once per Router unless it fails.
type Loader func(ctx context.Context) error

// RouteDefinition maps an exact pathname to the component the host renders.
// A nil Loader means the component is available at startup.
type RouteDefinition struct {
	Pattern   string
	Component string
	Loader    Loader
}

// NotFoundConfig is the route used when no pattern matches.
type NotFoundConfig struct {
	Component string
	Loader    Loader
}

// RouteMatch describes the location a route was resolved from. Search and
// Hash keep their leading "?" and "#", as window.location does, and are empty
// when absent.
type RouteMatch struct {
	Pathname string
	Search   string
	Hash     string
}

// Listener is notified with the matched component identifier after every
// settled navigation.
type Listener func(route string, match RouteMatch)
