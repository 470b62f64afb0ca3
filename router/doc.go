// Package router implements client-side routing for the feedtrack SPA.
//
// A Router maps the document's pathname to a component identifier (a custom
// element tag the host renders) and keeps that mapping in step with browser
// navigation. Two browser APIs can drive it:
//
//   - the Navigation API: navigate events are intercepted and handled as
//     same-document navigations, and Navigate goes through
//     navigation.navigate so app- and user-initiated navigations share one
//     path;
//   - the History API: Navigate calls pushState and handles the push inline,
//     popstate handles back/forward.
//
// The API is chosen once, in New, and the rest of the router does not know
// which one is active.
//
// # Loading
//
// A route's Loader runs before the route commits, at most once per Router
// unless it fails. Concurrent navigations to an unloaded component share a
// single loader call.
//
// # Scroll
//
// Before a navigation commits, the scroll offset of the container set with
// SetScrollContainer is saved under the departing history entry. One
// animation frame after commit, pushes and replaces scroll to the top while
// traversals and reloads restore the destination entry's saved offset.
//
// # Usage
//
//	r, err := router.New(browser.Global(), []router.RouteDefinition{
//	    {Pattern: "/", Component: "home-page"},
//	    {Pattern: "/settings", Component: "settings-page", Loader: loadSettings},
//	}, router.WithNotFound(router.NotFoundConfig{Component: "not-found-page"}))
//
//	unsubscribe := r.OnRouteChange(func(route string, m router.RouteMatch) {
//	    shell.SetPage(route, m)
//	})
//	defer unsubscribe()
//
//	err = r.Navigate(ctx, "/settings")
package router
