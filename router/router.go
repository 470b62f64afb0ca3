package router

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/vcrobe/feedtrack/browser"
	"github.com/vcrobe/feedtrack/console"
)

// Router is the client-side navigation controller. It owns no DOM nodes; the
// host renders whatever component identifier it reports.
type Router struct {
	win       browser.Window
	table     *Table
	adapter   navigationAdapter
	loaders   *loaderCache
	scroll    *scrollLedger
	listeners listenerRegistry

	mu           sync.Mutex
	current      string
	match        RouteMatch
	scrollGetter func() browser.ScrollContainer
	closed       bool
}

// Option configures a Router.
type Option func(*options)

type options struct {
	notFound *NotFoundConfig
}

// WithNotFound sets the route rendered when no pattern matches. Without it,
// unmatched paths are a configuration error: New and Navigate return
// ErrNoRoute.
func WithNotFound(cfg NotFoundConfig) Option {
	return func(o *options) {
		o.notFound = &cfg
	}
}

// New resolves the initial route from the window's location and attaches to
// the browser, preferring the Navigation API when present.
func New(win browser.Window, routes []RouteDefinition, opts ...Option) (*Router, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	table, err := NewTable(routes, o.notFound)
	if err != nil {
		return nil, err
	}

	loc := win.Location()
	initial, err := table.Resolve(Pathname(loc))
	if err != nil {
		return nil, fmt.Errorf("resolving initial route: %w", err)
	}

	r := &Router{
		win:     win,
		table:   table,
		adapter: newAdapter(win),
		loaders: newLoaderCache(),
		scroll:  newScrollLedger(),
		current: initial.Component,
		match:   MatchFor(loc),
	}
	if err := r.adapter.attach(r); err != nil {
		return nil, fmt.Errorf("attaching to browser: %w", err)
	}
	console.Log("[Router.New] initial route:", initial.Component)
	return r, nil
}

// Start waits for the initial route's loader. Listeners are not notified
// again; they already received the initial route on subscription.
func (r *Router) Start(ctx context.Context) error {
	res, err := r.table.Resolve(r.CurrentMatch().Pathname)
	if err != nil {
		return err
	}
	return r.loaders.ensure(ctx, res.Component, res.Loader)
}

// CurrentRoute returns the component identifier of the current route.
func (r *Router) CurrentRoute() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// CurrentMatch returns the location the current route was resolved from.
func (r *Router) CurrentMatch() RouteMatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.match
}

// Table returns the router's route table.
func (r *Router) Table() *Table {
	return r.table
}

// Navigate moves the application to path, resolved against the current
// location, and returns once the route has committed and listeners have been
// notified. Loader failures are returned as *LoadError.
//
// Navigations are not serialized: when a second Navigate starts while an
// earlier one is still loading, whichever settles last sets the current
// route.
func (r *Router) Navigate(ctx context.Context, path string) error {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrClosed
	}

	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("router: parsing %q: %w", path, err)
	}
	loc := r.win.Location()
	target := loc.ResolveReference(ref)
	if !browser.SameOrigin(loc, target) {
		return fmt.Errorf("%w: %s", ErrCrossOrigin, target)
	}
	if _, err := r.table.Resolve(Pathname(target)); err != nil {
		return err
	}

	console.Log("[Router.Navigate] path:", target.String())
	return r.adapter.push(ctx, target)
}

// OnRouteChange registers listener and immediately calls it with the current
// route. After the returned function is called, listener is not notified
// again.
func (r *Router) OnRouteChange(listener Listener) (unsubscribe func()) {
	id := r.listeners.add(listener)

	r.mu.Lock()
	route, match := r.current, r.match
	r.mu.Unlock()
	if r.listeners.active(id) {
		safeCall(listener, route, match)
	}

	var once sync.Once
	return func() {
		once.Do(func() { r.listeners.remove(id) })
	}
}

// Cleanup detaches the router from the browser.
func (r *Router) Cleanup() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()
	r.adapter.detach()
}

func (r *Router) accepts(u *url.URL) bool {
	_, err := r.table.Resolve(Pathname(u))
	return err == nil
}

// handle is the single commit path for every navigation: load, save the
// departing entry's scroll offset, commit, notify, then schedule scroll.
func (r *Router) handle(ctx context.Context, nav navigation) error {
	res, err := r.table.Resolve(Pathname(nav.url))
	if err != nil {
		return err
	}

	if err := r.loaders.ensure(ctx, res.Component, res.Loader); err != nil {
		console.Error("[Router.handle] loader failed:", err.Error())
		return err
	}

	// The user may have scrolled while the bundle downloaded.
	r.saveScroll(nav.from)

	match := MatchFor(nav.url)
	r.mu.Lock()
	r.current = res.Component
	r.match = match
	r.mu.Unlock()

	console.Log("[Router.handle]", string(nav.kind), match.Pathname, "->", res.Component)
	r.listeners.notify(res.Component, match)
	r.scheduleScroll(nav)
	return nil
}
