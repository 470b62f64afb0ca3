package router

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/vcrobe/feedtrack/browser"
	"github.com/vcrobe/feedtrack/console"
)

// navigation is one location change as the router sees it, whichever browser
// API produced it. from and to are history entry identities.
type navigation struct {
	url  *url.URL
	kind browser.NavigationType
	from string
	to   string
}

// navigationHandler is implemented by Router.
type navigationHandler interface {
	// accepts reports whether u resolves to a route. Navigation API events
	// that do not are left to the browser.
	accepts(u *url.URL) bool
	handle(ctx context.Context, nav navigation) error
}

// navigationAdapter hides which browser API drives navigation. Every settled
// navigation, whether started by push or by the browser, reaches
// handler.handle exactly once.
type navigationAdapter interface {
	attach(h navigationHandler) error
	// push navigates to u as a new entry and returns once the handler for
	// that navigation has returned.
	push(ctx context.Context, u *url.URL) error
	currentKey() string
	detach()
}

// newAdapter picks the Navigation API when the browser has it.
func newAdapter(win browser.Window) navigationAdapter {
	if nav := win.Navigation(); nav != nil {
		return &navigationAPIAdapter{win: win, nav: nav, pending: make(map[string]chan error)}
	}
	return &historyAdapter{win: win}
}

// historyAdapter drives navigation with pushState and popstate. A scripted
// pushState dispatches no event, so push handles the navigation inline.
type historyAdapter struct {
	win     browser.Window
	h       navigationHandler
	remove  func()
	mu      sync.Mutex
	current string
}

func (a *historyAdapter) attach(h navigationHandler) error {
	a.h = h
	hist := a.win.History()
	key := hist.State().Key
	if key == "" {
		key = uuid.NewString()
		hist.ReplaceState(browser.HistoryState{Key: key}, a.win.Location().String())
	}
	a.setCurrent(key)

	a.remove = a.win.OnPopState(a.onPopState)
	console.Log("[historyAdapter.attach] popstate listener registered")
	return nil
}

func (a *historyAdapter) onPopState(state browser.HistoryState) {
	loc := a.win.Location()
	to := state.Key
	if to == "" {
		// Entries created outside the router (e.g. fragment links) have no
		// key yet.
		to = uuid.NewString()
		a.win.History().ReplaceState(browser.HistoryState{Key: to}, loc.String())
	}
	from := a.setCurrent(to)

	console.Log("[historyAdapter.onPopState] path:", loc.Path)
	nav := navigation{url: loc, kind: browser.Traverse, from: from, to: to}
	if err := a.h.handle(context.Background(), nav); err != nil {
		console.Error("[historyAdapter.onPopState] navigation failed:", err.Error())
	}
}

func (a *historyAdapter) push(ctx context.Context, u *url.URL) error {
	to := uuid.NewString()
	a.win.History().PushState(browser.HistoryState{Key: to}, u.String())
	from := a.setCurrent(to)
	return a.h.handle(ctx, navigation{url: u, kind: browser.Push, from: from, to: to})
}

// setCurrent records key as the current entry and returns the previous one.
func (a *historyAdapter) setCurrent(key string) (previous string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	previous, a.current = a.current, key
	return previous
}

func (a *historyAdapter) currentKey() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *historyAdapter) detach() {
	if a.remove != nil {
		a.remove()
		a.remove = nil
		console.Log("[historyAdapter.detach] popstate listener removed")
	}
}

// navigationAPIAdapter intercepts navigate events. push goes through
// navigation.navigate so app- and user-initiated navigations share the
// event path; the info token ties a push to its handler result.
type navigationAPIAdapter struct {
	win    browser.Window
	nav    browser.Navigation
	h      navigationHandler
	remove func()

	mu      sync.Mutex
	pending map[string]chan error
}

func (a *navigationAPIAdapter) attach(h navigationHandler) error {
	a.h = h
	a.remove = a.nav.OnNavigate(a.onNavigate)
	console.Log("[navigationAPIAdapter.attach] navigate listener registered")
	return nil
}

func (a *navigationAPIAdapter) onNavigate(ev browser.NavigateEvent) {
	// Fragment-only changes are intercepted too, so both adapters report
	// the same notifications and match.
	if !ev.CanIntercept() || ev.DownloadRequest() != "" {
		return
	}
	dest, err := url.Parse(ev.Destination().URL)
	if err != nil {
		console.Warn("[navigationAPIAdapter.onNavigate] bad destination, leaving to browser:", err.Error())
		return
	}
	if !browser.SameOrigin(dest, a.win.Location()) || !a.h.accepts(dest) {
		return
	}

	kind := ev.NavigationType()
	from := a.nav.CurrentEntryKey()
	token := ev.Info()

	ev.Intercept(func(ctx context.Context) error {
		// The destination entry has committed by the time the handler runs.
		nav := navigation{url: dest, kind: kind, from: from, to: a.nav.CurrentEntryKey()}
		err := a.h.handle(ctx, nav)
		a.settle(token, err)
		if err != nil && token == "" {
			console.Error("[navigationAPIAdapter.onNavigate] navigation failed:", err.Error())
		}
		return err
	})
}

func (a *navigationAPIAdapter) settle(token string, err error) {
	if token == "" {
		return
	}
	a.mu.Lock()
	ch, ok := a.pending[token]
	a.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- err:
	default:
	}
}

func (a *navigationAPIAdapter) push(ctx context.Context, u *url.URL) error {
	token := uuid.NewString()
	settled := make(chan error, 1)
	a.mu.Lock()
	a.pending[token] = settled
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.pending, token)
		a.mu.Unlock()
	}()

	finished := a.nav.Navigate(u.String(), token)
	select {
	case err := <-settled:
		return err
	case err := <-finished:
		// The handler settles before finished does; prefer its error, which
		// keeps the Go error chain intact.
		select {
		case herr := <-settled:
			return herr
		default:
		}
		if err != nil {
			return fmt.Errorf("router: navigation to %s: %w", u, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *navigationAPIAdapter) currentKey() string {
	return a.nav.CurrentEntryKey()
}

func (a *navigationAPIAdapter) detach() {
	if a.remove != nil {
		a.remove()
		a.remove = nil
		console.Log("[navigationAPIAdapter.detach] navigate listener removed")
	}
}
