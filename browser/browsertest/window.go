// Package browsertest provides an in-memory browser for testing code that
// drives session history, without WASM or a real browser.
//
// The fake keeps a list of session history entries and a cursor. Everything
// a real browser does asynchronously (popstate dispatch, intercepted
// navigation handlers) runs synchronously on the caller's goroutine, and
// animation frames are queued until FlushFrames is called.
package browsertest

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/vcrobe/feedtrack/browser"
)

// Compile-time assertions to ensure the fakes implement the browser interfaces.
var (
	_ browser.Window          = (*Window)(nil)
	_ browser.History         = (*history)(nil)
	_ browser.Navigation      = (*navigation)(nil)
	_ browser.NavigateEvent   = (*navigateEvent)(nil)
	_ browser.ScrollContainer = (*ScrollBox)(nil)
)

type entry struct {
	url   *url.URL
	state browser.HistoryState
	key   string // navigation.currentEntry.key
}

// Window is a fake browser window.
type Window struct {
	mu       sync.Mutex
	entries  []*entry
	index    int
	nextKey  int
	popstate map[int]func(browser.HistoryState)
	nextID   int
	nav      *navigation
	frames   []func()

	// NavigateCalls records every URL passed to navigation.navigate.
	NavigateCalls []string
	// DocumentLoads records URLs the browser would have loaded as a new
	// document because no handler intercepted the navigation.
	DocumentLoads []string
}

// Option configures a Window.
type Option func(*Window)

// WithNavigationAPI exposes window.navigation.
func WithNavigationAPI() Option {
	return func(w *Window) {
		w.nav = &navigation{w: w, listeners: make(map[int]func(browser.NavigateEvent))}
	}
}

// New returns a window whose single history entry is rawURL.
func New(rawURL string, opts ...Option) *Window {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(fmt.Sprintf("browsertest: bad url %q: %v", rawURL, err))
	}
	w := &Window{popstate: make(map[int]func(browser.HistoryState))}
	w.entries = []*entry{{url: u, key: w.newKey()}}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Window) newKey() string {
	w.nextKey++
	return fmt.Sprintf("entry-%d", w.nextKey)
}

// Location implements browser.Window.
func (w *Window) Location() *url.URL {
	w.mu.Lock()
	defer w.mu.Unlock()
	u := *w.entries[w.index].url
	return &u
}

// History implements browser.Window.
func (w *Window) History() browser.History {
	return (*history)(w)
}

// OnPopState implements browser.Window.
func (w *Window) OnPopState(fn func(browser.HistoryState)) (remove func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.popstate[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.popstate, id)
	}
}

// Navigation implements browser.Window.
func (w *Window) Navigation() browser.Navigation {
	if w.nav == nil {
		return nil
	}
	return w.nav
}

// RequestAnimationFrame implements browser.Window.
func (w *Window) RequestAnimationFrame(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frames = append(w.frames, fn)
}

// PendingFrames returns the number of queued animation frame callbacks.
func (w *Window) PendingFrames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.frames)
}

// FlushFrames runs queued animation frame callbacks, including ones queued
// while flushing, and returns how many ran.
func (w *Window) FlushFrames() int {
	ran := 0
	for {
		w.mu.Lock()
		frames := w.frames
		w.frames = nil
		w.mu.Unlock()
		if len(frames) == 0 {
			return ran
		}
		for _, fn := range frames {
			fn()
			ran++
		}
	}
}

// Len returns the number of session history entries.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Back traverses one entry back.
func (w *Window) Back() { w.Go(-1) }

// Forward traverses one entry forward.
func (w *Window) Forward() { w.Go(1) }

// Go traverses delta entries. Out-of-range traversals are ignored, like
// history.go.
func (w *Window) Go(delta int) {
	w.mu.Lock()
	target := w.index + delta
	if delta == 0 || target < 0 || target >= len(w.entries) {
		w.mu.Unlock()
		return
	}
	dest := w.entries[target]
	w.mu.Unlock()

	if w.nav != nil {
		ev := w.nav.newEvent(browser.Traverse, dest.url.String(), dest.key, "")
		w.nav.dispatch(ev, func() { w.moveTo(target) })
		w.firePopState()
		return
	}
	w.moveTo(target)
	w.firePopState()
}

// ClickLink simulates the user following a same-document link to href. With
// the Navigation API this dispatches a push navigate event; without it the
// browser would load a new document, which is recorded in DocumentLoads.
func (w *Window) ClickLink(href string) error {
	u, err := w.resolve(href)
	if err != nil {
		return err
	}
	if w.nav == nil {
		w.mu.Lock()
		w.DocumentLoads = append(w.DocumentLoads, u.String())
		w.mu.Unlock()
		return nil
	}
	ev := w.nav.newEvent(browser.Push, u.String(), "", "")
	return w.nav.dispatch(ev, func() { w.push(u, browser.HistoryState{}) })
}

// Replace simulates location.replace(href). With the Navigation API this
// dispatches a replace navigate event; without it the browser would load a
// new document.
func (w *Window) Replace(href string) error {
	u, err := w.resolve(href)
	if err != nil {
		return err
	}
	if w.nav == nil {
		w.mu.Lock()
		w.DocumentLoads = append(w.DocumentLoads, u.String())
		w.mu.Unlock()
		return nil
	}
	ev := w.nav.newEvent(browser.Replace, u.String(), "", "")
	return w.nav.dispatch(ev, func() { w.replace(u) })
}

// Reload simulates location.reload(). With the Navigation API this
// dispatches a reload navigate event for the current entry; without it the
// browser would load a new document.
func (w *Window) Reload() error {
	w.mu.Lock()
	cur := w.entries[w.index]
	w.mu.Unlock()
	if w.nav == nil {
		w.mu.Lock()
		w.DocumentLoads = append(w.DocumentLoads, cur.url.String())
		w.mu.Unlock()
		return nil
	}
	ev := w.nav.newEvent(browser.Reload, cur.url.String(), cur.key, "")
	return w.nav.dispatch(ev, func() {})
}

func (w *Window) moveTo(index int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.index = index
}

func (w *Window) firePopState() {
	w.mu.Lock()
	state := w.entries[w.index].state
	ids := make([]int, 0, len(w.popstate))
	for id := range w.popstate {
		ids = append(ids, id)
	}
	fns := make([]func(browser.HistoryState), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, w.popstate[id])
	}
	w.mu.Unlock()
	for _, fn := range fns {
		fn(state)
	}
}

func (w *Window) resolve(ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	return w.Location().ResolveReference(r), nil
}

// replace swaps the current entry for a new one, as navigation replace does.
func (w *Window) replace(u *url.URL) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries[w.index] = &entry{url: u, key: w.newKey()}
}

func (w *Window) push(u *url.URL, state browser.HistoryState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries[:w.index+1], &entry{url: u, state: state, key: w.newKey()})
	w.index++
}

type history Window

func (h *history) PushState(state browser.HistoryState, rawURL string) {
	w := (*Window)(h)
	u, err := w.resolve(rawURL)
	if err != nil {
		panic(fmt.Sprintf("browsertest: pushState %q: %v", rawURL, err))
	}
	w.push(u, state)
}

func (h *history) ReplaceState(state browser.HistoryState, rawURL string) {
	w := (*Window)(h)
	u, err := w.resolve(rawURL)
	if err != nil {
		panic(fmt.Sprintf("browsertest: replaceState %q: %v", rawURL, err))
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	e := w.entries[w.index]
	e.url = u
	e.state = state
}

func (h *history) State() browser.HistoryState {
	w := (*Window)(h)
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entries[w.index].state
}

type navigation struct {
	w         *Window
	mu        sync.Mutex
	listeners map[int]func(browser.NavigateEvent)
	nextID    int
}

func (n *navigation) Navigate(rawURL string, info string) <-chan error {
	done := make(chan error, 1)
	n.w.mu.Lock()
	n.w.NavigateCalls = append(n.w.NavigateCalls, rawURL)
	n.w.mu.Unlock()

	u, err := n.w.resolve(rawURL)
	if err != nil {
		done <- err
		return done
	}
	ev := n.newEvent(browser.Push, u.String(), "", info)
	done <- n.dispatch(ev, func() { n.w.push(u, browser.HistoryState{}) })
	return done
}

func (n *navigation) CurrentEntryKey() string {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()
	return n.w.entries[n.w.index].key
}

func (n *navigation) OnNavigate(fn func(browser.NavigateEvent)) (remove func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

func (n *navigation) newEvent(typ browser.NavigationType, dest, key, info string) *navigateEvent {
	current := n.w.Location()
	target, _ := url.Parse(dest)
	return &navigateEvent{
		typ:          typ,
		dest:         browser.Destination{URL: dest, Key: key, SameDocument: typ == browser.Traverse},
		canIntercept: browser.SameOrigin(current, target),
		hashChange:   typ != browser.Reload && target != nil && target.Fragment != "" && target.Path == current.Path && target.RawQuery == current.RawQuery,
		info:         info,
	}
}

// dispatch delivers ev to listeners, commits the navigation and, when a
// listener intercepted it, runs the handlers. The returned error is what the
// finished promise would reject with.
func (n *navigation) dispatch(ev *navigateEvent, commit func()) error {
	n.mu.Lock()
	fns := make([]func(browser.NavigateEvent), 0, len(n.listeners))
	for id := 0; id < n.nextID; id++ {
		if fn, ok := n.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}

	if len(ev.handlers) == 0 {
		if ev.typ == browser.Traverse || ev.hashChange {
			commit()
			return nil
		}
		n.w.mu.Lock()
		n.w.DocumentLoads = append(n.w.DocumentLoads, ev.dest.URL)
		n.w.mu.Unlock()
		return nil
	}

	commit()
	for _, h := range ev.handlers {
		if err := h(context.Background()); err != nil {
			return err
		}
	}
	return nil
}

type navigateEvent struct {
	typ          browser.NavigationType
	dest         browser.Destination
	canIntercept bool
	hashChange   bool
	info         string
	handlers     []func(ctx context.Context) error
}

func (e *navigateEvent) NavigationType() browser.NavigationType { return e.typ }
func (e *navigateEvent) Destination() browser.Destination       { return e.dest }
func (e *navigateEvent) CanIntercept() bool                     { return e.canIntercept }
func (e *navigateEvent) DownloadRequest() string                { return "" }
func (e *navigateEvent) Info() string                           { return e.info }

func (e *navigateEvent) Intercept(handler func(ctx context.Context) error) {
	if !e.canIntercept {
		panic("browsertest: intercept called on a navigation that cannot be intercepted")
	}
	e.handlers = append(e.handlers, handler)
}

// ScrollBox is a fake scrollable element.
type ScrollBox struct {
	mu     sync.Mutex
	offset float64
}

// ScrollTop implements browser.ScrollContainer.
func (s *ScrollBox) ScrollTop() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// SetScrollTop implements browser.ScrollContainer. Negative offsets clamp to
// zero, as they do for real elements.
func (s *ScrollBox) SetScrollTop(offset float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	s.offset = offset
}
