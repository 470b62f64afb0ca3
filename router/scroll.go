package router

import (
	"fmt"
	"sync"

	"github.com/vcrobe/feedtrack/browser"
	"github.com/vcrobe/feedtrack/console"
)

// scrollLedger remembers the scroll offset each history entry was left at,
// keyed by entry identity rather than path so two visits to the same path
// restore independently.
type scrollLedger struct {
	mu      sync.Mutex
	offsets map[string]float64
}

func newScrollLedger() *scrollLedger {
	return &scrollLedger{offsets: make(map[string]float64)}
}

func (l *scrollLedger) save(key string, offset float64) {
	if key == "" {
		return
	}
	if offset < 0 {
		offset = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.offsets[key] = offset
}

// offset returns the saved offset for key, or 0 for entries never left.
func (l *scrollLedger) offset(key string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offsets[key]
}

// restoresScroll reports whether a navigation of type t returns to an entry
// whose saved offset should be replayed. Everything else starts at the top.
func restoresScroll(t browser.NavigationType) bool {
	return t == browser.Traverse || t == browser.Reload
}

// SetScrollContainer registers how to find the scrollable region. The getter
// is called each time the router reads or writes the offset, so it may
// return a different element after the host re-renders, or nil.
func (r *Router) SetScrollContainer(getter func() browser.ScrollContainer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrollGetter = getter
}

// scrollContainer returns the current container, or nil when there is none
// or the getter panics.
func (r *Router) scrollContainer() (c browser.ScrollContainer) {
	r.mu.Lock()
	getter := r.scrollGetter
	r.mu.Unlock()
	if getter == nil {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			console.Error("[Router.scrollContainer] getter panicked:", fmt.Sprint(rec))
			c = nil
		}
	}()
	return getter()
}

func (r *Router) saveScroll(key string) {
	c := r.scrollContainer()
	if c == nil {
		return
	}
	r.scroll.save(key, c.ScrollTop())
}

// scheduleScroll applies the scroll policy for nav after the host has had a
// frame to render the new view.
func (r *Router) scheduleScroll(nav navigation) {
	target := 0.0
	if restoresScroll(nav.kind) {
		target = r.scroll.offset(nav.to)
	}
	r.win.RequestAnimationFrame(func() {
		c := r.scrollContainer()
		if c == nil {
			return
		}
		c.SetScrollTop(target)
	})
}
