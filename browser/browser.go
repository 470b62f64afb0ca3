// Package browser describes the slice of the browser environment the router
// and the app shell consume: location, session history, the optional
// Navigation API, animation frames and scrollable elements.
//
// The interfaces have NO build tags so they can be implemented by the
// syscall/js bindings (window_js.go) as well as by the in-memory fake in
// browsertest, which is what native tests run against.
package browser

import (
	"context"
	"net/url"
)

// NavigationType mirrors NavigateEvent.navigationType.
type NavigationType string

const (
	Push     NavigationType = "push"
	Replace  NavigationType = "replace"
	Traverse NavigationType = "traverse"
	Reload   NavigationType = "reload"
)

// HistoryState is the state object the router stores with each session
// history entry. Key identifies the entry across back/forward traversals.
type HistoryState struct {
	Key string
}

// History is window.history.
type History interface {
	PushState(state HistoryState, url string)
	ReplaceState(state HistoryState, url string)
	// State returns the current entry's state, or the zero value when the
	// entry carries no router state.
	State() HistoryState
}

// Destination mirrors NavigateEvent.destination.
type Destination struct {
	URL string
	// Key is empty for push and replace navigations; the entry does not
	// exist until the navigation commits.
	Key          string
	SameDocument bool
}

// NavigateEvent is the event dispatched by window.navigation on every
// navigation of the document.
type NavigateEvent interface {
	NavigationType() NavigationType
	Destination() Destination
	CanIntercept() bool
	// DownloadRequest is the download filename, empty unless the navigation
	// was triggered by a download link.
	DownloadRequest() string
	// Info is the info value passed to navigation.navigate, when it is a
	// string. Otherwise it is empty.
	Info() string
	// Intercept converts the navigation into a same-document navigation.
	// The destination entry is committed before handler runs. handler runs
	// outside the event dispatch and may block; ctx is cancelled when the
	// navigation is aborted.
	Intercept(handler func(ctx context.Context) error)
}

// Navigation is window.navigation.
type Navigation interface {
	// Navigate starts a navigation to url and returns a channel that receives
	// exactly one value once the navigation's finished promise settles.
	Navigate(url string, info string) <-chan error
	CurrentEntryKey() string
	// OnNavigate registers fn for navigate events. fn runs during event
	// dispatch and must not block.
	OnNavigate(fn func(NavigateEvent)) (remove func())
}

// ScrollContainer is an element whose vertical scroll offset can be read and
// written.
type ScrollContainer interface {
	ScrollTop() float64
	SetScrollTop(offset float64)
}

// Window is the global object.
type Window interface {
	// Location returns a copy of the current document URL.
	Location() *url.URL
	History() History
	// OnPopState registers fn for popstate events. fn may block.
	OnPopState(fn func(HistoryState)) (remove func())
	// Navigation returns nil when the Navigation API is unavailable.
	Navigation() Navigation
	// RequestAnimationFrame schedules fn once, before the next repaint.
	RequestAnimationFrame(fn func())
}

// SameOrigin reports whether a and b share scheme and host.
func SameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Scheme == b.Scheme && a.Host == b.Host
}
