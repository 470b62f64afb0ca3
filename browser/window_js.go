//go:build js && wasm

package browser

import (
	"context"
	"fmt"
	"net/url"
	"syscall/js"

	"github.com/vcrobe/feedtrack/console"
)

// Compile-time assertions for the syscall/js bindings.
var (
	_ Window          = (*jsWindow)(nil)
	_ History         = (*jsHistory)(nil)
	_ Navigation      = (*jsNavigation)(nil)
	_ NavigateEvent   = (*jsNavigateEvent)(nil)
	_ ScrollContainer = (*Element)(nil)
)

type jsWindow struct {
	v js.Value
}

// Global returns the browser's window object.
func Global() Window {
	return &jsWindow{v: js.Global()}
}

func (w *jsWindow) Location() *url.URL {
	href := w.v.Get("location").Get("href").String()
	u, err := url.Parse(href)
	if err != nil {
		console.Error("[browser.Location] cannot parse location:", href, err.Error())
		return &url.URL{Path: "/"}
	}
	return u
}

func (w *jsWindow) History() History {
	return &jsHistory{v: w.v.Get("history")}
}

func (w *jsWindow) OnPopState(fn func(HistoryState)) (remove func()) {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		var state HistoryState
		if len(args) > 0 {
			state = stateFromJS(args[0].Get("state"))
		}
		// Route loaders await promises; blocking here would stall the event loop.
		go fn(state)
		return nil
	})
	w.v.Call("addEventListener", "popstate", cb)
	return func() {
		w.v.Call("removeEventListener", "popstate", cb)
		cb.Release()
	}
}

func (w *jsWindow) Navigation() Navigation {
	n := w.v.Get("navigation")
	if !n.Truthy() {
		return nil
	}
	return &jsNavigation{v: n}
}

func (w *jsWindow) RequestAnimationFrame(fn func()) {
	var cb js.Func
	cb = js.FuncOf(func(this js.Value, args []js.Value) any {
		cb.Release()
		fn()
		return nil
	})
	w.v.Call("requestAnimationFrame", cb)
}

type jsHistory struct {
	v js.Value
}

func (h *jsHistory) PushState(state HistoryState, u string) {
	h.v.Call("pushState", stateToJS(state), "", u)
}

func (h *jsHistory) ReplaceState(state HistoryState, u string) {
	h.v.Call("replaceState", stateToJS(state), "", u)
}

func (h *jsHistory) State() HistoryState {
	return stateFromJS(h.v.Get("state"))
}

func stateToJS(s HistoryState) map[string]any {
	return map[string]any{"key": s.Key}
}

func stateFromJS(v js.Value) HistoryState {
	if v.Type() != js.TypeObject {
		return HistoryState{}
	}
	key := v.Get("key")
	if key.Type() != js.TypeString {
		return HistoryState{}
	}
	return HistoryState{Key: key.String()}
}

type jsNavigation struct {
	v js.Value
}

func (n *jsNavigation) Navigate(u string, info string) <-chan error {
	done := make(chan error, 1)
	func() {
		defer func() {
			// navigation.navigate throws synchronously for invalid URLs or
			// while the document is unloading.
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("navigation.navigate: %v", rec)
			}
		}()
		result := n.v.Call("navigate", u, map[string]any{"info": info})
		go func() {
			_, err := Await(context.Background(), result.Get("finished"))
			done <- err
		}()
	}()
	return done
}

func (n *jsNavigation) CurrentEntryKey() string {
	entry := n.v.Get("currentEntry")
	if !entry.Truthy() {
		return ""
	}
	return entry.Get("key").String()
}

func (n *jsNavigation) OnNavigate(fn func(NavigateEvent)) (remove func()) {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		// Synchronous: intercept() is only legal during dispatch.
		fn(&jsNavigateEvent{v: args[0]})
		return nil
	})
	n.v.Call("addEventListener", "navigate", cb)
	return func() {
		n.v.Call("removeEventListener", "navigate", cb)
		cb.Release()
	}
}

type jsNavigateEvent struct {
	v js.Value
}

func (e *jsNavigateEvent) NavigationType() NavigationType {
	return NavigationType(e.v.Get("navigationType").String())
}

func (e *jsNavigateEvent) Destination() Destination {
	d := e.v.Get("destination")
	dest := Destination{
		URL:          d.Get("url").String(),
		SameDocument: d.Get("sameDocument").Bool(),
	}
	if key := d.Get("key"); key.Type() == js.TypeString {
		dest.Key = key.String()
	}
	return dest
}

func (e *jsNavigateEvent) CanIntercept() bool {
	return e.v.Get("canIntercept").Bool()
}

func (e *jsNavigateEvent) DownloadRequest() string {
	dr := e.v.Get("downloadRequest")
	if dr.Type() != js.TypeString {
		return ""
	}
	return dr.String()
}

func (e *jsNavigateEvent) Info() string {
	info := e.v.Get("info")
	if info.Type() != js.TypeString {
		return ""
	}
	return info.String()
}

func (e *jsNavigateEvent) Intercept(handler func(ctx context.Context) error) {
	ctx, cancel := context.WithCancel(context.Background())
	signal := e.v.Get("signal")
	onAbort := js.FuncOf(func(this js.Value, args []js.Value) any {
		cancel()
		return nil
	})
	signal.Call("addEventListener", "abort", onAbort)

	var h js.Func
	h = js.FuncOf(func(this js.Value, args []js.Value) any {
		return NewPromise(func() error {
			defer func() {
				signal.Call("removeEventListener", "abort", onAbort)
				onAbort.Release()
				h.Release()
				cancel()
			}()
			return handler(ctx)
		})
	})

	e.v.Call("intercept", map[string]any{
		"handler": h,
		"scroll":  "manual",
	})
}

// Element wraps a DOM element.
type Element struct {
	v js.Value
}

// QuerySelector returns the first element matching selector, or nil.
func QuerySelector(selector string) ScrollContainer {
	doc := js.Global().Get("document")
	if !doc.Truthy() {
		return nil
	}
	el := doc.Call("querySelector", selector)
	if !el.Truthy() {
		return nil
	}
	return &Element{v: el}
}

func (e *Element) ScrollTop() float64 {
	return e.v.Get("scrollTop").Float()
}

func (e *Element) SetScrollTop(offset float64) {
	e.v.Set("scrollTop", offset)
}
