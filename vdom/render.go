//go:build js && wasm

package vdom

import (
	"syscall/js"

	"github.com/vcrobe/feedtrack/console"
)

// RenderToSelector mounts the VNode under the first element matching the CSS selector.
func RenderToSelector(selector string, n *VNode) {
	if n == nil || selector == "" {
		return
	}
	mount := querySelector(selector)
	if !mount.Truthy() {
		console.Error("Mount element not found for selector:", selector)
		return
	}
	RenderTo(mount, n)
}

// RenderTo appends the rendered node to a specific mount element.
func RenderTo(mount js.Value, n *VNode) {
	if n == nil {
		return
	}
	el := createElement(n)
	if el.Truthy() {
		mount.Call("appendChild", el)
	}
}

// Clear removes every child of the element matching selector.
func Clear(selector string) {
	mount := querySelector(selector)
	if !mount.Truthy() {
		return
	}
	mount.Call("replaceChildren")
}

// DOMMounter renders into the live document.
type DOMMounter struct{}

// Mount replaces the contents of selector with n.
func (DOMMounter) Mount(selector string, n *VNode) {
	Clear(selector)
	RenderToSelector(selector, n)
}

// Replace swaps the contents of selector for n.
func (DOMMounter) Replace(selector string, n *VNode) {
	Clear(selector)
	RenderToSelector(selector, n)
}

func querySelector(selector string) js.Value {
	doc := js.Global().Get("document")
	if !doc.Truthy() {
		return js.Undefined()
	}
	return doc.Call("querySelector", selector)
}

func createElement(n *VNode) js.Value {
	doc := js.Global().Get("document")
	if !doc.Truthy() || n == nil || n.Tag == "" {
		return js.Undefined()
	}

	el := doc.Call("createElement", n.Tag)
	for k, v := range n.Attributes {
		el.Call("setAttribute", k, v)
	}
	if n.Content != "" {
		el.Set("textContent", n.Content)
	}
	for _, child := range n.Children {
		childEl := createElement(child)
		if childEl.Truthy() {
			el.Call("appendChild", childEl)
		}
	}

	if n.OnClick != nil {
		onClick := n.OnClick
		isLink := n.Tag == "a"
		cb := js.FuncOf(func(this js.Value, args []js.Value) any {
			if isLink && len(args) > 0 && modified(args[0]) {
				return nil
			}
			if len(args) > 0 {
				args[0].Call("preventDefault")
			}
			onClick()
			return nil
		})
		// The element lives as long as the page slot it was rendered into;
		// cb is not released.
		el.Call("addEventListener", "click", cb)
	}
	return el
}

// modified reports whether a click asks the browser for a new tab or window.
func modified(ev js.Value) bool {
	return ev.Get("button").Int() != 0 ||
		ev.Get("metaKey").Bool() ||
		ev.Get("ctrlKey").Bool() ||
		ev.Get("shiftKey").Bool() ||
		ev.Get("altKey").Bool()
}
