// Package shell is the rendering host for the feedtrack SPA. It renders a
// persistent layout once and, on every route change, swaps only the page
// slot for the routed component's element.
package shell

import (
	"context"
	"errors"
	"sync"

	"github.com/vcrobe/feedtrack/console"
	"github.com/vcrobe/feedtrack/dialogs"
	"github.com/vcrobe/feedtrack/router"
	"github.com/vcrobe/feedtrack/vdom"
)

// Navigator performs client-side navigation. *router.Router implements it.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Mounter writes VNodes into the document.
type Mounter interface {
	// Mount replaces the contents of selector with n.
	Mount(selector string, n *vdom.VNode)
	// Replace swaps the contents of selector for n.
	Replace(selector string, n *vdom.VNode)
}

// Link is a navigation entry in the layout.
type Link struct {
	Path  string
	Label string
}

// Config configures an AppShell.
type Config struct {
	Title string
	Links []Link
	// Root is the selector the layout is mounted into.
	Root string
	// SlotID is the id of the <main> element pages are rendered into. It is
	// also the scroll container.
	SlotID string
}

// AppShell is a stable root that holds the persistent layout and swaps the
// page slot when navigation occurs.
type AppShell struct {
	nav   Navigator
	mount Mounter
	cfg   Config

	mu         sync.Mutex
	currentKey string
}

// NewAppShell creates an AppShell. Empty Root and SlotID default to "#app"
// and "content".
func NewAppShell(nav Navigator, mount Mounter, cfg Config) *AppShell {
	if cfg.Root == "" {
		cfg.Root = "#app"
	}
	if cfg.SlotID == "" {
		cfg.SlotID = "content"
	}
	return &AppShell{nav: nav, mount: mount, cfg: cfg}
}

// SlotSelector is the CSS selector of the page slot.
func (a *AppShell) SlotSelector() string {
	return "#" + a.cfg.SlotID
}

// Layout builds the persistent layout with an empty page slot.
func (a *AppShell) Layout() *vdom.VNode {
	links := make([]*vdom.VNode, 0, len(a.cfg.Links))
	for _, l := range a.cfg.Links {
		path, label := l.Path, l.Label
		links = append(links, vdom.Anchor(path, label, map[string]any{"class": "nav-link"}, func() {
			// Click handlers run on the JS event loop; navigation may wait on
			// a bundle download.
			go func() {
				if err := a.Follow(context.Background(), path); err != nil {
					console.Error("[AppShell] navigation to", path, "failed:", err.Error())
					dialogs.Alert(failureMessage(label, err))
				}
			}()
		}))
	}
	return vdom.Div(map[string]any{"class": "app-shell"},
		vdom.Paragraph(a.cfg.Title, map[string]any{"class": "app-title"}),
		vdom.Nav(map[string]any{"class": "app-nav"}, links...),
		vdom.Main(map[string]any{"id": a.cfg.SlotID}),
	)
}

// failureMessage is what the user sees when a page cannot be opened.
func failureMessage(label string, err error) string {
	var loadErr *router.LoadError
	if errors.As(err, &loadErr) {
		return label + " could not be loaded. Check your connection and try again."
	}
	return label + " could not be opened."
}

// Start mounts the layout.
func (a *AppShell) Start() {
	a.mount.Mount(a.cfg.Root, a.Layout())
}

// Follow navigates to path, as a click on a layout link does.
func (a *AppShell) Follow(ctx context.Context, path string) error {
	return a.nav.Navigate(ctx, path)
}

// Page builds the element rendered into the slot for component.
func Page(component string, match router.RouteMatch) *vdom.VNode {
	attrs := map[string]any{"data-path": match.Pathname}
	if match.Search != "" {
		attrs["data-search"] = match.Search
	}
	return vdom.Element(component, attrs)
}

// SetPage renders component into the slot. It is a router.Listener.
// Re-notifications for the location already shown are ignored.
func (a *AppShell) SetPage(component string, match router.RouteMatch) {
	key := component + "|" + match.Pathname + match.Search
	a.mu.Lock()
	if key == a.currentKey {
		a.mu.Unlock()
		return
	}
	a.currentKey = key
	a.mu.Unlock()

	console.Log("[AppShell.SetPage]", component, match.Pathname)
	a.mount.Replace(a.SlotSelector(), Page(component, match))
}
