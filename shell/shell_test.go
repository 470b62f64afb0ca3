//go:build !wasm

package shell

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcrobe/feedtrack/browser/browsertest"
	"github.com/vcrobe/feedtrack/router"
	"github.com/vcrobe/feedtrack/vdom"
)

type mounted struct {
	op       string
	selector string
	node     *vdom.VNode
}

// recordingMounter captures what would have been written to the document.
type recordingMounter struct {
	mu    sync.Mutex
	calls []mounted
}

func (m *recordingMounter) Mount(selector string, n *vdom.VNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, mounted{op: "mount", selector: selector, node: n})
}

func (m *recordingMounter) Replace(selector string, n *vdom.VNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, mounted{op: "replace", selector: selector, node: n})
}

func (m *recordingMounter) pages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.calls {
		if c.op == "replace" {
			out = append(out, c.node.Tag)
		}
	}
	return out
}

var links = []Link{
	{Path: "/", Label: "Today"},
	{Path: "/feedings", Label: "Feedings"},
	{Path: "/settings", Label: "Settings"},
}

func newRouter(t *testing.T) (*router.Router, *browsertest.Window) {
	t.Helper()
	win := browsertest.New("http://app.test/")
	r, err := router.New(win, []router.RouteDefinition{
		{Pattern: "/", Component: "home-page"},
		{Pattern: "/feedings", Component: "feeding-log"},
		{Pattern: "/settings", Component: "settings-page"},
	}, router.WithNotFound(router.NotFoundConfig{Component: "not-found-page"}))
	require.NoError(t, err)
	return r, win
}

func TestAppShell_Layout(t *testing.T) {
	r, _ := newRouter(t)
	a := NewAppShell(r, &recordingMounter{}, Config{Title: "feedtrack", Links: links})

	layout := a.Layout()

	nav := layout.Find(func(n *vdom.VNode) bool { return n.Tag == "nav" })
	require.NotNil(t, nav)
	require.Len(t, nav.Children, 3)
	assert.Equal(t, "/feedings", nav.Children[1].Attributes["href"])
	assert.Equal(t, "Feedings", nav.Children[1].Content)
	assert.NotNil(t, nav.Children[1].OnClick)

	slot := layout.Find(func(n *vdom.VNode) bool { return n.Attributes["id"] == "content" })
	require.NotNil(t, slot)
	assert.Equal(t, "main", slot.Tag)
	assert.Equal(t, "#content", a.SlotSelector())
}

func TestAppShell_StartMountsLayoutOnce(t *testing.T) {
	r, _ := newRouter(t)
	m := &recordingMounter{}
	a := NewAppShell(r, m, Config{Root: "#root", Links: links})

	a.Start()

	require.Len(t, m.calls, 1)
	assert.Equal(t, "mount", m.calls[0].op)
	assert.Equal(t, "#root", m.calls[0].selector)
}

func TestAppShell_FollowsRouteChanges(t *testing.T) {
	r, win := newRouter(t)
	m := &recordingMounter{}
	a := NewAppShell(r, m, Config{Links: links})
	a.Start()
	r.OnRouteChange(a.SetPage)

	ctx := context.Background()
	require.NoError(t, a.Follow(ctx, "/feedings"))
	require.NoError(t, a.Follow(ctx, "/settings?units=ml"))
	require.NoError(t, a.Follow(ctx, "/nope"))
	win.Back()

	assert.Equal(t, []string{"home-page", "feeding-log", "settings-page", "not-found-page", "settings-page"}, m.pages())

	last := m.calls[len(m.calls)-1]
	assert.Equal(t, "#content", last.selector)
	assert.Equal(t, "/settings", last.node.Attributes["data-path"])
	assert.Equal(t, "?units=ml", last.node.Attributes["data-search"])
}

func TestAppShell_SetPageIgnoresRepeats(t *testing.T) {
	r, _ := newRouter(t)
	m := &recordingMounter{}
	a := NewAppShell(r, m, Config{})

	match := router.RouteMatch{Pathname: "/"}
	a.SetPage("home-page", match)
	a.SetPage("home-page", match)
	a.SetPage("home-page", router.RouteMatch{Pathname: "/", Search: "?day=2"})

	assert.Equal(t, []string{"home-page", "home-page"}, m.pages())
}

func TestFailureMessage(t *testing.T) {
	loadErr := &router.LoadError{Component: "summary-page", Err: errors.New("offline")}

	assert.Equal(t, "Summary could not be loaded. Check your connection and try again.", failureMessage("Summary", loadErr))
	assert.Equal(t, "Summary could not be opened.", failureMessage("Summary", router.ErrClosed))
}
