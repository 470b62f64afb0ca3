//go:build js && wasm

package main

import (
	"context"
	_ "embed"

	"github.com/vcrobe/feedtrack/browser"
	"github.com/vcrobe/feedtrack/console"
	"github.com/vcrobe/feedtrack/manifest"
	"github.com/vcrobe/feedtrack/router"
	"github.com/vcrobe/feedtrack/shell"
	"github.com/vcrobe/feedtrack/vdom"
)

//go:embed routes.yaml
var routesYAML []byte

func main() {
	m, err := manifest.Parse(routesYAML)
	if err != nil {
		console.Error("Invalid route manifest:", err.Error())
		panic(err)
	}

	// Each lazily loaded page is a custom element defined by its bundle.
	routes, notFound := m.Definitions(func(bundle string) router.Loader {
		return func(ctx context.Context) error {
			return browser.Import(ctx, bundle)
		}
	})
	var opts []router.Option
	if notFound != nil {
		opts = append(opts, router.WithNotFound(*notFound))
	}

	appRouter, err := router.New(browser.Global(), routes, opts...)
	if err != nil {
		console.Error("Failed to create router:", err.Error())
		panic(err)
	}

	links := make([]shell.Link, len(m.Nav))
	for i, l := range m.Nav {
		links[i] = shell.Link{Path: l.Path, Label: l.Label}
	}
	appShell := shell.NewAppShell(appRouter, vdom.DOMMounter{}, shell.Config{
		Title: m.Title,
		Links: links,
	})
	appShell.Start()

	scrollSelector := m.ScrollContainer
	if scrollSelector == "" {
		scrollSelector = appShell.SlotSelector()
	}
	appRouter.SetScrollContainer(func() browser.ScrollContainer {
		return browser.QuerySelector(scrollSelector)
	})
	appRouter.OnRouteChange(appShell.SetPage)

	if err := appRouter.Start(context.Background()); err != nil {
		console.Error("Failed to load initial route:", err.Error())
	}

	// Keep the Go program running
	select {}
}
