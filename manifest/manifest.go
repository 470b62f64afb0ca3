// Package manifest reads the declarative route table shared by the wasm app
// and the dev server.
//
//	routes:
//	  - pattern: /
//	    component: home-page
//	  - pattern: /settings
//	    component: settings-page
//	    bundle: /bundles/settings-page.js
//	notFound:
//	  component: not-found-page
//	nav:
//	  - path: /
//	    label: Today
//	scrollContainer: "#content"
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vcrobe/feedtrack/router"
)

// Route is one route table entry. Bundle, when set, is the module the
// component's loader imports.
type Route struct {
	Pattern   string `yaml:"pattern"`
	Component string `yaml:"component"`
	Bundle    string `yaml:"bundle,omitempty"`
}

// NotFound is the fallback route.
type NotFound struct {
	Component string `yaml:"component"`
	Bundle    string `yaml:"bundle,omitempty"`
}

// Link is a navigation entry shown by the app shell.
type Link struct {
	Path  string `yaml:"path"`
	Label string `yaml:"label"`
}

// Manifest is the parsed routes file.
type Manifest struct {
	Title           string    `yaml:"title,omitempty"`
	Routes          []Route   `yaml:"routes"`
	NotFound        *NotFound `yaml:"notFound,omitempty"`
	Nav             []Link    `yaml:"nav,omitempty"`
	ScrollContainer string    `yaml:"scrollContainer,omitempty"`
}

// LoaderFunc returns the loader for a bundle.
type LoaderFunc func(bundle string) router.Loader

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing route manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading route manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the manifest against the router's table rules. Duplicate
// patterns are rejected here even though the router would accept them, since
// in a hand-written file they are always a mistake.
func (m *Manifest) Validate() error {
	if len(m.Routes) == 0 {
		return fmt.Errorf("route manifest: no routes")
	}
	seen := make(map[string]bool, len(m.Routes))
	for _, r := range m.Routes {
		if seen[r.Pattern] {
			return fmt.Errorf("route manifest: duplicate pattern %q", r.Pattern)
		}
		seen[r.Pattern] = true
	}
	for _, l := range m.Nav {
		if l.Path == "" || l.Label == "" {
			return fmt.Errorf("route manifest: nav link needs path and label")
		}
	}
	if _, err := m.Table(); err != nil {
		return fmt.Errorf("route manifest: %w", err)
	}
	return nil
}

// Definitions converts the manifest to router types. Routes with a bundle
// get loaderFor(bundle); loaderFor may be nil, e.g. for the dev server which
// never loads bundles.
func (m *Manifest) Definitions(loaderFor LoaderFunc) ([]router.RouteDefinition, *router.NotFoundConfig) {
	load := func(bundle string) router.Loader {
		if bundle == "" || loaderFor == nil {
			return nil
		}
		return loaderFor(bundle)
	}

	defs := make([]router.RouteDefinition, len(m.Routes))
	for i, r := range m.Routes {
		defs[i] = router.RouteDefinition{Pattern: r.Pattern, Component: r.Component, Loader: load(r.Bundle)}
	}
	var nf *router.NotFoundConfig
	if m.NotFound != nil {
		nf = &router.NotFoundConfig{Component: m.NotFound.Component, Loader: load(m.NotFound.Bundle)}
	}
	return defs, nf
}

// Table builds a loader-less route table, for resolving paths outside the
// browser.
func (m *Manifest) Table() (*router.Table, error) {
	defs, nf := m.Definitions(nil)
	return router.NewTable(defs, nf)
}

// Bundles lists every bundle referenced by the manifest, in order.
func (m *Manifest) Bundles() []string {
	var out []string
	for _, r := range m.Routes {
		if r.Bundle != "" {
			out = append(out, r.Bundle)
		}
	}
	if m.NotFound != nil && m.NotFound.Bundle != "" {
		out = append(out, m.NotFound.Bundle)
	}
	return out
}
