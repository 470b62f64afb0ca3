package router

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// loaderCache tracks components whose loader has resolved. The set only
// grows. Concurrent navigations to the same unloaded component share one
// loader call.
type loaderCache struct {
	mu     sync.Mutex
	loaded map[string]struct{}
	group  singleflight.Group
}

func newLoaderCache() *loaderCache {
	return &loaderCache{loaded: make(map[string]struct{})}
}

func (c *loaderCache) has(component string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.loaded[component]
	return ok
}

// ensure runs load unless component is already loaded. A failed load leaves
// the component unmarked so a later call retries it. Callers joining an
// in-flight load share the first caller's ctx.
func (c *loaderCache) ensure(ctx context.Context, component string, load Loader) error {
	if load == nil || c.has(component) {
		return nil
	}
	_, err, _ := c.group.Do(component, func() (any, error) {
		if c.has(component) {
			return nil, nil
		}
		if err := load(ctx); err != nil {
			return nil, &LoadError{Component: component, Err: err}
		}
		c.mu.Lock()
		c.loaded[component] = struct{}{}
		c.mu.Unlock()
		return nil, nil
	})
	return err
}
