package router

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRoute is returned when no pattern matches and no not-found route
	// was configured.
	ErrNoRoute = errors.New("router: no route matches path")

	// ErrInvalidRoute is returned by NewTable for malformed definitions.
	ErrInvalidRoute = errors.New("router: invalid route definition")

	// ErrCrossOrigin is returned by Navigate for paths that resolve to
	// another origin.
	ErrCrossOrigin = errors.New("router: cross-origin navigation")

	// ErrClosed is returned by Navigate after Cleanup.
	ErrClosed = errors.New("router: closed")
)

// LoadError reports a failed route loader. The component stays unloaded and
// the next navigation to it retries the loader.
type LoadError struct {
	Component string
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("router: loading %s: %v", e.Component, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
