//go:build js && wasm

package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall/js"
)

// Await blocks until promise settles or ctx is done. It must not be called
// from a JS callback's own goroutine; the event loop would never get to run
// the promise's reactions.
func Await(ctx context.Context, promise js.Value) (js.Value, error) {
	type outcome struct {
		v   js.Value
		err error
	}
	done := make(chan outcome, 1)

	var onResolve, onReject js.Func
	release := func() {
		onResolve.Release()
		onReject.Release()
	}
	onResolve = js.FuncOf(func(this js.Value, args []js.Value) any {
		v := js.Undefined()
		if len(args) > 0 {
			v = args[0]
		}
		done <- outcome{v: v}
		release()
		return nil
	})
	onReject = js.FuncOf(func(this js.Value, args []js.Value) any {
		err := errors.New("promise rejected")
		if len(args) > 0 {
			err = jsError(args[0])
		}
		done <- outcome{err: err}
		release()
		return nil
	})
	promise.Call("then", onResolve, onReject)

	select {
	case o := <-done:
		return o.v, o.err
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	}
}

// NewPromise returns a JS promise settled by job, which runs on its own
// goroutine. A panic in job rejects the promise.
func NewPromise(job func() error) js.Value {
	var executor js.Func
	executor = js.FuncOf(func(this js.Value, args []js.Value) any {
		resolve, reject := args[0], args[1]
		go func() {
			defer executor.Release()
			err := func() (err error) {
				defer func() {
					if rec := recover(); rec != nil {
						err = fmt.Errorf("panic: %v", rec)
					}
				}()
				return job()
			}()
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke()
		}()
		return nil
	})
	return js.Global().Get("Promise").New(executor)
}

var (
	importerOnce sync.Once
	importer     js.Value
)

// Import evaluates a dynamic import() of specifier and waits for the module
// to finish loading.
func Import(ctx context.Context, specifier string) error {
	importerOnce.Do(func() {
		importer = js.Global().Get("Function").New("s", "return import(s)")
	})
	if _, err := Await(ctx, importer.Invoke(specifier)); err != nil {
		return fmt.Errorf("import %s: %w", specifier, err)
	}
	return nil
}

func jsError(v js.Value) error {
	if v.Type() == js.TypeObject {
		if msg := v.Get("message"); msg.Type() == js.TypeString {
			return errors.New(msg.String())
		}
	}
	return errors.New(v.String())
}
