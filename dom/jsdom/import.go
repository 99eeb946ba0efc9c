//go:build js && wasm

package jsdom

import (
	"context"
	"fmt"
	"syscall/js"
)

// ImportLoader loads an ES module with a dynamic import(). The embedded module
// attaches its own listeners to the surface once its initializer runs.
type ImportLoader struct{}

var dynamicImport = js.Global().Get("Function").New("path", "return import(path)")

// Load starts import(path) and waits for the promise to settle.
func (ImportLoader) Load(ctx context.Context, path string) error {
	done := make(chan error, 1)

	onResolve := js.FuncOf(func(js.Value, []js.Value) any {
		done <- nil
		return nil
	})
	onReject := js.FuncOf(func(_ js.Value, args []js.Value) any {
		reason := "unknown error"
		if len(args) > 0 {
			reason = args[0].Call("toString").String()
		}
		done <- fmt.Errorf("import %s: %s", path, reason)
		return nil
	})
	release := func() {
		onResolve.Release()
		onReject.Release()
	}

	dynamicImport.Invoke(path).Call("then", onResolve, onReject)

	select {
	case err := <-done:
		release()
		return err
	case <-ctx.Done():
		// the promise still holds the callbacks
		go func() {
			<-done
			release()
		}()
		return ctx.Err()
	}
}
