//go:build !(js && wasm)

package dialogs

import "github.com/vcrobe/feedtrack/console"

// Alert logs msg; native builds have no browser to show it in.
func Alert(msg string) {
	console.Warn("[dialogs.Alert]", msg)
}
