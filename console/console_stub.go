//go:build !(js && wasm)

package console

import (
	"fmt"
	"log/slog"
	"strings"
)

// Native builds (tests, the dev server) have no browser console, so messages
// go to the default slog logger instead. The actual implementation is in
// console.go with js/wasm build tags.

// Log writes at debug level.
func Log(args ...any) {
	slog.Debug(join(args))
}

// Warn writes at warn level.
func Warn(args ...any) {
	slog.Warn(join(args))
}

// Error writes at error level.
func Error(args ...any) {
	slog.Error(join(args))
}

// join mirrors console.log's space-separated argument rendering.
func join(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return strings.Join(parts, " ")
}
