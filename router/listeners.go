package router

import (
	"fmt"
	"sync"

	"github.com/vcrobe/feedtrack/console"
)

type listenerEntry struct {
	id uint64
	fn Listener
}

// listenerRegistry is an ordered set of route listeners.
type listenerRegistry struct {
	mu      sync.Mutex
	nextID  uint64
	entries []listenerEntry
}

func (l *listenerRegistry) add(fn Listener) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.entries = append(l.entries, listenerEntry{id: l.nextID, fn: fn})
	return l.nextID
}

func (l *listenerRegistry) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

func (l *listenerRegistry) active(id uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.id == id {
			return true
		}
	}
	return false
}

func (l *listenerRegistry) snapshot() []listenerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]listenerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// notify calls every listener in registration order. A listener removed
// while the pass is running is skipped.
func (l *listenerRegistry) notify(route string, match RouteMatch) {
	for _, e := range l.snapshot() {
		if !l.active(e.id) {
			continue
		}
		safeCall(e.fn, route, match)
	}
}

func safeCall(fn Listener, route string, match RouteMatch) {
	defer func() {
		if rec := recover(); rec != nil {
			console.Error("[Router.notify] listener panicked on", route+":", fmt.Sprint(rec))
		}
	}()
	fn(route, match)
}
