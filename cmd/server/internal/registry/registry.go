package registry

import (
	"strings"
	"sync"
)

// Registry tracks which symbols each connection is subscribed to, keyed
// by connection id. An entry exists exactly while the connection is
// registered; subscribe/unsubscribe for an id without an entry are
// silently discarded, so late control messages for a torn-down
// connection cannot resurrect it.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]map[string]struct{}
}

func New() *Registry {
	return &Registry{subs: make(map[string]map[string]struct{})}
}

// Register creates an empty symbol set for the connection. Idempotent.
func (r *Registry) Register(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[connID]; !ok {
		r.subs[connID] = make(map[string]struct{})
	}
}

// Unregister drops the connection's entry entirely. Safe when absent.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.subs, connID)
}

// Subscribe adds the symbols (case-insensitive) to the connection's set.
// Blank symbols and unregistered connections are ignored.
func (r *Registry) Subscribe(connID string, symbols []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.subs[connID]
	if !ok {
		return
	}
	for _, s := range symbols {
		if sym := normalize(s); sym != "" {
			set[sym] = struct{}{}
		}
	}
}

// Unsubscribe removes the symbols from the connection's set. No-op for
// symbols or connections that are absent.
func (r *Registry) Unsubscribe(connID string, symbols []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.subs[connID]
	if !ok {
		return
	}
	for _, s := range symbols {
		delete(set, normalize(s))
	}
}

// IsSubscribed reports whether the connection currently holds the symbol.
func (r *Registry) IsSubscribed(connID, symbol string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.subs[connID]
	if !ok {
		return false
	}
	_, ok = set[normalize(symbol)]
	return ok
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
