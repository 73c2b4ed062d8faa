package handler

import (
	"fmt"
	"sort"
)

// Registry is an immutable, ordered name->Handler map. It is built once at
// construction and safe for concurrent use without locking.
type Registry struct {
	names    []string
	handlers map[string]Handler
}

// NewRegistry builds a Registry from the given handlers. Handler names must
// be unique and non-empty. The name list is kept sorted ascending so that
// iteration order is deterministic.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		name := h.Name()
		if name == "" {
			return nil, fmt.Errorf("handler with empty name")
		}
		if _, dup := r.handlers[name]; dup {
			return nil, fmt.Errorf("duplicate handler name: %s", name)
		}
		r.handlers[name] = h
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Get retrieves a handler by name.
func (r *Registry) Get(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered handler names in ascending order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int { return len(r.names) }

// Capabilities returns the capability lists of every registered handler,
// keyed by handler name.
func (r *Registry) Capabilities() map[string][]string {
	caps := make(map[string][]string, len(r.names))
	for _, name := range r.names {
		caps[name] = r.handlers[name].Capabilities()
	}
	return caps
}
