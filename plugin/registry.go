package plugin

import (
	"context"
	"fmt"
	"sync"
)

// HandlerFunc implements a method. The returned value becomes the result of
// the JSON-RPC response and must be JSON-encodable.
type HandlerFunc func(ctx context.Context, call *Call) (any, error)

// Method is an immutable binding of a name to a handler and its declared
// parameters.
type Method struct {
	Name        string
	Description string
	Handler     HandlerFunc

	params  *paramSet
	builtin bool
}

// Params returns a copy of the declared parameters.
func (m *Method) Params() []Param {
	return append([]Param(nil), m.params.all...)
}

// Usage renders the declared parameters, e.g. "name [greeting]".
func (m *Method) Usage() string {
	return m.params.usage()
}

// Registry holds the name to method bindings. Names are unique; the first
// registration under a name wins.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]*Method
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{methods: make(map[string]*Method)}
}

// Register binds name to handler. It fails with ErrDuplicateMethod if the
// name is taken and with ErrInvalidParam if the declaration is malformed.
func (r *Registry) Register(name, description string, handler HandlerFunc, params ...Param) error {
	m, err := newMethod(name, description, handler, params)
	if err != nil {
		return err
	}
	return r.add(m)
}

func newMethod(name, description string, handler HandlerFunc, params []Param) (*Method, error) {
	if name == "" {
		return nil, fmt.Errorf("method name must not be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("method %q: nil handler", name)
	}
	ps, err := newParamSet(params)
	if err != nil {
		return nil, fmt.Errorf("method %q: %w", name, err)
	}
	return &Method{Name: name, Description: description, Handler: handler, params: ps}, nil
}

func (r *Registry) add(m *Method) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.methods[m.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMethod, m.Name)
	}
	r.methods[m.Name] = m
	r.order = append(r.order, m.Name)
	return nil
}

// replace rebinds name unconditionally. Only the init handshake uses it.
func (r *Registry) replace(m *Method) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.methods[m.Name]; !exists {
		r.order = append(r.order, m.Name)
	}
	r.methods[m.Name] = m
}

// Lookup returns the method bound to name.
func (r *Registry) Lookup(name string) (*Method, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.methods[name]
	return m, ok
}

// Methods returns all bound methods in registration order.
func (r *Registry) Methods() []*Method {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Method, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.methods[name])
	}
	return out
}
