package registry

import (
	"slices"
	"sync"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
	"github.com/tfdiagram/tfdiagram/internal/result"
)

// RefMap maps component ids to Terraform resource addresses (e.g. "3f2c..." -> "aws_vpc.main").
type RefMap map[string]string

// Factory rebuilds a component from its record. Children are attached by the caller.
type Factory func(rec diagram.NodeRecord) (*diagram.Component, error)

// ResourceHandler validates a component kind and renders it as Terraform.
type ResourceHandler interface {
	ResourceType() string
	Validate(c *diagram.Component) ([]result.Error, []result.Warning)
	GenerateHCL(c *diagram.Component, d *diagram.Document, refs RefMap) ([]byte, error)
}

// Registry maps type tags to factories and resource handlers.
//
// Registering a tag that already exists replaces the previous entry. This is
// intentional so kinds can be reloaded without restarting.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	handlers  map[string]ResourceHandler

	initOnce sync.Once
	initFn   func(*Registry)
}

// New returns a registry. init, if non-nil, runs once before the first
// lookup, and only when nothing has been registered by then.
func New(init func(*Registry)) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		handlers:  make(map[string]ResourceHandler),
		initFn:    init,
	}
}

func (r *Registry) ensureInit() {
	r.initOnce.Do(func() {
		if r.initFn == nil {
			return
		}
		r.mu.RLock()
		empty := len(r.factories) == 0
		r.mu.RUnlock()
		if empty {
			r.initFn(r)
		}
	})
}

// Register associates a type tag with a factory.
func (r *Registry) Register(typeTag string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typeTag] = f
}

// RegisterHandler associates a type tag with a resource handler.
func (r *Registry) RegisterHandler(typeTag string, h ResourceHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[typeTag] = h
}

// Reconstruct dispatches rec to the factory registered for rec.Type.
func (r *Registry) Reconstruct(rec diagram.NodeRecord) (*diagram.Component, error) {
	r.ensureInit()
	r.mu.RLock()
	f, ok := r.factories[rec.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, &diagram.UnknownTypeError{NodeID: rec.ID, Type: rec.Type}
	}
	return f(rec)
}

// Handler returns the resource handler for the type tag, or nil and false.
func (r *Registry) Handler(typeTag string) (ResourceHandler, bool) {
	r.ensureInit()
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[typeTag]
	return h, ok
}

// ListRegisteredTypes returns every type tag with a factory, sorted.
func (r *Registry) ListRegisteredTypes() []string {
	r.ensureInit()
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
