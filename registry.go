package kaleido

import (
	"fmt"
	"sort"
)

// Factory builds an element from an opaque property record. The record comes
// straight from a decoded config; missing keys leave the element at its
// defaults.
type Factory func(props map[string]any) (Element, error)

// Registry is an explicit factory map from a component type name to its
// builder. Config load resolves component names here; unknown names resolve
// to an explicit not-found result handled by the warn-and-skip policy.
type Registry struct {
	kind      string
	factories map[string]Factory
}

// NewRegistry creates an empty registry. kind ("display" or "effect") only
// labels errors and log lines.
func NewRegistry(kind string) *Registry {
	return &Registry{
		kind:      kind,
		factories: make(map[string]Factory),
	}
}

// Register validates and stores a factory under the given type name.
// Empty names, nil factories, and duplicate registrations are rejected.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return fmt.Errorf("%s registry: empty type name", r.kind)
	}
	if f == nil {
		return fmt.Errorf("%s registry: nil factory for %q", r.kind, name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%s registry: %q already registered", r.kind, name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister is Register for init-time wiring of built-ins; it panics on a
// registration error.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Resolve returns the factory for a type name and whether it exists.
func (r *Registry) Resolve(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Displays and Effects are the package-level registries config load resolves
// component names against, selected by which config section a component came
// from. Built-ins register in init; applications add their own before
// loading configs.
var (
	Displays = NewRegistry("display")
	Effects  = NewRegistry("effect")
)
