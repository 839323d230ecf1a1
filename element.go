package kaleido

import (
	"github.com/google/uuid"
)

// ElementKind distinguishes the two element families a scene owns.
type ElementKind uint8

const (
	ElementDisplay ElementKind = iota // renders content into the scene buffer
	ElementEffect                     // post-processes the scene buffer
)

// String returns the config section name for the kind.
func (k ElementKind) String() string {
	if k == ElementEffect {
		return "effect"
	}
	return "display"
}

// Reactors maps an event key to an opaque handler reference. The core never
// interprets handler references; it attaches them to elements during config
// load and carries them through serialization.
type Reactors map[string]string

// Element is the common contract for displays and effects. Concrete types
// embed baseElement and add their typed parameters; parameter records cross
// the config boundary as opaque key/value maps.
type Element interface {
	Entity
	Kind() ElementKind
	Enabled() bool
	SetEnabled(enabled bool)
	Scene() *Scene
	HasChanges() bool
	ResetChanges()
	SetReactor(key, ref string)
	Reactors() Reactors
	// Update applies the provided keys from a property record and reports
	// whether any parameter actually changed.
	Update(props map[string]any) bool
	// Properties returns an independent property record for serialization.
	Properties() map[string]any

	setScene(s *Scene)
}

// baseElement carries the identity, ownership, and change-tracking state
// shared by all displays and effects.
type baseElement struct {
	id       string
	name     string
	kind     ElementKind
	scene    *Scene
	enabled  bool
	changed  bool
	reactors Reactors
}

func newBaseElement(name string, kind ElementKind) baseElement {
	return baseElement{
		id:      uuid.NewString(),
		name:    name,
		kind:    kind,
		enabled: true,
	}
}

// ID returns the element's unique id.
func (e *baseElement) ID() string { return e.id }

// Name returns the element's registered type name.
func (e *baseElement) Name() string { return e.name }

// Kind reports whether the element is a display or an effect.
func (e *baseElement) Kind() ElementKind { return e.kind }

// Enabled reports whether the element participates in rendering.
func (e *baseElement) Enabled() bool { return e.enabled }

// SetEnabled toggles the element and marks it changed on transitions.
func (e *baseElement) SetEnabled(enabled bool) {
	if e.enabled != enabled {
		e.enabled = enabled
		e.changed = true
	}
}

// Scene returns the owning scene, or nil while unattached.
func (e *baseElement) Scene() *Scene { return e.scene }

func (e *baseElement) setScene(s *Scene) { e.scene = s }

// HasChanges reports whether the element changed since the last reset.
func (e *baseElement) HasChanges() bool { return e.changed }

// ResetChanges clears the element's dirty flag.
func (e *baseElement) ResetChanges() { e.changed = false }

// markChanged sets the dirty flag. Concrete elements call it from their
// parameter setters.
func (e *baseElement) markChanged() { e.changed = true }

// SetReactor attaches an opaque handler reference under the given event key.
func (e *baseElement) SetReactor(key, ref string) {
	if e.reactors == nil {
		e.reactors = make(Reactors)
	}
	e.reactors[key] = ref
}

// Reactors returns the element's reactor map. The returned map MUST NOT be
// mutated.
func (e *baseElement) Reactors() Reactors { return e.reactors }

// cloneReactors returns an independent copy, or nil for an empty map.
func cloneReactors(r Reactors) Reactors {
	if len(r) == 0 {
		return nil
	}
	out := make(Reactors, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// --- Property record helpers ---
// Config decoding hands elements opaque key/value maps; JSON numbers arrive
// as float64 and TOML numbers as int64 or float64, so the numeric helpers
// accept both.

func propFloat(props map[string]any, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func propInt(props map[string]any, key string) (int, bool) {
	f, ok := propFloat(props, key)
	return int(f), ok
}

func propBool(props map[string]any, key string) (bool, bool) {
	v, ok := props[key].(bool)
	return v, ok
}

// propColor reads a nested {r, g, b, a} record.
func propColor(props map[string]any, key string) (Color, bool) {
	m, ok := props[key].(map[string]any)
	if !ok {
		return Color{}, false
	}
	var c Color
	c.R, _ = propFloat(m, "r")
	c.G, _ = propFloat(m, "g")
	c.B, _ = propFloat(m, "b")
	if a, ok := propFloat(m, "a"); ok {
		c.A = a
	} else {
		c.A = 1
	}
	return c, true
}

// colorRecord emits a color as the {r, g, b, a} wire shape.
func colorRecord(c Color) map[string]any {
	return map[string]any{"r": c.R, "g": c.G, "b": c.B, "a": c.A}
}
