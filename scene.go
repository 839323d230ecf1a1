package kaleido

import (
	"fmt"

	"github.com/google/uuid"
)

// sceneCounter numbers auto-named scenes. Plain counter, no atomic; the
// engine is single-threaded. ClearScenes resets it.
var sceneCounter int

func nextSceneName() string {
	sceneCounter++
	return fmt.Sprintf("Scene %d", sceneCounter)
}

func resetSceneCounter() {
	sceneCounter = 0
}

// SceneProps is a scene's value record: how its output is composited and
// whether it renders at all.
type SceneProps struct {
	Opacity   float64
	BlendMode BlendMode
	Enabled   bool
}

// DefaultSceneProps returns a fully opaque, enabled, normal-blend scene.
func DefaultSceneProps() SceneProps {
	return SceneProps{Opacity: 1, BlendMode: BlendNormal, Enabled: true}
}

// ScenePatch is a partial scene property update. Nil fields are left unchanged.
type ScenePatch struct {
	Opacity   *float64
	BlendMode *BlendMode
	Enabled   *bool
}

// Scene is an ordered, independently renderable unit owned by a stage. It
// holds displays (which draw into the scene buffer in order) and effects
// (which post-process the buffer as a chain).
type Scene struct {
	id    string
	name  string
	props SceneProps

	// stage is a non-owning back-reference for lookups only; the stage owns
	// the scene, never the other way around.
	stage *Stage

	displays []Display
	effects  []Effect
	reactors Reactors

	buffer  *Buffer
	w, h    int
	changed bool
}

// NewScene creates a scene with default properties. An empty name auto-names
// the scene from the process-wide counter ("Scene 1", "Scene 2", ...).
func NewScene(name string) *Scene {
	if name == "" {
		name = nextSceneName()
	}
	return &Scene{
		id:    uuid.NewString(),
		name:  name,
		props: DefaultSceneProps(),
		w:     DefaultWidth,
		h:     DefaultHeight,
	}
}

// ID returns the scene's unique id.
func (s *Scene) ID() string { return s.id }

// Name returns the scene's display name.
func (s *Scene) Name() string { return s.name }

// SetName renames the scene and marks it changed.
func (s *Scene) SetName(name string) {
	if name != "" && name != s.name {
		s.name = name
		s.changed = true
	}
}

// Stage returns the owning stage, or nil while detached.
func (s *Scene) Stage() *Stage { return s.stage }

// Props returns the scene's current property record.
func (s *Scene) Props() SceneProps { return s.props }

// Update applies the provided fields of a partial property record and
// reports whether anything actually changed. No-op updates do not dirty the
// scene.
func (s *Scene) Update(patch ScenePatch) bool {
	changed := false
	if patch.Opacity != nil {
		if o := clamp01(*patch.Opacity); o != s.props.Opacity {
			s.props.Opacity = o
			changed = true
		}
	}
	if patch.BlendMode != nil && *patch.BlendMode != s.props.BlendMode {
		s.props.BlendMode = *patch.BlendMode
		changed = true
	}
	if patch.Enabled != nil && *patch.Enabled != s.props.Enabled {
		s.props.Enabled = *patch.Enabled
		changed = true
	}
	if changed {
		s.changed = true
	}
	return changed
}

// IsEnabled reports whether the stage should render and blend this scene.
func (s *Scene) IsEnabled() bool { return s.props.Enabled }

// BlendProps returns the parameters the composer uses to blend this scene's
// buffer into the frame.
func (s *Scene) BlendProps() BlendProps {
	return BlendProps{Opacity: s.props.Opacity, Mode: s.props.BlendMode}
}

// SetReactor attaches an opaque scene-level handler reference under the
// given event key.
func (s *Scene) SetReactor(key, ref string) {
	if s.reactors == nil {
		s.reactors = make(Reactors)
	}
	s.reactors[key] = ref
}

// Reactors returns the scene-level reactor map. The returned map MUST NOT be
// mutated.
func (s *Scene) Reactors() Reactors { return s.reactors }

// --- Element management ---

// AddElement appends an element to the scene, routing displays and effects
// to their respective ordered lists, and marks the scene changed.
func (s *Scene) AddElement(e Element) Element {
	e.setScene(s)
	if e.Kind() == ElementEffect {
		if fx, ok := e.(Effect); ok {
			s.effects = append(s.effects, fx)
		}
	} else {
		if d, ok := e.(Display); ok {
			s.displays = append(s.displays, d)
		}
	}
	s.changed = true
	return e
}

// RemoveElement removes an element by identity and clears its scene
// back-reference. Returns false if the scene does not own the element.
func (s *Scene) RemoveElement(e Element) bool {
	if e.Kind() == ElementEffect {
		for i, fx := range s.effects {
			if Element(fx) == e {
				s.effects = append(s.effects[:i], s.effects[i+1:]...)
				e.setScene(nil)
				s.changed = true
				return true
			}
		}
		return false
	}
	for i, d := range s.displays {
		if Element(d) == e {
			s.displays = append(s.displays[:i], s.displays[i+1:]...)
			e.setScene(nil)
			s.changed = true
			return true
		}
	}
	return false
}

// ElementByID returns the display or effect with the given id, displays
// first, or nil if the scene owns no such element.
func (s *Scene) ElementByID(id string) Element {
	for _, d := range s.displays {
		if d.ID() == id {
			return d
		}
	}
	for _, fx := range s.effects {
		if fx.ID() == id {
			return fx
		}
	}
	return nil
}

// Displays returns the scene's ordered display list. The returned slice MUST
// NOT be mutated.
func (s *Scene) Displays() []Display { return s.displays }

// Effects returns the scene's ordered effect chain. The returned slice MUST
// NOT be mutated.
func (s *Scene) Effects() []Effect { return s.effects }

// --- Change tracking ---

// HasChanges reports whether the scene or any of its elements changed since
// the last reset.
func (s *Scene) HasChanges() bool {
	if s.changed {
		return true
	}
	for _, d := range s.displays {
		if d.HasChanges() {
			return true
		}
	}
	for _, fx := range s.effects {
		if fx.HasChanges() {
			return true
		}
	}
	return false
}

// ResetChanges clears the scene's dirty flag and every element's
// unconditionally.
func (s *Scene) ResetChanges() {
	s.changed = false
	for _, d := range s.displays {
		d.ResetChanges()
	}
	for _, fx := range s.effects {
		fx.ResetChanges()
	}
}

// --- Lifecycle ---

// attachedToStage runs after the stage takes ownership. The scene adopts the
// stage's current dimensions so its buffer matches the compositing target.
func (s *Scene) attachedToStage(st *Stage) {
	s.Resize(st.props.Width, st.props.Height)
}

// detachedFromStage runs after the stage has cleared the back-reference.
func (s *Scene) detachedFromStage(*Stage) {
	if s.buffer != nil {
		s.buffer.Dispose()
		s.buffer = nil
	}
}

// Resize updates the scene's render dimensions. The buffer is reallocated
// lazily on next render if it has not been created yet.
func (s *Scene) Resize(w, h int) {
	if w < 1 || h < 1 {
		return
	}
	s.w, s.h = w, h
	if s.buffer != nil {
		s.buffer.Resize(w, h)
	}
}

// --- Rendering ---

// Render draws the scene's enabled displays into its buffer in order, runs
// the enabled effect chain over it, and returns the buffer. The returned
// buffer is owned by the scene and valid until its next Render or Resize.
func (s *Scene) Render(frame FrameData) *Buffer {
	if s.buffer == nil {
		s.buffer = NewBuffer(s.w, s.h)
	}
	s.buffer.Clear()

	for _, d := range s.displays {
		if !d.Enabled() {
			continue
		}
		d.Render(frame, s.buffer)
	}

	s.applyEffects()
	return s.buffer
}

// applyEffects runs the enabled effects as a ping-pong chain over the
// stage's two backing buffers, then copies the final result back into the
// scene buffer. Without a stage (or with no enabled effects) it is a no-op.
func (s *Scene) applyEffects() {
	if s.stage == nil {
		return
	}
	ping, pong := s.stage.scratch()
	if ping == nil || pong == nil {
		return
	}

	src := s.buffer
	for _, fx := range s.effects {
		if !fx.Enabled() {
			continue
		}
		dst := ping
		if src == ping {
			dst = pong
		}
		dst.Clear()
		fx.Apply(src, dst)
		src = dst
	}
	if src != s.buffer {
		s.buffer.Clear()
		s.buffer.DrawBuffer(src, BlendNone)
	}
}
