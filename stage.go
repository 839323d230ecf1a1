package kaleido

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
)

// TypeStage is the type tag identifying the root stage node in serialized
// records.
const TypeStage = "stage"

// Stage is the root compositing orchestrator. It owns an ordered collection
// of scenes, the composer, and two backing scratch buffers, and drives the
// per-frame render: clear, per-scene render and blend, flush to screen.
//
// All operations are single-threaded: the same logical thread that drives
// the frame loop must perform scene mutation, resize, zoom, and config load.
// The stage performs no internal synchronization.
type Stage struct {
	id    string
	name  string
	props StageProps

	scenes []*Scene

	changed     bool
	initialized bool
	debug       bool

	// Observers is the callback table for resize/zoom notifications. Set it
	// before use; it is consulted on every notification.
	Observers Observers

	surface  *ebiten.Image
	composer Composer
	bufferA  *Buffer
	bufferB  *Buffer
	bg       colorRGBA

	zoomAnim *zoomAnim
}

// NewStage creates a stage with default properties and a generated id. The
// stage acquires no rendering resources until Init.
func NewStage(name string) *Stage {
	return &Stage{
		id:    uuid.NewString(),
		name:  name,
		props: DefaultStageProps(),
	}
}

// ID returns the stage's unique id.
func (st *Stage) ID() string { return st.id }

// Name returns the stage's display name.
func (st *Stage) Name() string { return st.name }

// Props returns the stage's current property record.
func (st *Stage) Props() StageProps { return st.props }

// SetDebugMode enables or disables per-frame render stats on stderr.
func (st *Stage) SetDebugMode(enabled bool) { st.debug = enabled }

// --- Resource acquisition ---

// Init binds the stage to a display surface and allocates the composer and
// both backing buffers at the current stage dimensions. Idempotent: a second
// call while initialized is a no-op. On failure no resources are retained
// and the stage stays uninitialized.
func (st *Stage) Init(surface *ebiten.Image) error {
	if st.initialized {
		return nil
	}
	if surface == nil {
		return fmt.Errorf("stage %q: init with nil surface", st.name)
	}
	w, h := st.props.Width, st.props.Height
	composer, err := NewFrameComposer(surface, w, h)
	if err != nil {
		return fmt.Errorf("stage %q: %w", st.name, err)
	}
	st.surface = surface
	st.composer = composer
	st.bufferA = NewBuffer(w, h)
	st.bufferB = NewBuffer(w, h)
	st.resolveBackground()
	st.initialized = true
	return nil
}

// Initialized reports whether rendering resources have been acquired.
func (st *Stage) Initialized() bool { return st.initialized }

// resolveBackground caches the background color in the renderer's native
// premultiplied representation.
func (st *Stage) resolveBackground() {
	st.bg = st.props.BackgroundColor.toRGBA()
}

// scratch returns the two backing buffers scenes ping-pong their effect
// chains through. Both are nil before Init.
func (st *Stage) scratch() (*Buffer, *Buffer) {
	return st.bufferA, st.bufferB
}

// --- Property update ---

// Update merges a partial property record into the stage. Only provided
// fields are applied; per-field equality decides whether anything changed,
// so a no-op patch does not dirty the stage. Non-positive dimensions are
// ignored. A width/height change propagates a resize and a background change
// re-resolves the color. Returns whether any property actually changed.
func (st *Stage) Update(patch StagePatch) bool {
	next, changed := mergeProps(st.props, patch)
	if !changed.Any() {
		return false
	}
	st.props = next
	if changed.Size() {
		st.SetSize(next.Width, next.Height)
	}
	if changed.BackgroundColor {
		st.resolveBackground()
	}
	st.changed = true
	return true
}

// --- Resize ---

// SetSize propagates new dimensions to every owned scene in order, then the
// composer, then both backing buffers, and finally fires the resize
// notification. Scenes resize first so that a render triggered during the
// transition never targets a composer larger than the scene buffers.
// Callers change dimensions through Update; SetSize only propagates.
func (st *Stage) SetSize(w, h int) {
	for _, sc := range st.scenes {
		sc.Resize(w, h)
	}
	if st.composer != nil {
		st.composer.Resize(w, h)
	}
	if st.bufferA != nil {
		st.bufferA.Resize(w, h)
	}
	if st.bufferB != nil {
		st.bufferB.Resize(w, h)
	}
	st.Observers.notifyResize()
}

// --- Zoom ---

// SetZoom steps the zoom level: a positive direction zooms in by a quarter
// step up to 1.0, a negative direction zooms out down to 0.25, and zero
// resets to 1.0. Changes route through Update so they participate in change
// tracking. The zoom notification fires whether or not the level changed.
func (st *Stage) SetZoom(dir int) {
	if z := stepZoom(st.props.Zoom, dir); z != st.props.Zoom {
		st.Update(StagePatch{Zoom: &z})
	}
	st.Observers.notifyZoom()
}

// --- Scene graph ---

// AddScene inserts a scene at the given index (existing scenes at or after
// it shift later) or appends when no index is given, sets the scene's stage
// back-reference, runs its attach hook, and marks the stage dirty. Adding a
// scene the stage already owns is a no-op. Returns the scene.
func (st *Stage) AddScene(sc *Scene, index ...int) *Scene {
	if sc == nil || st.indexOf(sc) >= 0 {
		return sc
	}
	if len(index) > 0 && index[0] >= 0 && index[0] < len(st.scenes) {
		i := index[0]
		st.scenes = append(st.scenes, nil)
		copy(st.scenes[i+1:], st.scenes[i:])
		st.scenes[i] = sc
	} else {
		st.scenes = append(st.scenes, sc)
	}
	sc.stage = st
	sc.attachedToStage(st)
	st.changed = true
	return sc
}

// RemoveScene removes a scene by identity, clears its stage back-reference,
// and runs its detach hook. The back-reference is cleared before the hook
// runs. Returns false if the stage does not own the scene.
func (st *Stage) RemoveScene(sc *Scene) bool {
	i := st.indexOf(sc)
	if i < 0 {
		return false
	}
	st.scenes = append(st.scenes[:i], st.scenes[i+1:]...)
	sc.stage = nil
	sc.detachedFromStage(st)
	st.changed = true
	return true
}

// ShiftScene swaps a scene with its neighbor delta positions away. A shift
// whose target index is out of range, or that resolves to the scene's
// current position, is a no-op and does not dirty the stage. Returns whether
// the order changed.
func (st *Stage) ShiftScene(sc *Scene, delta int) bool {
	i := st.indexOf(sc)
	if i < 0 {
		return false
	}
	j := i + delta
	if j < 0 || j >= len(st.scenes) || j == i {
		return false
	}
	st.scenes[i], st.scenes[j] = st.scenes[j], st.scenes[i]
	st.changed = true
	return true
}

// ClearScenes removes every scene through the normal detach path and resets
// the auto-name counter used for new scenes.
func (st *Stage) ClearScenes() {
	for len(st.scenes) > 0 {
		st.RemoveScene(st.scenes[len(st.scenes)-1])
	}
	resetSceneCounter()
	st.changed = true
}

// HasScenes reports whether the stage owns at least one scene.
func (st *Stage) HasScenes() bool { return len(st.scenes) > 0 }

// Scenes returns the stage's ordered scene list. The returned slice MUST NOT
// be mutated.
func (st *Stage) Scenes() []*Scene { return st.scenes }

// indexOf returns the position of a scene by identity, or -1.
func (st *Stage) indexOf(sc *Scene) int {
	for i, s := range st.scenes {
		if s == sc {
			return i
		}
	}
	return -1
}

// --- Lookup ---

// SceneByID returns the owned scene with the given id, or nil.
func (st *Stage) SceneByID(id string) *Scene {
	for _, sc := range st.scenes {
		if sc.id == id {
			return sc
		}
	}
	return nil
}

// ElementByID resolves an id against the stage graph: scenes first (a scene
// id is a root-level match), then each scene's elements in scene order.
// Returns nil if nothing matches.
func (st *Stage) ElementByID(id string) Entity {
	for _, sc := range st.scenes {
		if sc.id == id {
			return sc
		}
	}
	for _, sc := range st.scenes {
		if e := sc.ElementByID(id); e != nil {
			return e
		}
	}
	return nil
}

// RemoveElement removes a scene or a scene element by identity. A scene
// routes through RemoveScene; an element resolves its owning scene through
// its back-reference and is removed there. Returns whether anything was
// removed.
func (st *Stage) RemoveElement(target Entity) bool {
	switch v := target.(type) {
	case *Scene:
		return st.RemoveScene(v)
	case Element:
		if sc := v.Scene(); sc != nil {
			return sc.RemoveElement(v)
		}
	}
	return false
}

// --- Change tracking ---

// HasChanges reports whether the stage's own structure or properties
// changed, or any owned scene reports changes.
func (st *Stage) HasChanges() bool {
	if st.changed {
		return true
	}
	for _, sc := range st.scenes {
		if sc.HasChanges() {
			return true
		}
	}
	return false
}

// ResetChanges clears the stage's dirty flag and every scene's
// unconditionally, so no scene is left dirty after a stage-level reset.
func (st *Stage) ResetChanges() {
	st.changed = false
	for _, sc := range st.scenes {
		sc.ResetChanges()
	}
}

// --- Serialization ---

// StageRecord is the stage's serialized form. Properties is an independent
// copy of the live record.
type StageRecord struct {
	ID         string     `json:"id" toml:"id"`
	Name       string     `json:"name" toml:"name"`
	Type       string     `json:"type" toml:"type"`
	Properties StageProps `json:"properties" toml:"properties"`
}

// Serialize emits the stage's identity and a shallow, independent copy of
// its properties. Mutating the returned record never affects the live stage.
func (st *Stage) Serialize() StageRecord {
	return StageRecord{
		ID:         st.id,
		Name:       st.name,
		Type:       TypeStage,
		Properties: st.props,
	}
}

// NewStageFromRecord reconstructs a stage from a serialized record,
// preserving its identity and properties. Rendering resources are not
// acquired; call Init as usual.
func NewStageFromRecord(rec StageRecord) *Stage {
	st := NewStage(rec.Name)
	if rec.ID != "" {
		st.id = rec.ID
	}
	props, _ := mergeProps(DefaultStageProps(), rec.Properties.Patch())
	st.props = props
	return st
}

// SceneData maps every owned scene to its serialized form, preserving scene
// order.
func (st *Stage) SceneData() []SceneRecord {
	out := make([]SceneRecord, len(st.scenes))
	for i, sc := range st.scenes {
		out[i] = sc.Serialize()
	}
	return out
}

// --- Render pipeline ---

// Render composites one frame: clears the composer to the stage background
// at full opacity, renders each enabled scene in stored order and blends its
// buffer with the scene's own blend properties, then flushes the accumulated
// frame to the display surface. Disabled scenes are skipped entirely.
func (st *Stage) Render(frame FrameData) {
	if st.composer == nil {
		return
	}

	var t0 time.Time
	if st.debug {
		t0 = time.Now()
	}

	st.composer.Clear(st.props.BackgroundColor, 1)

	blended := 0
	for _, sc := range st.scenes {
		if !sc.IsEnabled() {
			continue
		}
		buf := sc.Render(frame)
		st.composer.BlendBuffer(buf, sc.BlendProps())
		blended++
	}

	st.composer.RenderToScreen()

	if st.debug {
		st.debugLog(renderStats{
			scenes:     len(st.scenes),
			blended:    blended,
			renderTime: time.Since(t0),
		})
	}
}
