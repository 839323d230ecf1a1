package kaleido

import (
	"testing"
)

// fakeComposer records composer calls for pipeline assertions.
type fakeComposer struct {
	cleared    int
	clearColor Color
	clearAlpha float64
	blended    []BlendProps
	flushed    int
	w, h       int
}

func (f *fakeComposer) Clear(c Color, alpha float64) {
	f.cleared++
	f.clearColor = c
	f.clearAlpha = alpha
	f.blended = f.blended[:0]
}

func (f *fakeComposer) BlendBuffer(buf *Buffer, props BlendProps) {
	f.blended = append(f.blended, props)
}

func (f *fakeComposer) RenderToScreen() { f.flushed++ }

func (f *fakeComposer) Resize(w, h int) { f.w, f.h = w, h }

func (f *fakeComposer) Size() (int, int) { return f.w, f.h }

// --- Identity & defaults ---

func TestNewStageDefaults(t *testing.T) {
	st := NewStage("main")

	if st.Name() != "main" {
		t.Errorf("Name = %q, want %q", st.Name(), "main")
	}
	if st.ID() == "" {
		t.Error("stage should get a generated id")
	}
	if st.Props() != DefaultStageProps() {
		t.Errorf("props = %+v, want defaults", st.Props())
	}
	if st.Initialized() {
		t.Error("stage must not be initialized before Init")
	}
	if st.HasChanges() {
		t.Error("fresh stage should be clean")
	}
}

func TestInitNilSurface(t *testing.T) {
	st := NewStage("main")
	if err := st.Init(nil); err == nil {
		t.Fatal("expected error for nil surface")
	}
	if st.Initialized() {
		t.Error("failed init must not leave the stage initialized")
	}
	if st.composer != nil || st.bufferA != nil || st.bufferB != nil {
		t.Error("failed init must not retain resources")
	}
}

// --- Scene graph ---

func TestAddSceneAppendsAndAttaches(t *testing.T) {
	st := NewStage("main")
	sc := NewScene("a")

	got := st.AddScene(sc)
	if got != sc {
		t.Error("AddScene should return the scene")
	}
	if sc.Stage() != st {
		t.Error("scene back-reference not set")
	}
	if !st.HasScenes() {
		t.Error("HasScenes should be true")
	}
	if !st.HasChanges() {
		t.Error("AddScene should dirty the stage")
	}
	if st.SceneByID(sc.ID()) != sc {
		t.Error("SceneByID should find the added scene")
	}
}

func TestAddSceneAtIndexInserts(t *testing.T) {
	st := NewStage("main")
	a := st.AddScene(NewScene("a"))
	b := st.AddScene(NewScene("b"))
	c := NewScene("c")

	st.AddScene(c, 1)

	want := []*Scene{a, c, b}
	for i, sc := range want {
		if st.scenes[i] != sc {
			t.Fatalf("scenes[%d] = %q, want %q", i, st.scenes[i].Name(), sc.Name())
		}
	}
}

func TestAddSceneTwiceIsNoOp(t *testing.T) {
	st := NewStage("main")
	sc := st.AddScene(NewScene("a"))

	st.AddScene(sc)
	if len(st.scenes) != 1 {
		t.Errorf("scene count = %d, want 1 (no duplicate identity)", len(st.scenes))
	}
}

func TestRemoveScene(t *testing.T) {
	st := NewStage("main")
	sc := st.AddScene(NewScene("a"))
	st.ResetChanges()

	if !st.RemoveScene(sc) {
		t.Fatal("RemoveScene should report success")
	}
	if st.HasScenes() {
		t.Error("HasScenes should be false after removing the only scene")
	}
	if sc.Stage() != nil {
		t.Error("scene back-reference should be cleared")
	}
	if !st.HasChanges() {
		t.Error("RemoveScene should dirty the stage")
	}
	if st.RemoveScene(sc) {
		t.Error("removing an unowned scene should report false")
	}
}

func TestShiftScene(t *testing.T) {
	st := NewStage("main")
	a := st.AddScene(NewScene("a"))
	b := st.AddScene(NewScene("b"))
	st.ResetChanges()

	if !st.ShiftScene(a, 1) {
		t.Fatal("valid shift should report a change")
	}
	if st.scenes[0] != b || st.scenes[1] != a {
		t.Error("scenes not swapped")
	}
	if !st.HasChanges() {
		t.Error("a real shift should dirty the stage")
	}

	st.ResetChanges()
	if st.ShiftScene(a, 1) {
		t.Error("shift past the end should be a no-op")
	}
	if st.ShiftScene(b, -1) {
		t.Error("shift before the start should be a no-op")
	}
	if st.ShiftScene(a, 0) {
		t.Error("zero-delta shift should be a no-op")
	}
	if st.HasChanges() {
		t.Error("no-op shifts must not dirty the stage")
	}
}

func TestClearScenes(t *testing.T) {
	resetSceneCounter()
	st := NewStage("main")
	a := st.AddScene(NewScene(""))
	st.AddScene(NewScene(""))

	st.ClearScenes()

	if st.HasScenes() {
		t.Error("scenes should be gone")
	}
	if a.Stage() != nil {
		t.Error("cleared scenes should be detached")
	}
	if got := NewScene("").Name(); got != "Scene 1" {
		t.Errorf("auto-name after clear = %q, want %q (counter reset)", got, "Scene 1")
	}
}

// --- Change tracking ---

func TestHasChangesFromChildScene(t *testing.T) {
	st := NewStage("main")
	sc := st.AddScene(NewScene("a"))
	st.ResetChanges()

	if st.HasChanges() {
		t.Fatal("stage should be clean after reset")
	}

	o := 0.5
	sc.Update(ScenePatch{Opacity: &o})
	if !st.HasChanges() {
		t.Error("a dirty child scene should surface through HasChanges")
	}

	st.ResetChanges()
	if st.HasChanges() {
		t.Error("ResetChanges must clear child scenes too")
	}
	if sc.HasChanges() {
		t.Error("no scene may stay dirty after a stage-level reset")
	}
}

// --- Zoom ---

func TestSetZoomStepsAndClamps(t *testing.T) {
	st := NewStage("main")
	q := 0.25
	st.Update(StagePatch{Zoom: &q})

	for i := 0; i < 3; i++ {
		st.SetZoom(1)
	}
	if st.Props().Zoom != 1.0 {
		t.Errorf("zoom after three +1 steps = %v, want 1.0", st.Props().Zoom)
	}
	st.SetZoom(1)
	if st.Props().Zoom != 1.0 {
		t.Errorf("zoom must not exceed 1.0, got %v", st.Props().Zoom)
	}

	for i := 0; i < 3; i++ {
		st.SetZoom(-1)
	}
	if st.Props().Zoom != 0.25 {
		t.Errorf("zoom after three -1 steps = %v, want 0.25", st.Props().Zoom)
	}
	st.SetZoom(-1)
	if st.Props().Zoom != 0.25 {
		t.Errorf("zoom must not drop below 0.25, got %v", st.Props().Zoom)
	}

	st.SetZoom(0)
	if st.Props().Zoom != 1.0 {
		t.Errorf("SetZoom(0) should reset to 1.0, got %v", st.Props().Zoom)
	}
}

func TestSetZoomNotifiesEvenWithoutChange(t *testing.T) {
	st := NewStage("main")
	zooms := 0
	st.Observers = Observers{Zoom: func() { zooms++ }}

	st.SetZoom(1) // already at max, no change
	if st.Props().Zoom != 1.0 {
		t.Fatalf("zoom = %v, want 1.0", st.Props().Zoom)
	}
	if zooms != 1 {
		t.Errorf("zoom notifications = %d, want 1 (fires regardless of change)", zooms)
	}

	st.SetZoom(-1)
	if zooms != 2 {
		t.Errorf("zoom notifications = %d, want 2", zooms)
	}
}

func TestSetZoomMarksStageDirty(t *testing.T) {
	st := NewStage("main")
	st.ResetChanges()

	st.SetZoom(-1)
	if !st.HasChanges() {
		t.Error("a zoom change routes through Update and should dirty the stage")
	}
}

// --- Update & resize ---

func TestUpdatePartialRecord(t *testing.T) {
	st := NewStage("main")
	st.ResetChanges()

	w := st.Props().Width
	if st.Update(StagePatch{Width: &w}) {
		t.Error("no-op update should report false")
	}
	if st.HasChanges() {
		t.Error("no-op update must not dirty the stage")
	}

	w2 := 1280
	if !st.Update(StagePatch{Width: &w2}) {
		t.Error("real update should report true")
	}
	if st.Props().Width != 1280 || st.Props().Height != DefaultHeight {
		t.Errorf("props = %+v, want width-only change", st.Props())
	}
	if !st.HasChanges() {
		t.Error("real update should dirty the stage")
	}
}

func TestUpdateSizePropagatesInOrder(t *testing.T) {
	st := NewStage("main")
	comp := &fakeComposer{}
	st.composer = comp
	sc := st.AddScene(NewScene("a"))

	var order []string
	st.Observers = Observers{Resize: func() { order = append(order, "notify") }}

	w, h := 640, 360
	st.Update(StagePatch{Width: &w, Height: &h})

	if sc.w != 640 || sc.h != 360 {
		t.Errorf("scene size = %dx%d, want 640x360", sc.w, sc.h)
	}
	if comp.w != 640 || comp.h != 360 {
		t.Errorf("composer size = %dx%d, want 640x360", comp.w, comp.h)
	}
	if len(order) != 1 {
		t.Fatalf("resize notifications = %d, want 1 (after propagation)", len(order))
	}
}

// --- Lookup & removal ---

func TestElementByID(t *testing.T) {
	st := NewStage("main")
	sc1 := st.AddScene(NewScene("a"))
	sc2 := st.AddScene(NewScene("b"))
	d := NewColorDisplay(ColorWhite)
	sc2.AddElement(d)

	if got := st.ElementByID(sc1.ID()); got != Entity(sc1) {
		t.Error("scene id should resolve to the scene itself")
	}
	if got := st.ElementByID(d.ID()); got != Entity(d) {
		t.Error("element id should resolve through its scene")
	}
	if got := st.ElementByID("missing"); got != nil {
		t.Errorf("unknown id = %v, want nil", got)
	}
}

func TestRemoveElementPolymorphic(t *testing.T) {
	st := NewStage("main")
	sc := st.AddScene(NewScene("a"))
	d := NewColorDisplay(ColorWhite)
	sc.AddElement(d)

	if !st.RemoveElement(d) {
		t.Fatal("element removal should succeed")
	}
	if sc.ElementByID(d.ID()) != nil {
		t.Error("element should be gone from its scene")
	}

	if !st.RemoveElement(sc) {
		t.Fatal("scene removal should route through RemoveScene")
	}
	if st.HasScenes() {
		t.Error("scene should be gone")
	}

	if st.RemoveElement(d) {
		t.Error("removing a detached element should report false")
	}
}

// --- Serialization ---

func TestSerializeRoundTrip(t *testing.T) {
	st := NewStage("main")
	w, h := 1280, 720
	z := 0.5
	bg := Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
	st.Update(StagePatch{Width: &w, Height: &h, Zoom: &z, BackgroundColor: &bg})

	rec := st.Serialize()
	rebuilt := NewStageFromRecord(rec)

	if rebuilt.Serialize() != rec {
		t.Errorf("round trip = %+v, want %+v", rebuilt.Serialize(), rec)
	}
}

func TestNewStageFromRecordZeroProperties(t *testing.T) {
	st := NewStageFromRecord(StageRecord{Name: "rebuilt"})

	if st.Props().Width != DefaultWidth || st.Props().Height != DefaultHeight {
		t.Errorf("size = %dx%d, want defaults for a zero-valued record",
			st.Props().Width, st.Props().Height)
	}
	if z := st.Props().Zoom; z != 0.25 {
		t.Errorf("zoom = %v, want 0.25 (zero clamps to the lowest level)", z)
	}
}

func TestUpdateRejectsNonPositiveDimensions(t *testing.T) {
	st := NewStage("main")
	sc := st.AddScene(NewScene("a"))
	st.ResetChanges()

	w, h := -100, 0
	if st.Update(StagePatch{Width: &w, Height: &h}) {
		t.Error("non-positive dimensions should report no change")
	}
	if st.Props() != DefaultStageProps() {
		t.Errorf("props = %+v, want untouched defaults", st.Props())
	}
	if sc.w != DefaultWidth || sc.h != DefaultHeight {
		t.Errorf("scene size = %dx%d, must not drift from stage size", sc.w, sc.h)
	}
	if st.HasChanges() {
		t.Error("rejected update must not dirty the stage")
	}
}

func TestSerializeCopiesProperties(t *testing.T) {
	st := NewStage("main")
	rec := st.Serialize()

	rec.Properties.Width = 9999
	if st.Props().Width == 9999 {
		t.Error("mutating the serialized record must not affect the live stage")
	}
}

func TestSceneDataPreservesOrder(t *testing.T) {
	st := NewStage("main")
	st.AddScene(NewScene("first"))
	st.AddScene(NewScene("second"))

	data := st.SceneData()
	if len(data) != 2 {
		t.Fatalf("scene records = %d, want 2", len(data))
	}
	if *data[0].Properties.Name != "first" || *data[1].Properties.Name != "second" {
		t.Error("scene order not preserved in serialization")
	}
}

// --- Render pipeline ---

func TestRenderBlendsOnlyEnabledScenes(t *testing.T) {
	st := NewStage("main")
	comp := &fakeComposer{}
	st.composer = comp

	enabled := st.AddScene(NewScene("on"))
	enabled.AddElement(NewColorDisplay(Color{R: 1, A: 1}))

	disabled := st.AddScene(NewScene("off"))
	disabled.AddElement(NewColorDisplay(Color{G: 1, A: 1}))
	off := false
	disabled.Update(ScenePatch{Enabled: &off})

	st.Render(FrameData{})

	if comp.cleared != 1 {
		t.Errorf("composer cleared %d times, want 1", comp.cleared)
	}
	if comp.clearColor != st.Props().BackgroundColor || comp.clearAlpha != 1 {
		t.Error("composer should clear to the stage background at full opacity")
	}
	if len(comp.blended) != 1 {
		t.Fatalf("blended %d buffers, want exactly 1 (the enabled scene)", len(comp.blended))
	}
	if comp.blended[0] != enabled.BlendProps() {
		t.Errorf("blend props = %+v, want %+v", comp.blended[0], enabled.BlendProps())
	}
	if comp.flushed != 1 {
		t.Errorf("flushed %d times, want 1", comp.flushed)
	}
}

func TestRenderBeforeInitIsNoOp(t *testing.T) {
	st := NewStage("main")
	st.AddScene(NewScene("a"))
	st.Render(FrameData{}) // must not panic without a composer
}

func TestRenderUsesSceneBlendProps(t *testing.T) {
	st := NewStage("main")
	comp := &fakeComposer{}
	st.composer = comp

	sc := st.AddScene(NewScene("a"))
	sc.AddElement(NewColorDisplay(ColorWhite))
	o := 0.5
	mode := BlendAdd
	sc.Update(ScenePatch{Opacity: &o, BlendMode: &mode})

	st.Render(FrameData{})

	want := BlendProps{Opacity: 0.5, Mode: BlendAdd}
	if len(comp.blended) != 1 || comp.blended[0] != want {
		t.Errorf("blend props = %+v, want %+v", comp.blended, want)
	}
}
