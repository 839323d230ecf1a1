package kaleido

import "testing"

// --- Property record helpers ---

func TestPropFloatAcceptsNumericTypes(t *testing.T) {
	props := map[string]any{
		"json": float64(1.5),
		"toml": int64(3),
		"int":  7,
	}
	tests := []struct {
		key  string
		want float64
	}{
		{"json", 1.5},
		{"toml", 3},
		{"int", 7},
	}
	for _, tt := range tests {
		got, ok := propFloat(props, tt.key)
		if !ok || got != tt.want {
			t.Errorf("propFloat(%q) = %v, %v, want %v, true", tt.key, got, ok, tt.want)
		}
	}
	if _, ok := propFloat(props, "missing"); ok {
		t.Error("missing key should report false")
	}
	if _, ok := propFloat(map[string]any{"s": "nope"}, "s"); ok {
		t.Error("non-numeric value should report false")
	}
}

func TestPropColor(t *testing.T) {
	props := map[string]any{
		"full":    map[string]any{"r": 0.1, "g": 0.2, "b": 0.3, "a": 0.4},
		"noAlpha": map[string]any{"r": 1.0, "g": 1.0, "b": 1.0},
	}

	c, ok := propColor(props, "full")
	if !ok || c != (Color{0.1, 0.2, 0.3, 0.4}) {
		t.Errorf("propColor(full) = %+v, %v", c, ok)
	}

	c, ok = propColor(props, "noAlpha")
	if !ok || c.A != 1 {
		t.Errorf("absent alpha should default to 1, got %+v", c)
	}

	if _, ok := propColor(props, "missing"); ok {
		t.Error("missing key should report false")
	}
}

// --- baseElement ---

func TestElementEnabledTracking(t *testing.T) {
	d := NewColorDisplay(ColorWhite)
	if !d.Enabled() {
		t.Fatal("elements start enabled")
	}

	d.SetEnabled(true)
	if d.HasChanges() {
		t.Error("setting the same enabled state must not dirty the element")
	}

	d.SetEnabled(false)
	if d.Enabled() || !d.HasChanges() {
		t.Error("disabling should apply and dirty the element")
	}
}

func TestElementReactors(t *testing.T) {
	fx := NewFadeEffect(1)
	fx.SetReactor("beat", "pulse")

	if fx.Reactors()["beat"] != "pulse" {
		t.Errorf("reactors = %v, want beat:pulse", fx.Reactors())
	}

	clone := cloneReactors(fx.Reactors())
	clone["beat"] = "other"
	if fx.Reactors()["beat"] != "pulse" {
		t.Error("cloneReactors must return an independent copy")
	}

	if cloneReactors(nil) != nil {
		t.Error("cloning an empty map should return nil")
	}
}

// --- Display parameter updates ---

func TestColorDisplayUpdate(t *testing.T) {
	d := NewColorDisplay(ColorWhite)
	d.ResetChanges()

	changed := d.Update(map[string]any{
		"color": map[string]any{"r": 1.0, "g": 0.0, "b": 0.0, "a": 1.0},
	})
	if !changed || d.Color() != (Color{1, 0, 0, 1}) {
		t.Errorf("color = %+v, changed = %v", d.Color(), changed)
	}
	if !d.HasChanges() {
		t.Error("update should dirty the display")
	}

	d.ResetChanges()
	if d.Update(map[string]any{"color": colorRecord(d.Color())}) {
		t.Error("equal color should report no change")
	}
	if d.Update(map[string]any{}) {
		t.Error("empty record should report no change")
	}
}

func TestImageDisplayUpdate(t *testing.T) {
	d := NewImageDisplay()
	changed := d.Update(map[string]any{"x": 10.0, "y": 20.0, "alpha": 2.0})
	if !changed {
		t.Fatal("update should report a change")
	}
	if d.x != 10 || d.y != 20 {
		t.Errorf("position = (%v, %v), want (10, 20)", d.x, d.y)
	}
	if d.alpha != 1 {
		t.Errorf("alpha = %v, want clamped 1", d.alpha)
	}
}

// --- Effect parameter updates ---

func TestFadeEffectUpdate(t *testing.T) {
	fx := NewFadeEffect(1)
	if !fx.Update(map[string]any{"alpha": 0.25}) {
		t.Fatal("update should report a change")
	}
	if fx.alpha != 0.25 {
		t.Errorf("alpha = %v, want 0.25", fx.alpha)
	}
	if fx.Update(map[string]any{"alpha": 0.25}) {
		t.Error("equal alpha should report no change")
	}
}

func TestPixelateEffectUpdateClampsSize(t *testing.T) {
	fx := NewPixelateEffect(8)
	fx.Update(map[string]any{"size": -3})
	if fx.size != 1 {
		t.Errorf("size = %d, want clamped 1", fx.size)
	}
}

func TestTintEffectMatrix(t *testing.T) {
	fx := NewTintEffect(Color{R: 0.5, G: 0.5, B: 0.5, A: 1}, 1)
	m := fx.matrix()

	if m[0] != 0.5 || m[6] != 0.5 || m[12] != 0.5 || m[18] != 1 {
		t.Errorf("full-amount matrix diagonal = %v %v %v %v", m[0], m[6], m[12], m[18])
	}

	fx.SetTint(Color{R: 0, G: 0, B: 0, A: 1}, 0)
	m = fx.matrix()
	if m[0] != 1 || m[6] != 1 || m[12] != 1 {
		t.Errorf("zero-amount matrix should be identity, got %v %v %v", m[0], m[6], m[12])
	}
}

// --- Serialization ---

func TestSerializeElementCarriesEnabled(t *testing.T) {
	d := NewColorDisplay(ColorWhite)
	d.SetEnabled(false)

	rec := serializeElement(d)
	if rec.Name != "ColorDisplay" {
		t.Errorf("name = %q, want ColorDisplay", rec.Name)
	}
	enabled, ok := propBool(rec.Properties, "enabled")
	if !ok || enabled {
		t.Error("enabled state should travel inside the property record")
	}
}
