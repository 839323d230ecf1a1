package kaleido

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func TestZoomToImmediate(t *testing.T) {
	st := NewStage("main")
	zooms := 0
	st.Observers = Observers{Zoom: func() { zooms++ }}

	st.ZoomTo(0.5, 0, ease.Linear)

	if st.Props().Zoom != 0.5 {
		t.Errorf("zoom = %v, want 0.5", st.Props().Zoom)
	}
	if st.zoomAnim != nil {
		t.Error("zero duration should not start a tween")
	}
	if zooms != 1 {
		t.Errorf("zoom notifications = %d, want 1", zooms)
	}
}

func TestZoomToSnapsTarget(t *testing.T) {
	st := NewStage("main")
	st.ZoomTo(0.6, 0, ease.Linear)
	if st.Props().Zoom != 0.5 {
		t.Errorf("zoom = %v, want snapped 0.5", st.Props().Zoom)
	}
}

func TestZoomToAnimatesThroughValidSteps(t *testing.T) {
	st := NewStage("main") // zoom starts at 1.0
	st.ZoomTo(0.25, 1.0, ease.Linear)

	if st.zoomAnim == nil {
		t.Fatal("tween should be active")
	}

	st.StepTransitions(0.4)
	if st.Props().Zoom != 0.75 {
		t.Errorf("zoom mid-transition = %v, want 0.75", st.Props().Zoom)
	}

	st.StepTransitions(0.8)
	if st.Props().Zoom != 0.25 {
		t.Errorf("zoom after transition = %v, want 0.25", st.Props().Zoom)
	}
	if st.zoomAnim != nil {
		t.Error("tween should be released when done")
	}
}

func TestStepTransitionsWithoutTween(t *testing.T) {
	st := NewStage("main")
	st.StepTransitions(0.1) // must not panic
	if st.Props().Zoom != 1.0 {
		t.Errorf("zoom = %v, want unchanged 1.0", st.Props().Zoom)
	}
}
