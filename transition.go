package kaleido

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// zoomAnim holds an active smooth-zoom tween.
type zoomAnim struct {
	tween *gween.Tween
}

// ZoomTo animates the zoom toward the given level over duration seconds.
// The target and every intermediate value snap to the quarter-step set, so
// observers only ever see valid levels; each step that lands on a new level
// routes through Update and fires the zoom notification, the same as SetZoom.
func (st *Stage) ZoomTo(level float64, duration float32, fn ease.TweenFunc) {
	target := snapZoom(level)
	if duration <= 0 {
		if target != st.props.Zoom {
			st.Update(StagePatch{Zoom: &target})
		}
		st.Observers.notifyZoom()
		return
	}
	st.zoomAnim = &zoomAnim{
		tween: gween.New(float32(st.props.Zoom), float32(target), duration, fn),
	}
}

// StepTransitions advances the active zoom tween by dt seconds. Call it once
// per frame from the same thread that drives Render. No-op when no
// transition is active.
func (st *Stage) StepTransitions(dt float32) {
	if st.zoomAnim == nil {
		return
	}
	val, done := st.zoomAnim.tween.Update(dt)
	if z := snapZoom(float64(val)); z != st.props.Zoom {
		st.Update(StagePatch{Zoom: &z})
		st.Observers.notifyZoom()
	}
	if done {
		st.zoomAnim = nil
	}
}
