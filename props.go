package kaleido

// StageProps is the stage's value record. It is treated as immutable: updates
// go through mergeProps, which returns a new record plus the set of fields
// that actually changed.
type StageProps struct {
	Width           int
	Height          int
	Zoom            float64
	BackgroundColor Color
}

// DefaultStageProps returns the built-in stage defaults used when a config
// omits the stage block.
func DefaultStageProps() StageProps {
	return StageProps{
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		Zoom:            DefaultZoom,
		BackgroundColor: ColorBlack,
	}
}

// StagePatch is a partial stage property update. Nil fields are left
// unchanged. The JSON/TOML tags make it double as the persisted wire record
// for stage properties.
type StagePatch struct {
	Width           *int     `json:"width,omitempty" toml:"width,omitempty"`
	Height          *int     `json:"height,omitempty" toml:"height,omitempty"`
	Zoom            *float64 `json:"zoom,omitempty" toml:"zoom,omitempty"`
	BackgroundColor *Color   `json:"backgroundColor,omitempty" toml:"backgroundColor,omitempty"`
}

// Patch converts a full property record into a patch setting every field.
func (p StageProps) Patch() StagePatch {
	return StagePatch{
		Width:           &p.Width,
		Height:          &p.Height,
		Zoom:            &p.Zoom,
		BackgroundColor: &p.BackgroundColor,
	}
}

// PropsChanged reports which fields a merge modified.
type PropsChanged struct {
	Width           bool
	Height          bool
	Zoom            bool
	BackgroundColor bool
}

// Any reports whether at least one field changed.
func (c PropsChanged) Any() bool {
	return c.Width || c.Height || c.Zoom || c.BackgroundColor
}

// Size reports whether the stage dimensions changed.
func (c PropsChanged) Size() bool {
	return c.Width || c.Height
}

// mergeProps applies a patch to a property record and returns the merged
// record along with the per-field changed set. Fields whose patched value
// equals the current value are not reported as changed, so no-op updates do
// not dirty the stage. Zoom is clamped to the valid step set before compare;
// non-positive dimensions are ignored, keeping width and height positive.
func mergeProps(cur StageProps, patch StagePatch) (StageProps, PropsChanged) {
	next := cur
	var changed PropsChanged
	if patch.Width != nil && *patch.Width > 0 && *patch.Width != cur.Width {
		next.Width = *patch.Width
		changed.Width = true
	}
	if patch.Height != nil && *patch.Height > 0 && *patch.Height != cur.Height {
		next.Height = *patch.Height
		changed.Height = true
	}
	if patch.Zoom != nil {
		if z := snapZoom(*patch.Zoom); z != cur.Zoom {
			next.Zoom = z
			changed.Zoom = true
		}
	}
	if patch.BackgroundColor != nil && *patch.BackgroundColor != cur.BackgroundColor {
		next.BackgroundColor = *patch.BackgroundColor
		changed.BackgroundColor = true
	}
	return next, changed
}

// snapZoom clamps z to [minZoom, maxZoom] and rounds it to the nearest
// quarter step, so the stored zoom stays on a valid level no matter what a
// config or transition feeds in.
func snapZoom(z float64) float64 {
	if z < minZoom {
		return minZoom
	}
	if z > maxZoom {
		return maxZoom
	}
	steps := int(z/zoomStep + 0.5)
	return float64(steps) * zoomStep
}

// stepZoom returns the zoom level one step in the given direction from cur,
// without leaving the valid range. dir == 0 resets to the default.
func stepZoom(cur float64, dir int) float64 {
	switch {
	case dir > 0:
		if cur < maxZoom {
			return cur + zoomStep
		}
	case dir < 0:
		if cur > minZoom {
			return cur - zoomStep
		}
	default:
		return DefaultZoom
	}
	return cur
}
