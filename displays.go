package kaleido

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Display renders content into a scene's buffer. Displays draw in scene
// order; later displays composite over earlier ones.
type Display interface {
	Element
	Render(frame FrameData, target *Buffer)
}

// whitePixel is a 1x1 white image used for solid fills.
var whitePixel *ebiten.Image

func init() {
	whitePixel = ebiten.NewImage(1, 1)
	whitePixel.Fill(ColorWhite.toRGBA())
}

func init() {
	Displays.MustRegister("ColorDisplay", func(props map[string]any) (Element, error) {
		d := NewColorDisplay(ColorWhite)
		d.Update(props)
		d.ResetChanges()
		return d, nil
	})
	Displays.MustRegister("GradientDisplay", func(props map[string]any) (Element, error) {
		d := NewGradientDisplay(ColorWhite, ColorBlack)
		d.Update(props)
		d.ResetChanges()
		return d, nil
	})
	Displays.MustRegister("ImageDisplay", func(props map[string]any) (Element, error) {
		d := NewImageDisplay()
		d.Update(props)
		d.ResetChanges()
		return d, nil
	})
}

// --- ColorDisplay ---

// ColorDisplay fills the scene buffer with a solid color.
type ColorDisplay struct {
	baseElement
	color Color
}

// NewColorDisplay creates a solid-color display.
func NewColorDisplay(c Color) *ColorDisplay {
	return &ColorDisplay{
		baseElement: newBaseElement("ColorDisplay", ElementDisplay),
		color:       c,
	}
}

// Color returns the fill color.
func (d *ColorDisplay) Color() Color { return d.color }

// SetColor changes the fill color and marks the display changed.
func (d *ColorDisplay) SetColor(c Color) {
	if c != d.color {
		d.color = c
		d.markChanged()
	}
}

// Update applies the provided keys of an opaque property record.
func (d *ColorDisplay) Update(props map[string]any) bool {
	changed := false
	if c, ok := propColor(props, "color"); ok && c != d.color {
		d.color = c
		changed = true
	}
	if changed {
		d.markChanged()
	}
	return changed
}

// Properties returns an independent property record.
func (d *ColorDisplay) Properties() map[string]any {
	return map[string]any{"color": colorRecord(d.color)}
}

// Render composites the color over the target at its own alpha.
func (d *ColorDisplay) Render(_ FrameData, target *Buffer) {
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(target.Width()), float64(target.Height()))
	op.ColorScale.Scale(
		float32(d.color.R*d.color.A),
		float32(d.color.G*d.color.A),
		float32(d.color.B*d.color.A),
		float32(d.color.A),
	)
	target.DrawImage(whitePixel, &op)
}

// --- GradientDisplay ---

// GradientDisplay fills the scene buffer with a vertical two-stop gradient.
// The gradient is a 1x2 image stretched with linear filtering, so the GPU
// interpolates the stops.
type GradientDisplay struct {
	baseElement
	top    Color
	bottom Color

	ramp      *ebiten.Image
	rampDirty bool
}

// NewGradientDisplay creates a vertical gradient display.
func NewGradientDisplay(top, bottom Color) *GradientDisplay {
	return &GradientDisplay{
		baseElement: newBaseElement("GradientDisplay", ElementDisplay),
		top:         top,
		bottom:      bottom,
		rampDirty:   true,
	}
}

// SetStops changes the gradient colors and marks the display changed.
func (d *GradientDisplay) SetStops(top, bottom Color) {
	if top != d.top || bottom != d.bottom {
		d.top = top
		d.bottom = bottom
		d.rampDirty = true
		d.markChanged()
	}
}

// Update applies the provided keys of an opaque property record.
func (d *GradientDisplay) Update(props map[string]any) bool {
	top, bottom := d.top, d.bottom
	if c, ok := propColor(props, "top"); ok {
		top = c
	}
	if c, ok := propColor(props, "bottom"); ok {
		bottom = c
	}
	if top == d.top && bottom == d.bottom {
		return false
	}
	d.SetStops(top, bottom)
	return true
}

// Properties returns an independent property record.
func (d *GradientDisplay) Properties() map[string]any {
	return map[string]any{
		"top":    colorRecord(d.top),
		"bottom": colorRecord(d.bottom),
	}
}

// Render stretches the two-stop ramp over the target.
func (d *GradientDisplay) Render(_ FrameData, target *Buffer) {
	if d.ramp == nil {
		d.ramp = ebiten.NewImage(1, 2)
		d.rampDirty = true
	}
	if d.rampDirty {
		d.ramp.Set(0, 0, d.top.toRGBA())
		d.ramp.Set(0, 1, d.bottom.toRGBA())
		d.rampDirty = false
	}
	var op ebiten.DrawImageOptions
	// Offset by half a texel so the stops land on the edges.
	op.GeoM.Translate(0, -0.5)
	op.GeoM.Scale(float64(target.Width()), float64(target.Height()))
	op.Filter = ebiten.FilterLinear
	target.DrawImage(d.ramp, &op)
}

// --- ImageDisplay ---

// ImageDisplay draws a caller-supplied image with position, scale, and
// opacity. Image decoding is outside the core; set the image directly.
type ImageDisplay struct {
	baseElement
	img *ebiten.Image

	x, y           float64
	scaleX, scaleY float64
	alpha          float64
}

// NewImageDisplay creates an image display with no image set.
func NewImageDisplay() *ImageDisplay {
	return &ImageDisplay{
		baseElement: newBaseElement("ImageDisplay", ElementDisplay),
		scaleX:      1,
		scaleY:      1,
		alpha:       1,
	}
}

// SetImage sets the source image and marks the display changed.
func (d *ImageDisplay) SetImage(img *ebiten.Image) {
	d.img = img
	d.markChanged()
}

// Update applies the provided keys of an opaque property record.
func (d *ImageDisplay) Update(props map[string]any) bool {
	changed := false
	if v, ok := propFloat(props, "x"); ok && v != d.x {
		d.x = v
		changed = true
	}
	if v, ok := propFloat(props, "y"); ok && v != d.y {
		d.y = v
		changed = true
	}
	if v, ok := propFloat(props, "scaleX"); ok && v != d.scaleX {
		d.scaleX = v
		changed = true
	}
	if v, ok := propFloat(props, "scaleY"); ok && v != d.scaleY {
		d.scaleY = v
		changed = true
	}
	if v, ok := propFloat(props, "alpha"); ok {
		if v = clamp01(v); v != d.alpha {
			d.alpha = v
			changed = true
		}
	}
	if changed {
		d.markChanged()
	}
	return changed
}

// Properties returns an independent property record.
func (d *ImageDisplay) Properties() map[string]any {
	return map[string]any{
		"x":      d.x,
		"y":      d.y,
		"scaleX": d.scaleX,
		"scaleY": d.scaleY,
		"alpha":  d.alpha,
	}
}

// Render draws the image onto the target. No-op without an image.
func (d *ImageDisplay) Render(_ FrameData, target *Buffer) {
	if d.img == nil {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(d.scaleX, d.scaleY)
	op.GeoM.Translate(d.x, d.y)
	op.ColorScale.ScaleAlpha(float32(d.alpha))
	op.Filter = ebiten.FilterLinear
	target.DrawImage(d.img, &op)
}
