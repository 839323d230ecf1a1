package kaleido

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Composer accumulates per-scene render outputs into a single frame and
// flushes it to the display surface. The stage drives it once per frame:
// Clear, then one BlendBuffer per enabled scene in order, then RenderToScreen.
type Composer interface {
	// Clear resets the accumulated frame to the given color at the given
	// opacity.
	Clear(c Color, alpha float64)
	// BlendBuffer composites a scene's buffer into the frame using the
	// scene's blend properties.
	BlendBuffer(buf *Buffer, props BlendProps)
	// RenderToScreen flushes the accumulated frame to the display surface.
	RenderToScreen()
	// Resize reallocates the accumulation target.
	Resize(w, h int)
	// Size returns the current accumulation target dimensions.
	Size() (w, h int)
}

// FrameComposer is the ebiten-backed Composer. It owns an accumulation image
// and draws it onto the display surface it was bound to at construction.
type FrameComposer struct {
	screen *ebiten.Image
	frame  *Buffer
}

// NewFrameComposer creates a composer bound to the given display surface
// with an accumulation target of the given size.
func NewFrameComposer(screen *ebiten.Image, w, h int) (*FrameComposer, error) {
	if screen == nil {
		return nil, fmt.Errorf("composer: nil display surface")
	}
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("composer: invalid frame size %dx%d", w, h)
	}
	return &FrameComposer{
		screen: screen,
		frame:  NewBuffer(w, h),
	}, nil
}

// Clear resets the frame to the given color at the given opacity.
func (c *FrameComposer) Clear(col Color, alpha float64) {
	col.A = clamp01(alpha)
	c.frame.Fill(col)
}

// BlendBuffer composites buf into the frame using the scene's opacity and
// blend mode.
func (c *FrameComposer) BlendBuffer(buf *Buffer, props BlendProps) {
	if buf == nil {
		return
	}
	var op ebiten.DrawImageOptions
	op.ColorScale.ScaleAlpha(float32(clamp01(props.Opacity)))
	op.Blend = props.Mode.EbitenBlend()
	c.frame.DrawImage(buf.Image(), &op)
}

// RenderToScreen draws the accumulated frame onto the display surface,
// scaled to fill it.
func (c *FrameComposer) RenderToScreen() {
	fw, fh := c.frame.Width(), c.frame.Height()
	sb := c.screen.Bounds()
	var op ebiten.DrawImageOptions
	if sb.Dx() != fw || sb.Dy() != fh {
		op.GeoM.Scale(float64(sb.Dx())/float64(fw), float64(sb.Dy())/float64(fh))
		op.Filter = ebiten.FilterLinear
	}
	c.screen.DrawImage(c.frame.Image(), &op)
}

// Resize reallocates the accumulation target. Contents are not preserved.
func (c *FrameComposer) Resize(w, h int) {
	c.frame.Resize(w, h)
}

// Size returns the accumulation target dimensions.
func (c *FrameComposer) Size() (int, int) {
	return c.frame.Width(), c.frame.Height()
}
