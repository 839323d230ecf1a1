package kaleido

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Effect post-processes a scene's rendered buffer. Effects run as a chain:
// each reads the previous result from src and writes into dst.
type Effect interface {
	Element
	Apply(src, dst *Buffer)
}

// effectScratch pools intermediate targets for effects that need one beyond
// the stage's two ping-pong buffers (e.g. pixelate's low-resolution pass).
var effectScratch bufferPool

func init() {
	Effects.MustRegister("FadeEffect", func(props map[string]any) (Element, error) {
		fx := NewFadeEffect(1)
		fx.Update(props)
		fx.ResetChanges()
		return fx, nil
	})
	Effects.MustRegister("TintEffect", func(props map[string]any) (Element, error) {
		fx := NewTintEffect(ColorWhite, 1)
		fx.Update(props)
		fx.ResetChanges()
		return fx, nil
	})
	Effects.MustRegister("PixelateEffect", func(props map[string]any) (Element, error) {
		fx := NewPixelateEffect(8)
		fx.Update(props)
		fx.ResetChanges()
		return fx, nil
	})
}

// --- FadeEffect ---

// FadeEffect multiplies the scene output's opacity.
type FadeEffect struct {
	baseElement
	alpha float64
}

// NewFadeEffect creates a fade effect at the given opacity multiplier.
func NewFadeEffect(alpha float64) *FadeEffect {
	return &FadeEffect{
		baseElement: newBaseElement("FadeEffect", ElementEffect),
		alpha:       clamp01(alpha),
	}
}

// SetAlpha changes the opacity multiplier and marks the effect changed.
func (fx *FadeEffect) SetAlpha(alpha float64) {
	if alpha = clamp01(alpha); alpha != fx.alpha {
		fx.alpha = alpha
		fx.markChanged()
	}
}

// Update applies the provided keys of an opaque property record.
func (fx *FadeEffect) Update(props map[string]any) bool {
	if v, ok := propFloat(props, "alpha"); ok {
		if v = clamp01(v); v != fx.alpha {
			fx.alpha = v
			fx.markChanged()
			return true
		}
	}
	return false
}

// Properties returns an independent property record.
func (fx *FadeEffect) Properties() map[string]any {
	return map[string]any{"alpha": fx.alpha}
}

// Apply draws src into dst with the opacity multiplier.
func (fx *FadeEffect) Apply(src, dst *Buffer) {
	var op ebiten.DrawImageOptions
	op.ColorScale.ScaleAlpha(float32(fx.alpha))
	dst.DrawImage(src.Image(), &op)
}

// --- TintEffect ---

// colorMatrixShaderSrc applies a 4x5 color matrix per pixel.
// Ebitengine uses premultiplied alpha; the shader un-premultiplies before
// the matrix and re-premultiplies the output.
const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

// colorMatrixShader is compiled on first use.
var colorMatrixShader *ebiten.Shader

func ensureColorMatrixShader() (*ebiten.Shader, error) {
	if colorMatrixShader != nil {
		return colorMatrixShader, nil
	}
	s, err := ebiten.NewShader([]byte(colorMatrixShaderSrc))
	if err != nil {
		return nil, fmt.Errorf("tint effect: compile color matrix shader: %w", err)
	}
	colorMatrixShader = s
	return s, nil
}

// TintEffect multiplies the scene output toward a tint color by amount,
// using a 4x5 color matrix shader. Amount 0 leaves the output unchanged;
// amount 1 multiplies fully by the tint.
type TintEffect struct {
	baseElement
	color  Color
	amount float64
}

// NewTintEffect creates a tint effect.
func NewTintEffect(c Color, amount float64) *TintEffect {
	return &TintEffect{
		baseElement: newBaseElement("TintEffect", ElementEffect),
		color:       c,
		amount:      clamp01(amount),
	}
}

// SetTint changes the tint color and strength and marks the effect changed.
func (fx *TintEffect) SetTint(c Color, amount float64) {
	amount = clamp01(amount)
	if c != fx.color || amount != fx.amount {
		fx.color = c
		fx.amount = amount
		fx.markChanged()
	}
}

// Update applies the provided keys of an opaque property record.
func (fx *TintEffect) Update(props map[string]any) bool {
	c, amount := fx.color, fx.amount
	if v, ok := propColor(props, "color"); ok {
		c = v
	}
	if v, ok := propFloat(props, "amount"); ok {
		amount = clamp01(v)
	}
	if c == fx.color && amount == fx.amount {
		return false
	}
	fx.SetTint(c, amount)
	return true
}

// Properties returns an independent property record.
func (fx *TintEffect) Properties() map[string]any {
	return map[string]any{
		"color":  colorRecord(fx.color),
		"amount": fx.amount,
	}
}

// matrix builds the 4x5 color matrix: identity lerped toward a multiply by
// the tint color.
func (fx *TintEffect) matrix() []float32 {
	a := fx.amount
	lerp := func(to float64) float32 {
		return float32(1 + a*(to-1))
	}
	m := make([]float32, 20)
	m[0] = lerp(fx.color.R)
	m[6] = lerp(fx.color.G)
	m[12] = lerp(fx.color.B)
	m[18] = 1
	return m
}

// Apply runs the color matrix shader over src into dst. Falls back to an
// untinted copy if the shader fails to compile.
func (fx *TintEffect) Apply(src, dst *Buffer) {
	shader, err := ensureColorMatrixShader()
	if err != nil {
		dst.DrawBuffer(src, BlendNormal)
		return
	}
	op := &ebiten.DrawRectShaderOptions{}
	op.Images[0] = src.Image()
	op.Uniforms = map[string]any{"Matrix": fx.matrix()}
	dst.Image().DrawRectShader(src.Width(), src.Height(), shader, op)
}

// --- PixelateEffect ---

// PixelateEffect quantizes the scene output into square blocks by
// downscaling into a pooled low-resolution target and upscaling back with
// nearest filtering.
type PixelateEffect struct {
	baseElement
	size int
}

// NewPixelateEffect creates a pixelate effect with the given block size in
// pixels. Sizes below 1 clamp to 1 (no visible effect).
func NewPixelateEffect(size int) *PixelateEffect {
	if size < 1 {
		size = 1
	}
	return &PixelateEffect{
		baseElement: newBaseElement("PixelateEffect", ElementEffect),
		size:        size,
	}
}

// SetSize changes the block size and marks the effect changed.
func (fx *PixelateEffect) SetSize(size int) {
	if size < 1 {
		size = 1
	}
	if size != fx.size {
		fx.size = size
		fx.markChanged()
	}
}

// Update applies the provided keys of an opaque property record.
func (fx *PixelateEffect) Update(props map[string]any) bool {
	if v, ok := propInt(props, "size"); ok {
		if v < 1 {
			v = 1
		}
		if v != fx.size {
			fx.size = v
			fx.markChanged()
			return true
		}
	}
	return false
}

// Properties returns an independent property record.
func (fx *PixelateEffect) Properties() map[string]any {
	return map[string]any{"size": fx.size}
}

// Apply downscales src by the block size and upscales back into dst.
func (fx *PixelateEffect) Apply(src, dst *Buffer) {
	if fx.size <= 1 {
		dst.DrawBuffer(src, BlendNone)
		return
	}
	w, h := src.Width(), src.Height()
	lw := max(1, w/fx.size)
	lh := max(1, h/fx.size)

	low := effectScratch.Acquire(lw, lh)
	var down ebiten.DrawImageOptions
	down.GeoM.Scale(float64(lw)/float64(w), float64(lh)/float64(h))
	down.Filter = ebiten.FilterLinear
	low.DrawImage(src.Image(), &down)

	// Only the low-res region holds content; the pooled buffer may be larger.
	region := low.Image().SubImage(image.Rect(0, 0, lw, lh)).(*ebiten.Image)
	var up ebiten.DrawImageOptions
	up.GeoM.Scale(float64(w)/float64(lw), float64(h)/float64(lh))
	up.Filter = ebiten.FilterNearest
	dst.DrawImage(region, &up)

	effectScratch.Release(low)
}
