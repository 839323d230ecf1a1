package kaleido

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Buffer is a resizable offscreen render target. Scenes render into their own
// Buffer each frame; the stage owns two more as scratch space for effect
// chains. A Buffer is owned by whoever created it and is never recycled
// behind the owner's back.
type Buffer struct {
	image *ebiten.Image
	w, h  int
}

// NewBuffer creates an offscreen render target of the given size.
// Dimensions below one pixel are clamped to one.
func NewBuffer(w, h int) *Buffer {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Buffer{
		image: ebiten.NewImage(w, h),
		w:     w,
		h:     h,
	}
}

// Image returns the underlying *ebiten.Image for direct manipulation.
func (b *Buffer) Image() *ebiten.Image {
	return b.image
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int {
	return b.w
}

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int {
	return b.h
}

// Clear fills the buffer with transparent black.
func (b *Buffer) Clear() {
	b.image.Clear()
}

// Fill fills the entire buffer with the given color.
func (b *Buffer) Fill(c Color) {
	b.image.Fill(c.toRGBA())
}

// DrawImage draws src onto this buffer using the provided options.
func (b *Buffer) DrawImage(src *ebiten.Image, op *ebiten.DrawImageOptions) {
	b.image.DrawImage(src, op)
}

// DrawBuffer draws the contents of src onto this buffer at the origin using
// the given blend mode. Used for effect-chain copy-back.
func (b *Buffer) DrawBuffer(src *Buffer, blend BlendMode) {
	var op ebiten.DrawImageOptions
	op.Blend = blend.EbitenBlend()
	b.image.DrawImage(src.image, &op)
}

// Resize deallocates the old image and creates a new one at the given
// dimensions. Contents are not preserved.
func (b *Buffer) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w == b.w && h == b.h {
		return
	}
	if b.image != nil {
		b.image.Deallocate()
	}
	b.image = ebiten.NewImage(w, h)
	b.w = w
	b.h = h
}

// Dispose deallocates the underlying image. The Buffer must not be used
// after calling Dispose.
func (b *Buffer) Dispose() {
	if b.image != nil {
		b.image.Deallocate()
		b.image = nil
	}
}

// --- Buffer pool ---

// bufferPool manages reusable scratch buffers keyed by power-of-two
// dimensions. Effects that need an intermediate target (e.g. pixelate's
// low-resolution pass) acquire from here; after warmup, Acquire/Release are
// zero-alloc.
type bufferPool struct {
	buckets map[uint64][]*Buffer
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared buffer with at least (w, h) pixels.
// Dimensions are rounded up to the next power of two.
func (p *bufferPool) Acquire(w, h int) *Buffer {
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			buf := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			buf.Clear()
			return buf
		}
	}

	img := ebiten.NewImageWithOptions(
		image.Rect(0, 0, pw, ph),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
	return &Buffer{image: img, w: pw, h: ph}
}

// Release returns a buffer to the pool for reuse. The buffer is cleared on
// next Acquire, not here (avoids redundant GPU work if released then
// immediately re-acquired).
func (p *bufferPool) Release(buf *Buffer) {
	if buf == nil || buf.image == nil {
		return
	}
	key := poolKey(buf.w, buf.h)
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*Buffer)
	}
	p.buckets[key] = append(p.buckets[key], buf)
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}

// --- Color resolution ---

// toRGBA converts a Color to its premultiplied renderer representation.
func (c Color) toRGBA() colorRGBA {
	return colorRGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// colorRGBA implements the color.Color interface for image fills.
type colorRGBA struct {
	R, G, B, A uint8
}

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
