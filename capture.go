package kaleido

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
)

// CaptureImage encodes the current contents of the display surface into an
// image of the requested format ("png" by default, "jpeg" also supported)
// and invokes fn with the encoded bytes. Call it from the render thread
// after a completed Render, never interleaved with one. A nil fn still
// performs the encode.
func (st *Stage) CaptureImage(format string, fn func(data []byte)) error {
	if st.surface == nil {
		return fmt.Errorf("stage %q: capture before init", st.name)
	}

	img := st.surfacePixels()

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "", "png":
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("capture: encode png: %w", err)
		}
	case "jpg", "jpeg":
		flattenBackground(img, st.bg)
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return fmt.Errorf("capture: encode jpeg: %w", err)
		}
	default:
		return fmt.Errorf("capture: unsupported image format %q", format)
	}

	if fn != nil {
		fn(buf.Bytes())
	}
	return nil
}

// surfacePixels reads the display surface back and converts premultiplied
// RGBA to straight-alpha NRGBA.
func (st *Stage) surfacePixels() *image.NRGBA {
	bounds := st.surface.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	st.surface.ReadPixels(pixels)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// flattenBackground composites partially transparent pixels over the stage's
// resolved background color, for formats without an alpha channel.
func flattenBackground(img *image.NRGBA, bg colorRGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		if a == 255 {
			continue
		}
		img.Pix[i] = uint8((int(img.Pix[i])*a + int(bg.R)*(255-a)) / 255)
		img.Pix[i+1] = uint8((int(img.Pix[i+1])*a + int(bg.G)*(255-a)) / 255)
		img.Pix[i+2] = uint8((int(img.Pix[i+2])*a + int(bg.B)*(255-a)) / 255)
		img.Pix[i+3] = 255
	}
}
