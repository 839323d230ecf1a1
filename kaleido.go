package kaleido

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the color is resolved for the renderer.
type Color struct {
	R float64 `json:"r" toml:"r"`
	G float64 `json:"g" toml:"g"`
	B float64 `json:"b" toml:"b"`
	A float64 `json:"a" toml:"a"`
}

// ColorWhite is fully opaque white.
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is fully opaque black, the default stage background.
var ColorBlack = Color{0, 0, 0, 1}

// Default stage dimensions and zoom, used when a config omits the stage block.
const (
	DefaultWidth  = 854
	DefaultHeight = 480
	DefaultZoom   = 1.0
)

// Zoom is constrained to {0.25, 0.5, 0.75, 1.0}.
const (
	minZoom  = 0.25
	maxZoom  = 1.0
	zoomStep = 0.25
)

// FrameData carries per-frame timing information into scene and display
// rendering. The stage itself only passes it through.
type FrameData struct {
	// Time is the total elapsed time in seconds.
	Time float64
	// Delta is the time since the previous frame in seconds.
	Delta float64
	// Frame is a monotonically increasing frame counter.
	Frame uint64
}

// BlendProps are the per-scene parameters controlling how a scene's rendered
// buffer is composited into the frame.
type BlendProps struct {
	Opacity float64
	Mode    BlendMode
}

// BlendMode selects a compositing operation. Each maps to a specific ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendScreen                    // screen (1 - (1-src)*(1-dst); only brightens)
	BlendErase                     // destination-out (punch transparent holes)
	BlendBelow                     // destination-over (draw behind existing content)
	BlendNone                      // opaque copy (skip blending)
)

// blendModeNames maps each BlendMode to its config wire name.
var blendModeNames = [...]string{
	BlendNormal:   "normal",
	BlendAdd:      "add",
	BlendMultiply: "multiply",
	BlendScreen:   "screen",
	BlendErase:    "erase",
	BlendBelow:    "below",
	BlendNone:     "none",
}

// String returns the config wire name of the blend mode.
func (b BlendMode) String() string {
	if int(b) < len(blendModeNames) {
		return blendModeNames[b]
	}
	return "normal"
}

// ParseBlendMode resolves a config wire name to a BlendMode. The second
// return value reports whether the name was recognized.
func ParseBlendMode(name string) (BlendMode, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range blendModeNames {
		if n == name {
			return BlendMode(i), true
		}
	}
	return BlendNormal, false
}

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendNormal:
		return ebiten.BlendSourceOver
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendBelow:
		return ebiten.BlendDestinationOver
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// Entity is implemented by anything addressable by id in the stage graph:
// the stage itself, scenes, and scene elements.
type Entity interface {
	ID() string
	Name() string
}
