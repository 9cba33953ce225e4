package render

import (
	"fmt"
	"image/color"
	"math"
)

// Color is an 8-bit RGBA color. The zero value is transparent black.
type Color struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
	Alpha uint8 `json:"alpha"`
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{Red: r, Green: g, Blue: b, Alpha: 255}
}

// RGBA returns a color with an explicit alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{Red: r, Green: g, Blue: b, Alpha: a}
}

// Gray returns an opaque gray with all three channels set to v.
func Gray(v uint8) Color {
	return RGB(v, v, v)
}

// GrayLevel is Gray for a fractional channel value, clamped to [0,255].
func GrayLevel(v float64) Color {
	c := Channel(v)
	return RGB(c, c, c)
}

// FromTriple builds an opaque color from an [r,g,b] or [r,g,b,a] list as found
// in scenario files. Missing channels default to 0 (alpha to 255).
func FromTriple(c []int) Color {
	out := Color{Alpha: 255}
	if len(c) > 0 {
		out.Red = Channel(float64(c[0]))
	}
	if len(c) > 1 {
		out.Green = Channel(float64(c[1]))
	}
	if len(c) > 2 {
		out.Blue = Channel(float64(c[2]))
	}
	if len(c) > 3 {
		out.Alpha = Channel(float64(c[3]))
	}
	return out
}

// Channel rounds and clamps a fractional channel value into a byte.
func Channel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(v))
}

// Scale multiplies the three color channels by f and keeps alpha opaque.
func (c Color) Scale(f float64) Color {
	return RGB(
		Channel(float64(c.Red)*f),
		Channel(float64(c.Green)*f),
		Channel(float64(c.Blue)*f),
	)
}

// String serializes the color as #rrggbbaa for drawing backends.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.Red, c.Green, c.Blue, c.Alpha)
}

// NRGBA converts to the standard library color type.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.Red, G: c.Green, B: c.Blue, A: c.Alpha}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}
