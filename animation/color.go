package animation

import "fmt"

// Color is a hue / saturation / value triple with every component in
// [0, 1]. Conversion to the strip's channel order is left to the Strip.
type Color struct {
	Hue        float64
	Saturation float64
	Value      float64
}

// Off is a dark cell.
var Off = Color{}

// ColorFromHSV builds a Color from a configured triple. Missing
// components are treated as zero.
func ColorFromHSV(hsv []float64) Color {
	var c Color
	if len(hsv) > 0 {
		c.Hue = hsv[0]
	}
	if len(hsv) > 1 {
		c.Saturation = hsv[1]
	}
	if len(hsv) > 2 {
		c.Value = hsv[2]
	}
	return c
}

// WithValue returns c with its brightness replaced by v, clamped to
// [0, 1].
func (c Color) WithValue(v float64) Color {
	c.Value = clampUnit(v)
	return c
}

func (c Color) IsOff() bool {
	return c.Value <= 0
}

func (c Color) String() string {
	return fmt.Sprintf("hsv(%.2f,%.2f,%.2f)", c.Hue, c.Saturation, c.Value)
}
