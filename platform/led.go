package platform

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"lautenbacher.net/ledtree/animation"
)

// Led is a single strip cell in RGB, every component in [0, 255].
type Led struct {
	Red   float64
	Green float64
	Blue  float64
}

// True if all components are zero, false otherwise
func (s Led) IsEmpty() bool {
	return s.Red == 0 && s.Green == 0 && s.Blue == 0
}

// ledFromColor converts an animation colour to RGB.
func ledFromColor(col animation.Color) Led {
	if col.IsOff() {
		return Led{}
	}
	hue := math.Mod(col.Hue*360, 360)
	if hue < 0 {
		hue += 360
	}
	rgb := colorful.Hsv(hue, col.Saturation, col.Value).Clamped()
	return Led{Red: rgb.R * 255, Green: rgb.G * 255, Blue: rgb.B * 255}
}

// corrected applies a per channel factor and rounds to a wire byte.
func corrected(v, factor float64) byte {
	return byte(math.Min(math.Round(v*factor), 255))
}

// rgbWord packs a colour corrected Led as 0x00RRGGBB.
func rgbWord(led Led, correction []float64) uint32 {
	return uint32(corrected(led.Red, correction[0]))<<16 |
		uint32(corrected(led.Green, correction[1]))<<8 |
		uint32(corrected(led.Blue, correction[2]))
}
