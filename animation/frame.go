package animation

import (
	"math/rand"

	"golang.org/x/exp/constraints"
)

// Pixel is a single write to the strip.
type Pixel struct {
	Index int
	Color Color
}

// TrailValue is the brightness of the cell d steps ahead of the sweep
// edge: full at d == 0, falling linearly to zero at d == trail. It is
// never negative.
func TrailValue(base float64, d, trail int) float64 {
	if d <= 0 {
		return base
	}
	if trail <= 0 || d >= trail {
		return 0
	}
	return max(base*(1-float64(d)/float64(trail)), 0)
}

// GrowFrame lights cells [0, position] with base and draws a fading
// trail of trail-1 cells above it. Writes are clipped to [0, n); cells
// beyond the trail are not touched.
func GrowFrame(position, n, trail int, base Color) []Pixel {
	if n <= 0 {
		return nil
	}
	position = clamp(position, 0, n)
	lit := min(position, n-1)

	frame := make([]Pixel, 0, lit+max(trail, 1))
	for i := 0; i <= lit; i++ {
		frame = append(frame, Pixel{Index: i, Color: base})
	}
	for d := 1; d < trail; d++ {
		i := position + d
		if i >= n {
			break
		}
		frame = append(frame, Pixel{Index: i, Color: base.WithValue(TrailValue(base.Value, d, trail))})
	}
	return frame
}

// ShrinkFrame uses the same geometry as GrowFrame. Rendered at a
// decreasing position it makes the lit region retract, the trail above
// the edge fading the cells that were just switched off.
func ShrinkFrame(position, n, trail int, base Color) []Pixel {
	return GrowFrame(position, n, trail, base)
}

// SparkleFrame colours every cell with base, except that each cell
// independently gets a random palette colour with probability chance.
// The frame carries no history; each call rolls again.
func SparkleFrame(n int, chance float64, palette []Color, base Color, rng *rand.Rand) []Pixel {
	if n <= 0 {
		return nil
	}
	frame := make([]Pixel, n)
	for i := range frame {
		col := base
		if len(palette) > 0 && rng.Float64() < chance {
			col = palette[rng.Intn(len(palette))]
		}
		frame[i] = Pixel{Index: i, Color: col}
	}
	return frame
}

// ClearFrame switches every cell off.
func ClearFrame(n int) []Pixel {
	if n <= 0 {
		return nil
	}
	frame := make([]Pixel, n)
	for i := range frame {
		frame[i] = Pixel{Index: i, Color: Off}
	}
	return frame
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

func clampUnit[F constraints.Float](v F) F {
	return clamp(v, 0, 1)
}
