package viz

import (
	"github.com/lucasb-eyer/go-colorful"
)

// bodyColor parses a body's hex color, falling back to an evenly spaced hue
// for body i of n.
func bodyColor(hex string, i, n int) colorful.Color {
	if c, err := colorful.Hex(hex); err == nil {
		return c
	}
	if n < 1 {
		n = 1
	}
	return colorful.Hsv(360*float64(i)/float64(n), 0.7, 0.95)
}

// fade blends c towards bg. t = 0 is c, t = 1 is bg.
func fade(c colorful.Color, bg string, t float64) string {
	b, err := colorful.Hex(bg)
	if err != nil {
		b = colorful.Color{}
	}
	return c.BlendLab(b, t).Clamped().Hex()
}
