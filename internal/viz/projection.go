package viz

import (
	"math"

	"github.com/san-kum/orbitsim/internal/vmath"
)

// Projection maps simulation coordinates to canvas sub-pixels with the
// origin at the canvas center and y pointing up:
//
//	(W/2 + (x-cx)·s, H/2 − (y-cy)·s), s = Scale·Zoom
type Projection struct {
	Width, Height int
	Scale         float64
	Zoom          float64
	Center        vmath.Vec2
}

// FitProjection adapts a scale given for a winW×winH pixel window to a
// canvas of w×h sub-pixels, keeping the whole window visible.
func FitProjection(scale float64, winW, winH, w, h int) Projection {
	fit := 1.0
	if winW > 0 && winH > 0 {
		fit = math.Min(float64(w)/float64(winW), float64(h)/float64(winH))
	}
	return Projection{Width: w, Height: h, Scale: scale * fit, Zoom: 1}
}

// Fit is the ratio between canvas sub-pixels and window pixels, used to
// shrink body radii given in window pixels.
func (p Projection) Fit(scale float64) float64 {
	if scale == 0 {
		return 1
	}
	return p.Scale / scale
}

// ToScreen returns sub-pixel coordinates. Points far outside the canvas
// map to (-1, -1).
func (p Projection) ToScreen(v vmath.Vec2) (int, int) {
	s := p.Scale * p.Zoom
	x := float64(p.Width)/2 + (v.X-p.Center.X)*s
	y := float64(p.Height)/2 - (v.Y-p.Center.Y)*s

	limit := float64(4 * (p.Width + p.Height + 1))
	if math.IsNaN(x) || math.IsNaN(y) || math.Abs(x) > limit || math.Abs(y) > limit {
		return -1, -1
	}
	return int(math.Round(x)), int(math.Round(y))
}

// ToWorld inverts ToScreen for a sub-pixel position.
func (p Projection) ToWorld(x, y int) vmath.Vec2 {
	s := p.Scale * p.Zoom
	return vmath.Vec2{
		X: p.Center.X + (float64(x)-float64(p.Width)/2)/s,
		Y: p.Center.Y - (float64(y)-float64(p.Height)/2)/s,
	}
}
