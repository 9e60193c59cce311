package viz

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/vmath"
)

const (
	defaultTrailLength = 200
	maxDiscRadius      = 6
)

// scene owns the canvas, the projection and the per-body trails shared by
// the interactive model and the plain renderer.
type scene struct {
	canvas     *Canvas
	proj       Projection
	scale      float64
	winW, winH int
	trails     [][]vmath.Vec2
	trailLen   int
	background string
}

func newScene(cols, rows int, scale float64, winW, winH, trailLen int) *scene {
	if trailLen <= 0 {
		trailLen = defaultTrailLength
	}
	s := &scene{
		scale:      scale,
		winW:       winW,
		winH:       winH,
		trailLen:   trailLen,
		background: string(ThemeDeepSpace.Background),
	}
	s.resize(cols, rows)
	return s
}

// resize replaces the canvas, keeping zoom and center.
func (s *scene) resize(cols, rows int) {
	zoom, center := 1.0, vmath.Vec2{}
	if s.canvas != nil {
		zoom, center = s.proj.Zoom, s.proj.Center
	}
	s.canvas = NewCanvas(cols, rows)
	w, h := s.canvas.PixelSize()
	s.proj = FitProjection(s.scale, s.winW, s.winH, w, h)
	s.proj.Zoom, s.proj.Center = zoom, center
}

func (s *scene) record(bodies dynamo.Bodies) {
	if len(s.trails) != len(bodies) {
		s.trails = make([][]vmath.Vec2, len(bodies))
	}
	for i := range bodies {
		s.trails[i] = append(s.trails[i], bodies[i].Pos)
		if len(s.trails[i]) > s.trailLen {
			s.trails[i] = s.trails[i][1:]
		}
	}
}

func (s *scene) clearTrails() {
	for i := range s.trails {
		s.trails[i] = s.trails[i][:0]
	}
}

func (s *scene) zoom(factor float64) {
	s.proj.Zoom *= factor
}

// recenter moves the view center to the world point under canvas cell
// (col, row).
func (s *scene) recenter(col, row int) {
	s.proj.Center = s.proj.ToWorld(col*2+1, row*4+2)
}

func (s *scene) resetView() {
	s.proj.Zoom = 1
	s.proj.Center = vmath.Vec2{}
}

func (s *scene) draw(bodies dynamo.Bodies) {
	s.canvas.Clear()
	fit := s.proj.Fit(s.scale)

	for i, b := range bodies {
		base := bodyColor(b.Color, i, len(bodies))

		if i < len(s.trails) {
			trail := s.trails[i]
			for k := 1; k < len(trail); k++ {
				age := float64(len(trail)-1-k) / float64(len(trail))
				x0, y0 := s.proj.ToScreen(trail[k-1])
				x1, y1 := s.proj.ToScreen(trail[k])
				if x0 < 0 || x1 < 0 {
					continue
				}
				s.canvas.DrawLine(x0, y0, x1, y1, fade(base, s.background, 0.2+0.7*age))
			}
		}

		x, y := s.proj.ToScreen(b.Pos)
		if x < 0 {
			continue
		}
		r := int(math.Round(float64(b.RadiusPx) * fit))
		if r > maxDiscRadius {
			r = maxDiscRadius
		}
		s.canvas.FillDisc(x, y, r, base.Hex())
	}
}
