package metrics

import (
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
)

// Stability is the fraction of samples in which every body stays within
// radius of the center of mass. Escapes and numerical blow-ups count as
// violations.
type Stability struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewStability(radius float64) *Stability {
	return &Stability{
		name:   "stability",
		radius: radius,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(bodies dynamo.Bodies, t float64) {
	s.samples++
	if !bodies.IsFinite() {
		s.violations++
		return
	}

	com := physics.CenterOfMass(bodies)
	r2 := s.radius * s.radius
	for i := range bodies {
		if bodies[i].Pos.Sub(com).LenSq() > r2 {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
