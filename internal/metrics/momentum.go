package metrics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/vmath"
)

// MomentumDrift is the largest change in total linear momentum, relative to
// the sum of |m v| over the initial bodies. A system at rest reports the
// absolute change.
type MomentumDrift struct {
	initial  vmath.Vec2
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift { return &MomentumDrift{} }

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(bodies dynamo.Bodies, t float64) {
	p := physics.Momentum(bodies)
	if m.samples == 0 {
		m.initial = p
		m.scale = 0
		for i := range bodies {
			m.scale += bodies[i].Mass * bodies[i].Vel.Len()
		}
	}
	m.samples++

	d := p.Sub(m.initial).Len()
	if m.scale > 0 {
		d /= m.scale
	}
	m.maxDrift = math.Max(m.maxDrift, d)
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = vmath.Vec2{}
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}

// AngularMomentumDrift is the largest relative change of the total angular
// momentum about the origin.
type AngularMomentumDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift { return &AngularMomentumDrift{} }

func (a *AngularMomentumDrift) Name() string { return "angular_momentum_drift" }

func (a *AngularMomentumDrift) Observe(bodies dynamo.Bodies, t float64) {
	l := physics.AngularMomentum(bodies)
	if a.samples == 0 {
		a.initial = l
	}
	a.samples++

	d := math.Abs(l - a.initial)
	if a.initial != 0 {
		d /= math.Abs(a.initial)
	}
	a.maxDrift = math.Max(a.maxDrift, d)
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = 0
	a.maxDrift = 0
	a.samples = 0
}
