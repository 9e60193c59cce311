package physics

import (
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/vmath"
)

// G is the Newtonian gravitational constant in m³·kg⁻¹·s⁻².
const G = 6.6743e-11

// Gravity is the Newtonian pairwise force law. It implements dynamo.Field
// and dynamo.Hamiltonian.
type Gravity struct {
	G float64
}

func NewGravity(g float64) *Gravity {
	return &Gravity{G: g}
}

// AccelerationOn returns the acceleration imposed on bi by bj alone.
// Coincident bodies contribute the zero vector.
func (g *Gravity) AccelerationOn(bi, bj dynamo.Body) vmath.Vec2 {
	r := bj.Pos.Sub(bi.Pos)
	d2 := r.LenSq()
	if d2 == 0 {
		return vmath.Vec2{}
	}
	return r.Normalize().Scale(g.G * bj.Mass / d2)
}

// Accelerations sums AccelerationOn over every ordered pair. The field is
// recomputed from the current positions on every call.
func (g *Gravity) Accelerations(bodies dynamo.Bodies, dst []vmath.Vec2) []vmath.Vec2 {
	n := len(bodies)
	if len(dst) != n {
		dst = make([]vmath.Vec2, n)
	}

	for i := 0; i < n; i++ {
		a := vmath.Vec2{}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			a = a.Add(g.AccelerationOn(bodies[i], bodies[j]))
		}
		dst[i] = a
	}

	return dst
}

// Energy returns kinetic plus gravitational potential energy.
func (g *Gravity) Energy(bodies dynamo.Bodies) float64 {
	return KineticEnergy(bodies) + g.PotentialEnergy(bodies)
}

func (g *Gravity) PotentialEnergy(bodies dynamo.Bodies) float64 {
	pe := 0.0
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			r := bodies[j].Pos.Sub(bodies[i].Pos).Len()
			if r == 0 {
				continue
			}
			pe -= g.G * bodies[i].Mass * bodies[j].Mass / r
		}
	}
	return pe
}

func KineticEnergy(bodies dynamo.Bodies) float64 {
	ke := 0.0
	for _, b := range bodies {
		ke += 0.5 * b.Mass * b.Vel.LenSq()
	}
	return ke
}

func Momentum(bodies dynamo.Bodies) vmath.Vec2 {
	p := vmath.Vec2{}
	for _, b := range bodies {
		p = p.Add(b.Vel.Scale(b.Mass))
	}
	return p
}

// AngularMomentum returns the z component of Σ m·(r × v) about the origin.
func AngularMomentum(bodies dynamo.Bodies) float64 {
	L := 0.0
	for _, b := range bodies {
		L += b.Mass * b.Pos.Cross(b.Vel)
	}
	return L
}

func TotalMass(bodies dynamo.Bodies) float64 {
	m := 0.0
	for _, b := range bodies {
		m += b.Mass
	}
	return m
}

func CenterOfMass(bodies dynamo.Bodies) vmath.Vec2 {
	m := TotalMass(bodies)
	if m == 0 {
		return vmath.Vec2{}
	}
	c := vmath.Vec2{}
	for _, b := range bodies {
		c = c.Add(b.Pos.Scale(b.Mass))
	}
	return c.Scale(1 / m)
}
