package integrators

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/vmath"
)

// Forest-Ruth coefficients, derived from xi = 2^(1/3).
var (
	frXi = math.Cbrt(2)
	frW1 = 1 / (2 - frXi)
	frW2 = -frXi / (2 - frXi)

	// drift weights
	frA = [4]float64{frW1 / 2, (frW1 + frW2) / 2, (frW2 + frW1) / 2, frW1 / 2}
	// kick weights
	frB = [3]float64{frW1, frW2, frW1}
)

// ForestRuth is the fourth-order symplectic Forest-Ruth composition of
// three Verlet steps. The sub-steps form the palindrome
// D(A0) K(B0) D(A1) K(B1) D(A2) K(B2) D(A3); every kick uses the field
// recomputed at the positions left by the preceding drift. That is three
// field evaluations per step: a fourth, after the last drift, would never
// be used by a kick.
type ForestRuth struct {
	field dynamo.Field
	acc   []vmath.Vec2
}

func NewForestRuth(field dynamo.Field) *ForestRuth {
	return &ForestRuth{field: field}
}

func (f *ForestRuth) Name() string { return "forest-ruth" }
func (f *ForestRuth) Order() int   { return 4 }

func (f *ForestRuth) Step(bodies dynamo.Bodies, dt float64) {
	drift(bodies, frA[0]*dt)

	for s := 0; s < len(frB); s++ {
		f.acc = f.field.Accelerations(bodies, f.acc)
		kick(bodies, f.acc, frB[s]*dt)
		drift(bodies, frA[s+1]*dt)
	}
}

func drift(bodies dynamo.Bodies, h float64) {
	for i := range bodies {
		b := &bodies[i]
		b.Pos = b.Pos.Add(b.Vel.Scale(h))
	}
}

func kick(bodies dynamo.Bodies, acc []vmath.Vec2, h float64) {
	for i := range bodies {
		b := &bodies[i]
		b.Vel = b.Vel.Add(acc[i].Scale(h))
	}
}
