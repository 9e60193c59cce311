package integrators

import (
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/vmath"
)

// Verlet is the second-order velocity-Verlet scheme. It evaluates the
// field twice per step.
type Verlet struct {
	field  dynamo.Field
	accOld []vmath.Vec2
	accNew []vmath.Vec2
}

func NewVerlet(field dynamo.Field) *Verlet {
	return &Verlet{field: field}
}

func (v *Verlet) Name() string { return "verlet" }
func (v *Verlet) Order() int   { return 2 }

func (v *Verlet) Step(bodies dynamo.Bodies, dt float64) {
	v.accOld = v.field.Accelerations(bodies, v.accOld)

	halfDt2 := 0.5 * dt * dt
	for i := range bodies {
		b := &bodies[i]
		b.Pos = b.Pos.Add(b.Vel.Scale(dt)).Add(v.accOld[i].Scale(halfDt2))
	}

	v.accNew = v.field.Accelerations(bodies, v.accNew)

	halfDt := 0.5 * dt
	for i := range bodies {
		b := &bodies[i]
		b.Vel = b.Vel.Add(v.accOld[i].Add(v.accNew[i]).Scale(halfDt))
	}
}
