package integrators

import (
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/vmath"
)

// Euler is the first-order semi-implicit Euler scheme. Velocities are
// kicked first and positions drift with the updated velocity.
type Euler struct {
	field dynamo.Field
	acc   []vmath.Vec2
}

func NewEuler(field dynamo.Field) *Euler {
	return &Euler{field: field}
}

func (e *Euler) Name() string { return "euler" }
func (e *Euler) Order() int   { return 1 }

func (e *Euler) Step(bodies dynamo.Bodies, dt float64) {
	e.acc = e.field.Accelerations(bodies, e.acc)

	for i := range bodies {
		b := &bodies[i]
		b.Vel = b.Vel.Add(e.acc[i].Scale(dt))
		b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	}
}
