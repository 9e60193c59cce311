package integrators_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/integrators"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/vmath"
)

type constructor func(dynamo.Field) dynamo.Integrator

var (
	newEuler      constructor = func(f dynamo.Field) dynamo.Integrator { return integrators.NewEuler(f) }
	newVerlet     constructor = func(f dynamo.Field) dynamo.Integrator { return integrators.NewVerlet(f) }
	newForestRuth constructor = func(f dynamo.Field) dynamo.Integrator { return integrators.NewForestRuth(f) }
)

// eccentricBinary is a bound, mildly eccentric equal-mass pair in G = 1 units.
func eccentricBinary() dynamo.Bodies {
	return dynamo.Bodies{
		{Mass: 0.5, Pos: vmath.Vec2{X: -0.5}, Vel: vmath.Vec2{Y: -0.45}},
		{Mass: 0.5, Pos: vmath.Vec2{X: 0.5}, Vel: vmath.Vec2{Y: 0.45}},
	}
}

func relDiff(got, want vmath.Vec2) float64 {
	return got.Sub(want).Len() / want.Len()
}

// maxEnergyDrift integrates for steps and returns the largest relative energy
// error seen in the first and second half of the run.
func maxEnergyDrift(integ dynamo.Integrator, g *physics.Gravity, bodies dynamo.Bodies, dt float64, steps int) (float64, float64) {
	e0 := g.Energy(bodies)
	first, second := 0.0, 0.0
	for k := 0; k < steps; k++ {
		integ.Step(bodies, dt)
		d := math.Abs((g.Energy(bodies) - e0) / e0)
		if k < steps/2 {
			first = math.Max(first, d)
		} else {
			second = math.Max(second, d)
		}
	}
	return first, second
}

// circularError integrates a unit circular binary to t = 1 in n steps and
// returns the distance from the analytic position.
func circularError(newInteg constructor, n int) float64 {
	bodies := physics.CircularBinary(1, 0.5, 0.5, 1)
	integ := newInteg(physics.NewGravity(1))
	dt := 1.0 / float64(n)
	for k := 0; k < n; k++ {
		integ.Step(bodies, dt)
	}
	exact := physics.CircularBinaryAt(1, 0.5, 0.5, 1, 1)
	return bodies[1].Pos.Sub(exact[1].Pos).Len()
}

var _ = Describe("Integrators", func() {
	DescribeTable("report their name and order",
		func(newInteg constructor, name string, order int) {
			integ := newInteg(physics.NewGravity(1))
			Expect(integ.Name()).To(Equal(name))
			Expect(integ.Order()).To(Equal(order))
		},
		Entry("euler", newEuler, "euler", 1),
		Entry("verlet", newVerlet, "verlet", 2),
		Entry("forest-ruth", newForestRuth, "forest-ruth", 4),
	)

	DescribeTable("never modify mass",
		func(newInteg constructor) {
			bodies := physics.SunEarthMoon()
			masses := []float64{bodies[0].Mass, bodies[1].Mass, bodies[2].Mass}
			integ := newInteg(physics.NewGravity(physics.G))
			for k := 0; k < 20; k++ {
				integ.Step(bodies, 3600)
			}
			for i := range bodies {
				Expect(bodies[i].Mass).To(Equal(masses[i]))
			}
		},
		Entry("euler", newEuler),
		Entry("verlet", newVerlet),
		Entry("forest-ruth", newForestRuth),
	)

	DescribeTable("let a single body drift at constant velocity",
		func(newInteg constructor) {
			start := dynamo.Body{Mass: 5e29, Pos: vmath.Vec2{X: 1e11, Y: -2e10}, Vel: vmath.Vec2{X: 1e4, Y: 3e3}}
			bodies := dynamo.Bodies{start}
			const dt = 86400.0

			newInteg(physics.NewGravity(physics.G)).Step(bodies, dt)

			want := start.Pos.Add(start.Vel.Scale(dt))
			tol := 1e-12 * (start.Pos.Len() + start.Vel.Scale(dt).Len())
			Expect(bodies[0].Vel).To(Equal(start.Vel))
			Expect(bodies[0].Pos.Sub(want).Len()).To(BeNumerically("<=", tol))
		},
		Entry("euler", newEuler),
		Entry("verlet", newVerlet),
		Entry("forest-ruth", newForestRuth),
	)

	Describe("Euler", func() {
		It("drifts positions with the already updated velocity", func() {
			bodies := dynamo.Bodies{
				{Mass: 1, Pos: vmath.Vec2{X: 0}},
				{Mass: 1, Pos: vmath.Vec2{X: 1}},
			}
			g := physics.NewGravity(1)
			a := g.Accelerations(bodies, nil)

			integrators.NewEuler(g).Step(bodies, 0.1)

			wantVel := a[0].Scale(0.1)
			Expect(bodies[0].Vel).To(Equal(wantVel))
			Expect(bodies[0].Pos).To(Equal(wantVel.Scale(0.1)))
		})

		It("is not time-reversible", func() {
			bodies := physics.BinaryStars()
			start := bodies.Clone()
			integ := integrators.NewEuler(physics.NewGravity(physics.G))

			integ.Step(bodies, 86400)
			integ.Step(bodies, -86400)

			Expect(relDiff(bodies[0].Pos, start[0].Pos)).To(BeNumerically(">", 1e-6))
		})
	})

	Describe("Verlet", func() {
		It("matches the drift-then-averaged-kick update", func() {
			g := physics.NewGravity(1)
			bodies := eccentricBinary()
			start := bodies.Clone()
			const dt = 0.05

			aOld := g.Accelerations(start, nil)
			moved := start.Clone()
			for i := range moved {
				moved[i].Pos = moved[i].Pos.Add(moved[i].Vel.Scale(dt)).Add(aOld[i].Scale(0.5 * dt * dt))
			}
			aNew := g.Accelerations(moved, nil)

			integrators.NewVerlet(g).Step(bodies, dt)

			for i := range bodies {
				Expect(bodies[i].Pos).To(Equal(moved[i].Pos))
				Expect(bodies[i].Vel).To(Equal(start[i].Vel.Add(aOld[i].Add(aNew[i]).Scale(0.5 * dt))))
			}
		})
	})

	DescribeTable("are time-reversible",
		func(newInteg constructor) {
			bodies := physics.BinaryStars()
			start := bodies.Clone()
			integ := newInteg(physics.NewGravity(physics.G))

			integ.Step(bodies, 86400)
			integ.Step(bodies, -86400)

			for i := range bodies {
				Expect(relDiff(bodies[i].Pos, start[i].Pos)).To(BeNumerically("<=", 1e-9))
				Expect(relDiff(bodies[i].Vel, start[i].Vel)).To(BeNumerically("<=", 1e-9))
			}

			for k := 0; k < 30; k++ {
				integ.Step(bodies, 86400)
			}
			for k := 0; k < 30; k++ {
				integ.Step(bodies, -86400)
			}
			for i := range bodies {
				Expect(relDiff(bodies[i].Pos, start[i].Pos)).To(BeNumerically("<=", 1e-9))
				Expect(relDiff(bodies[i].Vel, start[i].Vel)).To(BeNumerically("<=", 1e-9))
			}
		},
		Entry("verlet", newVerlet),
		Entry("forest-ruth", newForestRuth),
	)

	DescribeTable("converge at their theoretical order on a circular orbit",
		func(newInteg constructor, order float64, steps []int) {
			for k := 0; k+1 < len(steps); k++ {
				coarse := circularError(newInteg, steps[k])
				fine := circularError(newInteg, steps[k+1])
				Expect(math.Log2(coarse / fine)).To(BeNumerically("~", order, 0.25))
			}
		},
		Entry("euler", newEuler, 1.0, []int{100, 200, 400, 800}),
		Entry("verlet", newVerlet, 2.0, []int{100, 200, 400, 800}),
		Entry("forest-ruth", newForestRuth, 4.0, []int{10, 20, 40, 80}),
	)

	Describe("long-horizon conservation", func() {
		const (
			dt    = 0.01
			steps = 10000
		)
		var g *physics.Gravity

		BeforeEach(func() {
			g = physics.NewGravity(1)
		})

		DescribeTable("keeps energy error bounded",
			func(newInteg constructor, limit float64) {
				first, second := maxEnergyDrift(newInteg(g), g, eccentricBinary(), dt, steps)
				Expect(second).To(BeNumerically("<", limit))
				Expect(second).To(BeNumerically("<=", 1.5*first))
			},
			Entry("verlet", newVerlet, 1e-4),
			Entry("forest-ruth", newForestRuth, 1e-7),
		)

		It("shows visibly larger energy error for Euler", func() {
			_, euler := maxEnergyDrift(integrators.NewEuler(g), g, eccentricBinary(), dt, steps)
			_, verlet := maxEnergyDrift(integrators.NewVerlet(g), g, eccentricBinary(), dt, steps)
			Expect(euler).To(BeNumerically(">", 10*verlet))
			Expect(euler).To(BeNumerically(">", 1e-3))
		})

		DescribeTable("conserves momentum",
			func(newInteg constructor) {
				bodies := physics.FigureEight()
				p0 := physics.Momentum(bodies)
				integ := newInteg(g)
				for k := 0; k < steps; k++ {
					integ.Step(bodies, 0.001)
				}
				Expect(physics.Momentum(bodies).Sub(p0).Len()).To(BeNumerically("<", 1e-10))
				Expect(bodies.IsFinite()).To(BeTrue())
			},
			Entry("euler", newEuler),
			Entry("verlet", newVerlet),
			Entry("forest-ruth", newForestRuth),
		)
	})

	It("leaves coincident bodies finite", func() {
		bodies := dynamo.Bodies{
			{Mass: 1, Pos: vmath.Vec2{X: 1, Y: 1}},
			{Mass: 2, Pos: vmath.Vec2{X: 1, Y: 1}},
		}
		integrators.NewForestRuth(physics.NewGravity(1)).Step(bodies, 0.1)
		Expect(bodies.IsFinite()).To(BeTrue())
		Expect(bodies[0].Pos).To(Equal(vmath.Vec2{X: 1, Y: 1}))
	})
})
