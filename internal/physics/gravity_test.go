package physics_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
	"github.com/san-kum/orbitsim/internal/vmath"
)

func randomBody(r *rand.Rand) dynamo.Body {
	return dynamo.Body{
		Mass: 1e20 + r.Float64()*1e30,
		Pos:  vmath.Vec2{X: (r.Float64() - 0.5) * 1e12, Y: (r.Float64() - 0.5) * 1e12},
		Vel:  vmath.Vec2{X: (r.Float64() - 0.5) * 1e4, Y: (r.Float64() - 0.5) * 1e4},
	}
}

var _ = Describe("Gravity", func() {
	var g *physics.Gravity

	BeforeEach(func() {
		g = physics.NewGravity(physics.G)
	})

	Describe("AccelerationOn", func() {
		It("points from the body towards the attractor with magnitude G·m/r²", func() {
			bi := dynamo.Body{Mass: 1, Pos: vmath.Vec2{X: 0, Y: 0}}
			bj := dynamo.Body{Mass: 5.972e24, Pos: vmath.Vec2{X: 0, Y: 6.371e6}}

			a := g.AccelerationOn(bi, bj)
			Expect(a.X).To(BeNumerically("==", 0))
			Expect(a.Y).To(BeNumerically("~", 9.82, 0.01))
		})

		It("obeys Newton's third law for random pairs", func() {
			r := rand.New(rand.NewSource(7))
			for k := 0; k < 200; k++ {
				bi, bj := randomBody(r), randomBody(r)
				fij := g.AccelerationOn(bi, bj).Scale(bi.Mass)
				fji := g.AccelerationOn(bj, bi).Scale(bj.Mass)

				sum := fij.Add(fji)
				Expect(sum.Len()).To(BeNumerically("<=", 1e-12*fij.Len()))
			}
		})

		It("returns the zero vector for coincident bodies", func() {
			b := dynamo.Body{Mass: 2e30, Pos: vmath.Vec2{X: 3, Y: 4}}
			other := dynamo.Body{Mass: 1e30, Pos: vmath.Vec2{X: 3, Y: 4}}

			Expect(g.AccelerationOn(b, b)).To(Equal(vmath.Vec2{}))
			a := g.AccelerationOn(b, other)
			Expect(a).To(Equal(vmath.Vec2{}))
			Expect(a.IsFinite()).To(BeTrue())
		})

		It("does not read the mass of the accelerated body", func() {
			bj := dynamo.Body{Mass: 3, Pos: vmath.Vec2{X: 2}}
			light := g.AccelerationOn(dynamo.Body{Mass: 1}, bj)
			heavy := g.AccelerationOn(dynamo.Body{Mass: 1e9}, bj)
			Expect(light).To(Equal(heavy))
		})
	})

	Describe("Accelerations", func() {
		It("sums every other body's contribution", func() {
			bodies := physics.SunEarthMoon()
			field := g.Accelerations(bodies, nil)
			Expect(field).To(HaveLen(3))

			want := g.AccelerationOn(bodies[1], bodies[0]).Add(g.AccelerationOn(bodies[1], bodies[2]))
			Expect(field[1]).To(Equal(want))
		})

		It("gives a single body zero acceleration", func() {
			field := g.Accelerations(dynamo.Bodies{{Mass: 1, Vel: vmath.Vec2{X: 1}}}, nil)
			Expect(field).To(Equal([]vmath.Vec2{{}}))
		})

		It("reuses a correctly sized destination and overwrites it", func() {
			bodies := physics.BinaryStars()
			dst := []vmath.Vec2{{X: 1e9, Y: 1e9}, {X: -1e9}}
			out := g.Accelerations(bodies, dst)
			Expect(&out[0]).To(BeIdenticalTo(&dst[0]))
			Expect(out[0]).To(Equal(g.AccelerationOn(bodies[0], bodies[1])))
		})

		It("conserves total force across the system", func() {
			r := rand.New(rand.NewSource(11))
			bodies := dynamo.Bodies{randomBody(r), randomBody(r), randomBody(r), randomBody(r)}
			field := g.Accelerations(bodies, nil)

			net := vmath.Vec2{}
			scale := 0.0
			for i, a := range field {
				net = net.Add(a.Scale(bodies[i].Mass))
				for j := range bodies {
					scale = math.Max(scale, g.AccelerationOn(bodies[i], bodies[j]).Scale(bodies[i].Mass).Len())
				}
			}
			Expect(net.Len()).To(BeNumerically("<=", 1e-12*scale))
		})
	})

	Describe("conserved quantities", func() {
		It("computes energy of a circular binary as half the potential", func() {
			bodies := physics.CircularBinary(1, 0.5, 0.5, 1)
			g1 := physics.NewGravity(1)

			pe := g1.PotentialEnergy(bodies)
			Expect(pe).To(BeNumerically("~", -0.25, 1e-15))
			Expect(g1.Energy(bodies)).To(BeNumerically("~", pe/2, 1e-15))
		})

		It("skips coincident pairs in the potential", func() {
			bodies := dynamo.Bodies{{Mass: 1}, {Mass: 1}}
			Expect(g.PotentialEnergy(bodies)).To(BeZero())
		})

		It("reports momentum, angular momentum and centre of mass", func() {
			bodies := dynamo.Bodies{
				{Mass: 2, Pos: vmath.Vec2{X: 1}, Vel: vmath.Vec2{Y: 3}},
				{Mass: 1, Pos: vmath.Vec2{X: -2}, Vel: vmath.Vec2{Y: -6}},
			}
			Expect(physics.Momentum(bodies)).To(Equal(vmath.Vec2{}))
			Expect(physics.AngularMomentum(bodies)).To(BeNumerically("==", 18))
			Expect(physics.CenterOfMass(bodies)).To(Equal(vmath.Vec2{}))
			Expect(physics.TotalMass(bodies)).To(BeNumerically("==", 3))
			Expect(physics.KineticEnergy(bodies)).To(BeNumerically("==", 27))
		})
	})
})

var _ = Describe("reference systems", func() {
	It("builds a valid binary star system", func() {
		bodies := physics.BinaryStars()
		Expect(bodies.Validate()).To(Succeed())
		Expect(bodies).To(HaveLen(2))
		Expect(physics.Momentum(bodies).Len()).To(BeNumerically("<", 1e22))
	})

	It("places the circular binary centre of mass at rest at the origin", func() {
		bodies := physics.CircularBinary(physics.G, 2e30, 1e30, 1.5e11)
		Expect(physics.CenterOfMass(bodies).Len()).To(BeNumerically("<", 1e-3))
		Expect(physics.Momentum(bodies).Len()).To(BeNumerically("<", 1e22))
	})

	It("gives the circular binary exactly the centripetal acceleration", func() {
		const m1, m2, d = 0.7, 0.3, 2.0
		bodies := physics.CircularBinary(1, m1, m2, d)
		a := physics.NewGravity(1).Accelerations(bodies, nil)

		omega2 := (m1 + m2) / (d * d * d)
		for i := range bodies {
			want := bodies[i].Pos.Scale(-omega2)
			Expect(a[i].Sub(want).Len()).To(BeNumerically("<", 1e-14))
		}
	})

	It("advances the analytic circular orbit along a circle", func() {
		b0 := physics.CircularBinaryAt(1, 0.5, 0.5, 1, 0)
		bq := physics.CircularBinaryAt(1, 0.5, 0.5, 1, math.Pi/2)
		Expect(b0[1].Pos.X).To(BeNumerically("~", 0.5, 1e-15))
		Expect(bq[1].Pos.Y).To(BeNumerically("~", 0.5, 1e-15))
		Expect(bq[1].Vel.X).To(BeNumerically("~", -0.5, 1e-15))
	})

	It("builds a figure eight with zero net momentum", func() {
		bodies := physics.FigureEight()
		Expect(bodies.Validate()).To(Succeed())
		Expect(physics.Momentum(bodies).Len()).To(BeNumerically("<", 1e-15))
	})

	It("builds the Sun, Earth and Moon", func() {
		bodies := physics.SunEarthMoon()
		Expect(bodies.Validate()).To(Succeed())
		Expect(bodies[0].Name).To(Equal("sun"))
	})
})
