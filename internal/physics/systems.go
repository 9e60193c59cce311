package physics

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/vmath"
)

// BinaryStars returns two stars in a mildly elliptical orbit: a Sun-like
// star and a half solar mass companion, 1.5e11 m apart. Use with G.
func BinaryStars() dynamo.Bodies {
	return dynamo.Bodies{
		{
			Name:     "primary",
			Mass:     2.0e30,
			Pos:      vmath.Vec2{X: -7.5e10, Y: 0},
			Vel:      vmath.Vec2{X: 0, Y: -14000},
			Color:    "#ffc800",
			RadiusPx: 10,
		},
		{
			Name:     "companion",
			Mass:     1.0e30,
			Pos:      vmath.Vec2{X: 7.5e10, Y: 0},
			Vel:      vmath.Vec2{X: 0, Y: 28000},
			Color:    "#00b4ff",
			RadiusPx: 8,
		},
	}
}

// CircularBinary returns two bodies a distance d apart on exact circular
// orbits about their common centre of mass, which sits at the origin.
func CircularBinary(g, m1, m2, d float64) dynamo.Bodies {
	return CircularBinaryAt(g, m1, m2, d, 0)
}

// CircularBinaryAt returns the analytic state of CircularBinary after time t.
func CircularBinaryAt(g, m1, m2, d, t float64) dynamo.Bodies {
	total := m1 + m2
	omega := math.Sqrt(g * total / (d * d * d))
	r1 := d * m2 / total
	r2 := d * m1 / total

	c, s := math.Cos(omega*t), math.Sin(omega*t)
	radial := vmath.Vec2{X: c, Y: s}
	tangent := vmath.Vec2{X: -s, Y: c}

	return dynamo.Bodies{
		{
			Name:     "a",
			Mass:     m1,
			Pos:      radial.Scale(-r1),
			Vel:      tangent.Scale(-r1 * omega),
			Color:    "#ffc800",
			RadiusPx: 6,
		},
		{
			Name:     "b",
			Mass:     m2,
			Pos:      radial.Scale(r2),
			Vel:      tangent.Scale(r2 * omega),
			Color:    "#00b4ff",
			RadiusPx: 6,
		},
	}
}

// FigureEight returns the three equal-mass figure-eight choreography
// in units where G = 1.
func FigureEight() dynamo.Bodies {
	v := vmath.Vec2{X: 0.347111, Y: 0.532728}
	return dynamo.Bodies{
		{Name: "a", Mass: 1, Pos: vmath.Vec2{X: -1}, Vel: v, Color: "#ff5f87", RadiusPx: 5},
		{Name: "b", Mass: 1, Pos: vmath.Vec2{X: 1}, Vel: v, Color: "#5fff87", RadiusPx: 5},
		{Name: "c", Mass: 1, Pos: vmath.Vec2{}, Vel: v.Scale(-2), Color: "#87afff", RadiusPx: 5},
	}
}

// SunEarthMoon returns a heliocentric Sun, Earth and Moon at mean distances.
func SunEarthMoon() dynamo.Bodies {
	const (
		au          = 1.496e11
		earthMoon   = 3.844e8
		earthSpeed  = 29780.0
		moonOrbital = 1022.0
	)
	return dynamo.Bodies{
		{Name: "sun", Mass: 1.989e30, Color: "#ffd700", RadiusPx: 10},
		{
			Name:     "earth",
			Mass:     5.972e24,
			Pos:      vmath.Vec2{X: au},
			Vel:      vmath.Vec2{Y: earthSpeed},
			Color:    "#1e90ff",
			RadiusPx: 5,
		},
		{
			Name:     "moon",
			Mass:     7.342e22,
			Pos:      vmath.Vec2{X: au + earthMoon},
			Vel:      vmath.Vec2{Y: earthSpeed + moonOrbital},
			Color:    "#c0c0c0",
			RadiusPx: 3,
		},
	}
}
