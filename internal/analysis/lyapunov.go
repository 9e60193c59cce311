package analysis

import (
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
//  1. Offset body 0 of a copy of the system by perturbation along x.
//  2. Step both copies with the same stepper and measure their phase-space
//     separation after every step.
//  3. Accumulate ln(d/d0) and pull the copy back to distance d0.
//
// The result is Σ ln(d/d0) / (steps·|dt|). Positions and velocities are
// summed unweighted, so the system should be expressed in comparable units.
func LyapunovExponent(
	stepper dynamo.Stepper,
	bodies dynamo.Bodies,
	dt float64,
	steps int,
	perturbation float64,
) float64 {
	if len(bodies) == 0 || steps <= 0 || perturbation <= 0 || dt == 0 {
		return 0
	}

	x := bodies.Clone()
	xp := bodies.Clone()
	xp[0].Pos.X += perturbation
	d0 := perturbation

	sumLog := 0.0
	count := 0

	for n := 0; n < steps; n++ {
		stepper.Step(x, dt)
		stepper.Step(xp, dt)

		sep := separation(x, xp)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}

		sumLog += math.Log(sep / d0)
		count++

		scale := d0 / sep
		for i := range xp {
			xp[i].Pos = x[i].Pos.Add(xp[i].Pos.Sub(x[i].Pos).Scale(scale))
			xp[i].Vel = x[i].Vel.Add(xp[i].Vel.Sub(x[i].Vel).Scale(scale))
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * math.Abs(dt))
}

func separation(a, b dynamo.Bodies) float64 {
	sum := 0.0
	for i := range a {
		sum += b[i].Pos.Sub(a[i].Pos).LenSq()
		sum += b[i].Vel.Sub(a[i].Vel).LenSq()
	}
	return math.Sqrt(sum)
}
