package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/physics"
)

// ConvergencePoint is the global error of one run at a fixed step size.
type ConvergencePoint struct {
	Steps int
	Dt    float64
	Error float64
}

type ConvergenceResult struct {
	Points []ConvergencePoint
	// Order is the least-squares slope of log(error) against log(dt).
	Order float64
}

// Convergence integrates a two-body circular orbit (G = 1, masses m1 and m2,
// separation 1) to time duration once per entry in steps, and compares the
// final positions with the analytic solution. newInteg must return a fresh
// integrator bound to the given field.
func Convergence(newInteg func(dynamo.Field) dynamo.Integrator, m1, m2, duration float64, steps []int) (*ConvergenceResult, error) {
	if len(steps) < 2 {
		return nil, fmt.Errorf("need at least two step counts, got %d", len(steps))
	}

	g := physics.NewGravity(1)
	exact := physics.CircularBinaryAt(1, m1, m2, 1, duration)

	res := &ConvergenceResult{Points: make([]ConvergencePoint, 0, len(steps))}
	for _, n := range steps {
		if n <= 0 {
			return nil, fmt.Errorf("step count %d: %w", n, dynamo.ErrInvalidTimestep)
		}
		dt := duration / float64(n)

		bodies := physics.CircularBinary(1, m1, m2, 1)
		integ := newInteg(g)
		for i := 0; i < n; i++ {
			integ.Step(bodies, dt)
		}

		e := 0.0
		for i := range bodies {
			e = math.Max(e, bodies[i].Pos.Sub(exact[i].Pos).Len())
		}
		res.Points = append(res.Points, ConvergencePoint{Steps: n, Dt: dt, Error: e})
	}

	order, err := logSlope(res.Points)
	if err != nil {
		return nil, err
	}
	res.Order = order
	return res, nil
}

func logSlope(pts []ConvergencePoint) (float64, error) {
	var sx, sy, sxx, sxy float64
	n := 0.0
	for _, p := range pts {
		if p.Error <= 0 || math.IsNaN(p.Error) || math.IsInf(p.Error, 0) {
			return 0, errors.New("analysis: error vanished or diverged; choose larger step sizes")
		}
		x, y := math.Log(p.Dt), math.Log(p.Error)
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
		n++
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0, errors.New("analysis: step counts must differ")
	}
	return (n*sxy - sx*sy) / den, nil
}
